package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jalsoochak/go-admin-console/api"
)

func newRootCommand(c *console) *cobra.Command {
	root := &cobra.Command{
		Use:           "console",
		Short:         "JalSoochak water-monitoring admin console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// One-time silent session restore from the token cache.
			c.sessions.Bootstrap(cmd.Context())
		},
	}

	root.AddCommand(
		newLoginCommand(c),
		newLogoutCommand(c),
		newWhoamiCommand(c),
		newRegisterCommand(c),
		newStatesCommand(c),
		newCredentialsCommand(c),
		newNormsCommand(c),
		newEscalationsCommand(c),
		newThresholdsCommand(c),
		newTemplatesCommand(c),
		newDashboardCommand(c),
	)
	return root
}

func newLoginCommand(c *console) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the JalSoochak platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}

			displayAppname("JalSoochak")
			home, err := c.sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %s", c.sessions.Session().Error)
			}

			sess := c.sessions.Session()
			fmt.Printf("Signed in as %s (%s)\n", sess.User.Email, sess.User.Role)
			fmt.Printf("Landing page: %s\n", home)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(c *console) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear cached tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.sessions.Logout(cmd.Context())
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(c *console) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := c.sessions.Session()
			if sess.SessionExpired {
				return fmt.Errorf("%s", sess.Error)
			}
			if !sess.IsAuthenticated() {
				return fmt.Errorf("not signed in; run 'console login'")
			}
			return printJSON(sess.User)
		},
	}
}

func newRegisterCommand(c *console) *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.auth.Register(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Println("Registration submitted")
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.Role, "role", "state-admin", "dashboard role")
	cmd.Flags().StringVar(&req.TenantID, "tenant", "", "state/UT tenant id")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newStatesCommand(c *console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "states",
		Short: "Manage states and union territories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered states/UTs",
		RunE: func(cmd *cobra.Command, args []string) error {
			states, err := c.admin.ListStates(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(states)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one state/UT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := c.admin.GetState(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(state)
		},
	})

	var create api.State
	var stateType string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a state/UT",
		RunE: func(cmd *cobra.Command, args []string) error {
			create.Type = api.StateType(stateType)
			create.Active = true
			state, err := c.admin.CreateState(cmd.Context(), create)
			if err != nil {
				return err
			}
			return printJSON(state)
		},
	}
	createCmd.Flags().StringVar(&create.Name, "name", "", "state name")
	createCmd.Flags().StringVar(&create.Code, "code", "", "two-letter code")
	createCmd.Flags().StringVar(&create.LGDCode, "lgd-code", "", "LGD code")
	createCmd.Flags().StringVar(&stateType, "type", "state", "state or ut")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("code")
	cmd.AddCommand(createCmd)

	return cmd
}

func newCredentialsCommand(c *console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage state API credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List issued credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := c.admin.ListCredentials(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(creds)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rotate <id>",
		Short: "Rotate a credential's secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := c.admin.RotateCredential(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Store the secret now; it is not shown again.")
			return printJSON(cred)
		},
	})

	return cmd
}

func newNormsCommand(c *console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "norms",
		Short: "Manage per-capita water supply norms",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List water norms",
		RunE: func(cmd *cobra.Command, args []string) error {
			norms, err := c.admin.ListNorms(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(norms)
		},
	})

	var norm api.WaterNorm
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a norm for a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.admin.UpsertNorm(cmd.Context(), norm)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	setCmd.Flags().StringVar(&norm.Category, "category", "", "consumer category")
	setCmd.Flags().Float64Var(&norm.LPCD, "lpcd", 0, "litres per capita per day")
	_ = setCmd.MarkFlagRequired("category")
	_ = setCmd.MarkFlagRequired("lpcd")
	cmd.AddCommand(setCmd)

	return cmd
}

func newEscalationsCommand(c *console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalations",
		Short: "Manage alert escalation rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List escalation rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := c.admin.ListEscalations(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(rules)
		},
	})

	var rule api.EscalationRule
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an escalation rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			rule.Active = true
			out, err := c.admin.CreateEscalation(cmd.Context(), rule)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	addCmd.Flags().StringVar(&rule.StateID, "state", "", "state id (empty for system-wide)")
	addCmd.Flags().IntVar(&rule.Level, "level", 1, "escalation level")
	addCmd.Flags().IntVar(&rule.AfterHours, "after-hours", 24, "hours before escalating")
	addCmd.Flags().StringVar(&rule.NotifyRole, "notify-role", "state-admin", "role to notify")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an escalation rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.admin.DeleteEscalation(cmd.Context(), args[0])
		},
	})

	return cmd
}

func newThresholdsCommand(c *console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Manage metric alert thresholds",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			thresholds, err := c.admin.ListThresholds(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(thresholds)
		},
	})

	var threshold api.Threshold
	setCmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update a threshold's bounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold.ID = args[0]
			out, err := c.admin.UpdateThreshold(cmd.Context(), threshold)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	setCmd.Flags().Float64Var(&threshold.Warning, "warning", 0, "warning bound")
	setCmd.Flags().Float64Var(&threshold.Critical, "critical", 0, "critical bound")
	cmd.AddCommand(setCmd)

	return cmd
}

func newTemplatesCommand(c *console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage notification templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notification templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := c.admin.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(templates)
		},
	})

	var tmpl api.NotificationTemplate
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a notification template",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.admin.CreateTemplate(cmd.Context(), tmpl)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	addCmd.Flags().StringVar(&tmpl.Name, "name", "", "template name")
	addCmd.Flags().StringVar(&tmpl.Channel, "channel", "sms", "sms, email or push")
	addCmd.Flags().StringVar(&tmpl.Subject, "subject", "", "subject (email only)")
	addCmd.Flags().StringVar(&tmpl.Body, "body", "", "message body")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("body")
	cmd.AddCommand(addCmd)

	return cmd
}

func newDashboardCommand(c *console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Public dashboard data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Headline figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := c.admin.DashboardSummary(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(summary)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "map",
		Short: "State-wise metrics for the map view",
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics, err := c.admin.DashboardMap(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(metrics)
		},
	})

	return cmd
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
