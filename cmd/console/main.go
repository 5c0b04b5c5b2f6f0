package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jalsoochak/go-admin-console/api"
	"github.com/jalsoochak/go-admin-console/auth"
	"github.com/jalsoochak/go-admin-console/internal/config"
	"github.com/jalsoochak/go-admin-console/token/store"
	"github.com/jalsoochak/go-admin-console/transport"
)

// console bundles the wired-up clients the commands operate on.
type console struct {
	cfg      *config.Config
	sessions *auth.SessionManager
	auth     *api.AuthClient
	admin    *api.AdminClient
	logger   zerolog.Logger
}

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("console failed")
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	c, err := newConsole(cfg, logger)
	if err != nil {
		return err
	}

	root := newRootCommand(c)
	return root.Execute()
}

func newConsole(cfg *config.Config, logger zerolog.Logger) (*console, error) {
	cachePath := cfg.TokenCachePath
	if cachePath == "" {
		var err error
		cachePath, err = store.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	authClient := api.NewAuthClient(cfg.AuthBaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))

	sessions, err := auth.NewSessionManager(authClient, store.NewFileRepo(cachePath),
		auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	httpClient, err := transport.Client(sessions, transport.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	httpClient.Timeout = cfg.RequestTimeout

	admin, err := api.NewAdminClient(cfg.APIBaseURL, httpClient)
	if err != nil {
		return nil, err
	}

	return &console{
		cfg:      cfg,
		sessions: sessions,
		auth:     authClient,
		admin:    admin,
		logger:   logger,
	}, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger(), nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
