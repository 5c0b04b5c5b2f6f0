package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	errs "github.com/jalsoochak/go-admin-console/internal/errors"
)

// AdminClient is the typed client for the JalSoochak administrative API. All
// requests run through the supplied HTTP client, which is expected to carry
// the authorization pipeline - callers never set the Authorization header
// themselves.
type AdminClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAdminClient creates an admin API client. httpClient should be built by
// transport.Client so requests are authorized and replayed automatically.
func NewAdminClient(baseURL string, httpClient *http.Client) (*AdminClient, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("[NewAdminClient] httpClient is required")
	}
	return &AdminClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// States

func (c *AdminClient) ListStates(ctx context.Context) ([]State, error) {
	var out []State
	return out, c.getJSON(ctx, "/api/v1/states", &out)
}

func (c *AdminClient) GetState(ctx context.Context, id string) (*State, error) {
	var out State
	if err := c.getJSON(ctx, "/api/v1/states/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AdminClient) CreateState(ctx context.Context, state State) (*State, error) {
	var out State
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/states", state, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AdminClient) UpdateState(ctx context.Context, state State) (*State, error) {
	var out State
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/states/"+url.PathEscape(state.ID), state, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// API credentials

func (c *AdminClient) ListCredentials(ctx context.Context) ([]Credential, error) {
	var out []Credential
	return out, c.getJSON(ctx, "/api/v1/credentials", &out)
}

// RotateCredential mints a new secret for a state's credential. The full
// secret is only present in this response; it is never listed again.
func (c *AdminClient) RotateCredential(ctx context.Context, id string) (*Credential, error) {
	var out Credential
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/credentials/"+url.PathEscape(id)+"/rotate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Water norms

func (c *AdminClient) ListNorms(ctx context.Context) ([]WaterNorm, error) {
	var out []WaterNorm
	return out, c.getJSON(ctx, "/api/v1/norms", &out)
}

func (c *AdminClient) UpsertNorm(ctx context.Context, norm WaterNorm) (*WaterNorm, error) {
	var out WaterNorm
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/norms", norm, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Escalation rules

func (c *AdminClient) ListEscalations(ctx context.Context) ([]EscalationRule, error) {
	var out []EscalationRule
	return out, c.getJSON(ctx, "/api/v1/escalations", &out)
}

func (c *AdminClient) CreateEscalation(ctx context.Context, rule EscalationRule) (*EscalationRule, error) {
	var out EscalationRule
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/escalations", rule, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AdminClient) UpdateEscalation(ctx context.Context, rule EscalationRule) (*EscalationRule, error) {
	var out EscalationRule
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/escalations/"+url.PathEscape(rule.ID), rule, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AdminClient) DeleteEscalation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/escalations/"+url.PathEscape(id), nil, nil)
}

// Thresholds

func (c *AdminClient) ListThresholds(ctx context.Context) ([]Threshold, error) {
	var out []Threshold
	return out, c.getJSON(ctx, "/api/v1/thresholds", &out)
}

func (c *AdminClient) UpdateThreshold(ctx context.Context, threshold Threshold) (*Threshold, error) {
	var out Threshold
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/thresholds/"+url.PathEscape(threshold.ID), threshold, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Notification templates

func (c *AdminClient) ListTemplates(ctx context.Context) ([]NotificationTemplate, error) {
	var out []NotificationTemplate
	return out, c.getJSON(ctx, "/api/v1/templates", &out)
}

func (c *AdminClient) CreateTemplate(ctx context.Context, tmpl NotificationTemplate) (*NotificationTemplate, error) {
	var out NotificationTemplate
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/templates", tmpl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AdminClient) UpdateTemplate(ctx context.Context, tmpl NotificationTemplate) (*NotificationTemplate, error) {
	var out NotificationTemplate
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/templates/"+url.PathEscape(tmpl.ID), tmpl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Public dashboard

func (c *AdminClient) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var out DashboardSummary
	if err := c.getJSON(ctx, "/api/v1/dashboard/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AdminClient) DashboardMap(ctx context.Context) ([]StateMetric, error) {
	var out []StateMetric
	return out, c.getJSON(ctx, "/api/v1/dashboard/map", &out)
}

func (c *AdminClient) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *AdminClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errs.Wrapf(err, "[AdminClient] failed to encode request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrapf(err, "[AdminClient] api request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errs.Wrapf(err, "[AdminClient] failed to parse api response")
	}
	return nil
}
