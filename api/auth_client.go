package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	errs "github.com/jalsoochak/go-admin-console/internal/errors"
)

const (
	loginPath    = "/auth/login"
	refreshPath  = "/auth/refresh"
	logoutPath   = "/auth/logout"
	registerPath = "/auth/register"

	maxResponseBytes = 256 * 1024
)

// AuthClient speaks the authentication server's wire protocol. It deliberately
// bypasses the authorization pipeline: auth endpoints never trigger a refresh.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

// AuthClientOption modifies an AuthClient.
type AuthClientOption func(*AuthClient)

// WithHTTPClient overrides the underlying HTTP client (primarily for testing).
func WithHTTPClient(httpClient *http.Client) AuthClientOption {
	return func(c *AuthClient) {
		c.httpClient = httpClient
	}
}

// NewAuthClient creates a client for the authentication server at baseURL.
func NewAuthClient(baseURL string, options ...AuthClientOption) *AuthClient {
	c := &AuthClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token pair and the user's identity token.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, loginPath, LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, errs.Wrapf(err, "[AuthClient.Login] login request")
	}
	return &resp, nil
}

// Refresh exchanges the refresh token for a new token pair. The refresh token
// rotates on each call; the one passed in is no longer valid afterwards.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, refreshPath, RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, errs.Wrapf(err, "[AuthClient.Refresh] refresh request")
	}
	return &resp, nil
}

// Logout notifies the server that the refresh token should be revoked.
func (c *AuthClient) Logout(ctx context.Context, refreshToken string) error {
	if err := c.doJSON(ctx, http.MethodPost, logoutPath, LogoutRequest{RefreshToken: refreshToken}, nil); err != nil {
		return errs.Wrapf(err, "[AuthClient.Logout] logout request")
	}
	return nil
}

// Register submits an admin onboarding profile.
func (c *AuthClient) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.doJSON(ctx, http.MethodPost, registerPath, req, nil); err != nil {
		return errs.Wrapf(err, "[AuthClient.Register] register request")
	}
	return nil
}

func (c *AuthClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errs.Wrapf(err, "failed to encode request body")
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
		return errs.Wrapf(err, "auth request failed")
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
		return errs.Wrapf(err, "failed to parse auth response")
	}
	return nil
}
