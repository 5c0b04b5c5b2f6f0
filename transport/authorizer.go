package transport

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jalsoochak/go-admin-console/auth"
	errs "github.com/jalsoochak/go-admin-console/internal/errors"
)

// SessionController is the slice of the session manager the pipeline drives.
type SessionController interface {
	Session() auth.Session
	RefreshAccessToken(ctx context.Context) (string, error)
	SetSessionExpired()
}

var _ SessionController = (*auth.SessionManager)(nil)

// refreshKey is the singleflight key: one refresh in flight process-wide.
const refreshKey = "refresh"

type retryMarker struct{}

// Authorizer is an http.RoundTripper that attaches the current access token as
// a bearer credential and transparently recovers from access-token expiry.
//
// On a 401 for a non-auth endpoint it triggers the session manager's refresh
// through a singleflight group, so any number of concurrently failing requests
// observe exactly one refresh call and share its outcome. On refresh success
// each failed request is replayed once with the new token; on refresh failure
// the session is marked expired exactly once and every waiter fails with the
// refresh error.
type Authorizer struct {
	base     http.RoundTripper
	sessions SessionController
	group    singleflight.Group
	logger   zerolog.Logger

	// Requests whose path starts with authPathPrefix never trigger a refresh:
	// a 401 from the login or refresh endpoint is terminal.
	authPathPrefix string
}

// AuthorizerOption modifies an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithBase sets the underlying RoundTripper (default http.DefaultTransport).
func WithBase(base http.RoundTripper) AuthorizerOption {
	return func(a *Authorizer) {
		a.base = base
	}
}

// WithAuthPathPrefix overrides the path prefix treated as authentication
// endpoints (default "/auth/").
func WithAuthPathPrefix(prefix string) AuthorizerOption {
	return func(a *Authorizer) {
		a.authPathPrefix = prefix
	}
}

// WithLogger sets the logger for refresh/replay events.
func WithLogger(logger zerolog.Logger) AuthorizerOption {
	return func(a *Authorizer) {
		a.logger = logger
	}
}

// NewAuthorizer creates the authorization pipeline around the given session
// controller.
func NewAuthorizer(sessions SessionController, options ...AuthorizerOption) (*Authorizer, error) {
	if sessions == nil {
		return nil, errs.Wrapf(errs.ErrInternal, "[NewAuthorizer] session controller is required")
	}

	a := &Authorizer{
		base:           http.DefaultTransport,
		sessions:       sessions,
		logger:         zerolog.Nop(),
		authPathPrefix: "/auth/",
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// Client returns an *http.Client whose transport is a new Authorizer.
func Client(sessions SessionController, options ...AuthorizerOption) (*http.Client, error) {
	a, err := NewAuthorizer(sessions, options...)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: a}, nil
}

// RoundTrip implements http.RoundTripper.
func (a *Authorizer) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if accessToken := a.sessions.Session().AccessToken; accessToken != "" {
		out.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if out.Header.Get("X-Request-Id") == "" {
		out.Header.Set("X-Request-Id", uuid.New().String())
	}

	resp, err := a.base.RoundTrip(out)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// A 401 from the auth endpoints themselves, or on a replayed request, is
	// terminal. Refreshing in response to a failed refresh would loop forever.
	if strings.HasPrefix(req.URL.Path, a.authPathPrefix) || isRetry(req) {
		return resp, nil
	}

	if a.sessions.Session().RefreshToken == "" {
		a.sessions.SetSessionExpired()
		return resp, nil
	}

	// The refreshed token is read back from the session on replay.
	if _, err := a.refresh(req.Context()); err != nil {
		drainAndClose(resp)
		return nil, err
	}

	retryReq, err := retryRequest(req)
	if err != nil {
		// Body cannot be rewound; surface the original 401.
		a.logger.Debug().Err(err).Str("url", req.URL.String()).Msg("cannot replay request")
		return resp, nil
	}

	a.logger.Debug().Str("url", req.URL.String()).Msg("replaying request after token refresh")
	drainAndClose(resp)
	return a.RoundTrip(retryReq)
}

// refresh funnels every concurrent 401 into a single RefreshAccessToken call.
// The singleflight group only forgets the key once the call settles, so a
// request that fails while a refresh is in flight always joins it rather than
// starting a second one. SetSessionExpired runs inside the shared call and
// therefore exactly once per failed refresh.
func (a *Authorizer) refresh(ctx context.Context) (string, error) {
	v, err, _ := a.group.Do(refreshKey, func() (any, error) {
		accessToken, err := a.sessions.RefreshAccessToken(context.WithoutCancel(ctx))
		if err != nil {
			a.sessions.SetSessionExpired()
			return nil, err
		}
		return accessToken, nil
	})
	if err != nil {
		return "", errs.Wrapf(err, "[Authorizer.refresh] token refresh")
	}
	return v.(string), nil
}

// retryRequest clones the original request, rewinds its body and marks it so a
// second 401 is terminal.
func retryRequest(req *http.Request) (*http.Request, error) {
	retry := req.Clone(context.WithValue(req.Context(), retryMarker{}, true))
	if req.Body == nil {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, errs.Wrapf(errs.ErrNotRetryable, "[transport.retryRequest] request body is not rewindable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errs.Wrapf(err, "[transport.retryRequest] failed to rewind request body")
	}
	retry.Body = body
	return retry, nil
}

func isRetry(req *http.Request) bool {
	marked, _ := req.Context().Value(retryMarker{}).(bool)
	return marked
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))
	_ = resp.Body.Close()
}
