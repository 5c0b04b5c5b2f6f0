package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jalsoochak/go-admin-console/api"
	errs "github.com/jalsoochak/go-admin-console/internal/errors"
	"github.com/jalsoochak/go-admin-console/token"
	"github.com/jalsoochak/go-admin-console/token/store"
	"github.com/jalsoochak/go-admin-console/users"
)

// AuthAPI is the slice of the authentication server protocol the session
// manager consumes.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

var _ AuthAPI = (*api.AuthClient)(nil)

// SessionManager owns the Session and is its only writer. UI code and the
// authorization pipeline read snapshots via Session() and drive state changes
// through the operations below.
type SessionManager struct {
	authAPI AuthAPI
	tokens  store.Repo
	logger  zerolog.Logger

	lock          sync.Mutex
	session       Session
	bootstrapOnce sync.Once
}

// SessionManagerOption defines a function type to modify the SessionManager instance.
type SessionManagerOption func(*SessionManager)

// WithLogger sets the logger used for non-surfaced failures.
func WithLogger(logger zerolog.Logger) SessionManagerOption {
	return func(m *SessionManager) {
		m.logger = logger
	}
}

// NewSessionManager initializes a SessionManager with required dependencies.
// The session starts empty with IsBootstrapping set; call Bootstrap once at
// startup to attempt a silent restore.
func NewSessionManager(authAPI AuthAPI, tokens store.Repo, options ...SessionManagerOption) (*SessionManager, error) {
	if authAPI == nil {
		return nil, errs.Wrapf(errs.ErrInternal, "[NewSessionManager] authAPI is required")
	}
	if tokens == nil {
		return nil, errs.Wrapf(errs.ErrInternal, "[NewSessionManager] token repo is required")
	}

	m := &SessionManager{
		authAPI: authAPI,
		tokens:  tokens,
		logger:  zerolog.Nop(),
		session: Session{IsBootstrapping: true},
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Session returns a snapshot of the current session state.
func (m *SessionManager) Session() Session {
	m.lock.Lock()
	defer m.lock.Unlock()
	s := m.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Login submits credentials to the authentication server. On success the token
// pair is persisted, the identity is decoded and the role-dependent home route
// is returned. On failure the session is cleared, a user-facing message is
// recorded in Session().Error, and the error is returned for the caller to
// react to.
func (m *SessionManager) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := m.authAPI.Login(ctx, email, password)
	if err != nil {
		m.failOperation(api.UserMessage(err))
		return "", errs.Wrapf(err, "[SessionManager.Login] login")
	}

	user, err := m.identityFrom(resp)
	if err != nil {
		m.failOperation(IdentityDecodeMessage)
		return "", errs.Wrapf(err, "[SessionManager.Login] identity")
	}

	if err := m.tokens.Save(resp.AccessToken, resp.RefreshToken); err != nil {
		m.failOperation(api.UserMessage(err))
		return "", errs.Wrapf(err, "[SessionManager.Login] persist tokens")
	}

	m.lock.Lock()
	m.session.AccessToken = resp.AccessToken
	m.session.RefreshToken = resp.RefreshToken
	m.session.User = user
	m.session.SessionExpired = false
	m.session.Error = ""
	m.lock.Unlock()

	return user.Role.HomeRoute(), nil
}

// Logout notifies the authentication server that the refresh token should be
// revoked (best effort - a failing call is logged and swallowed) and always
// resets the session to its empty, unauthenticated shape.
func (m *SessionManager) Logout(ctx context.Context) {
	m.lock.Lock()
	refreshToken := m.session.RefreshToken
	m.lock.Unlock()

	if refreshToken != "" {
		if err := m.authAPI.Logout(ctx, refreshToken); err != nil {
			m.logger.Debug().Err(err).Msg("logout notification failed")
		}
	}

	if err := m.tokens.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear persisted tokens on logout")
	}

	m.lock.Lock()
	m.session = Session{}
	m.lock.Unlock()
}

// Bootstrap attempts a one-time silent session restore from the persisted
// refresh token. Without a stored token it completes immediately with no
// network call. All failures are absorbed: the process simply starts
// unauthenticated, and SessionExpired is never set from here.
func (m *SessionManager) Bootstrap(ctx context.Context) {
	m.bootstrapOnce.Do(func() {
		m.bootstrap(ctx)
	})
}

func (m *SessionManager) bootstrap(ctx context.Context) {
	defer func() {
		m.lock.Lock()
		m.session.IsBootstrapping = false
		m.lock.Unlock()
	}()

	pair, err := m.tokens.Load()
	if err != nil {
		m.logger.Warn().Err(err).Msg("discarding unreadable token cache")
		if cerr := m.tokens.Clear(); cerr != nil {
			m.logger.Warn().Err(cerr).Msg("failed to clear token cache")
		}
		return
	}
	if pair == nil || pair.RefreshToken == "" {
		return
	}

	m.lock.Lock()
	m.session.AccessToken = pair.AccessToken
	m.session.RefreshToken = pair.RefreshToken
	m.lock.Unlock()

	if _, err := m.RefreshAccessToken(ctx); err != nil {
		// RefreshAccessToken already cleared the session and the cache.
		m.logger.Debug().Err(err).Msg("silent session restore failed")
	}
}

// RefreshAccessToken exchanges the current refresh token for a new pair. The
// refresh token rotates: on success the new pair is persisted and the user is
// rebuilt from the freshly issued identity token. On failure the session and
// the persisted pair are cleared, but SessionExpired is NOT set - escalation
// to an expired session is the caller's decision (see transport.Authorizer),
// so that a failed bootstrap restore does not render the expired-session
// state.
func (m *SessionManager) RefreshAccessToken(ctx context.Context) (string, error) {
	m.lock.Lock()
	refreshToken := m.session.RefreshToken
	m.lock.Unlock()

	if refreshToken == "" {
		return "", errs.ErrRefreshTokenUnavailable
	}

	resp, err := m.authAPI.Refresh(ctx, refreshToken)
	if err != nil {
		m.failOperation(api.UserMessage(err))
		return "", errs.Wrapf(err, "[SessionManager.RefreshAccessToken] refresh")
	}

	user, err := m.identityFrom(resp)
	if err != nil {
		m.failOperation(IdentityDecodeMessage)
		return "", errs.Wrapf(err, "[SessionManager.RefreshAccessToken] identity")
	}

	if err := m.tokens.Save(resp.AccessToken, resp.RefreshToken); err != nil {
		m.failOperation(api.UserMessage(err))
		return "", errs.Wrapf(err, "[SessionManager.RefreshAccessToken] persist tokens")
	}

	m.lock.Lock()
	m.session.AccessToken = resp.AccessToken
	m.session.RefreshToken = resp.RefreshToken
	m.session.User = user
	m.session.SessionExpired = false
	m.session.Error = ""
	m.lock.Unlock()

	return resp.AccessToken, nil
}

// SetSessionExpired clears the session and the persisted pair and marks the
// session as definitively expired. Idempotent. Only a fresh login clears the
// flag again.
func (m *SessionManager) SetSessionExpired() {
	if err := m.tokens.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear persisted tokens on session expiry")
	}

	m.lock.Lock()
	m.session.AccessToken = ""
	m.session.RefreshToken = ""
	m.session.User = nil
	m.session.SessionExpired = true
	m.session.Error = SessionExpiredMessage
	m.lock.Unlock()
}

// SetTokens stores and persists a token pair issued out of band (e.g. a
// password-set flow) without touching the decoded user.
func (m *SessionManager) SetTokens(accessToken, refreshToken string) error {
	if err := m.tokens.Save(accessToken, refreshToken); err != nil {
		return errs.Wrapf(err, "[SessionManager.SetTokens] persist tokens")
	}

	m.lock.Lock()
	m.session.AccessToken = accessToken
	m.session.RefreshToken = refreshToken
	m.lock.Unlock()
	return nil
}

// identityFrom decodes the identity token and combines it with the role and
// tenant asserted in the token response.
func (m *SessionManager) identityFrom(resp *api.TokenResponse) (*users.User, error) {
	user, err := token.DecodeIdentity(resp.IDToken)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrIdentityDecode, "[SessionManager.identityFrom] %v", err)
	}
	user.Role = users.RoleType(resp.Role)
	user.TenantID = resp.TenantID
	user.PersonID = resp.PersonID
	return user, nil
}

// failOperation clears the in-memory and persisted credentials after a failed
// login or refresh, recording a user-facing message. SessionExpired is
// deliberately left untouched: a rejected credential is not an expired
// session, and escalation after a failed refresh belongs to the pipeline.
func (m *SessionManager) failOperation(message string) {
	if err := m.tokens.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear persisted tokens")
	}

	m.lock.Lock()
	m.session.AccessToken = ""
	m.session.RefreshToken = ""
	m.session.User = nil
	m.session.Error = message
	m.lock.Unlock()
}
