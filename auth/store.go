package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/hennalash/go-client/api"
	"github.com/hennalash/go-client/cache"
	"github.com/hennalash/go-client/logger"
	"github.com/hennalash/go-client/mask"
)

// ProfileTTL is the freshness window for the persisted profile snapshot.
// Within this window, Restore adopts the snapshot without a network call.
const ProfileTTL = 10 * time.Minute

// Durable state keys.
const (
	keyToken = "auth.token"
	keyUser  = "auth.user"
)

// User-facing messages for recovered authentication failures.
const (
	msgInvalidCredentials = "Identifiants invalides."
	msgInvalidFields      = "Certains champs sont invalides."
	msgEmailTaken         = "Cet email est déjà utilisé."
	msgServerError        = "Erreur du serveur, veuillez réessayer."
	msgNetworkError       = "Impossible de contacter le serveur. Vérifiez votre connexion."
)

// Store owns the authentication lifecycle: it holds the bearer token and the
// current profile, persists both in the durable state cache, and supplies
// the token to the API client on every request. It is safe for concurrent
// use.
type Store struct {
	mu     sync.RWMutex
	token  string
	user   *User
	state  cache.Cache
	client *api.Client
	logger logger.Logger
}

var _ api.TokenSource = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger. Defaults to a console logger.
func WithLogger(l logger.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore returns a session store talking to the backend at baseURL and
// persisting session state in the given cache (normally file-backed so the
// session survives restarts). The store wires itself into the API client:
// it is the client's token source, and any 401 anywhere tears the session
// down.
func NewStore(baseURL string, state cache.Cache, opts ...StoreOption) *Store {
	s := &Store{state: state}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NewConsoleLogger()
	}
	s.logger = s.logger.WithPrefix("session")
	s.client = api.New(baseURL,
		api.WithLogger(s.logger),
		api.WithTokenSource(s),
		api.WithOnUnauthorized(s.invalidate),
	)
	return s
}

// Client returns the API client bound to this session. All other SDK
// surfaces (maintenance gate, booking, keep-alive) share this client so the
// bearer token and 401 policy apply everywhere.
func (s *Store) Client() *api.Client {
	return s.client
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser returns a copy of the authenticated profile, if any.
func (s *Store) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsAuthenticated is true iff a profile is set.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsAdmin is true iff the current session belongs to an admin account.
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == RoleAdmin
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login authenticates against the backend. On success the token and a
// timestamped profile snapshot are persisted and the result carries the
// role-derived redirect path. Failures are recovered into Result.Error.
func (s *Store) Login(ctx context.Context, email, password string) Result {
	var resp loginResponse
	if err := s.client.Post(ctx, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		s.logger.Debug("login failed: %v", err)
		return Result{Error: mapError(err, map[int]string{
			http.StatusUnauthorized: msgInvalidCredentials,
		})}
	}

	s.mu.Lock()
	s.token = resp.AccessToken
	s.mu.Unlock()

	// The profile fetch below is issued from within the resolved login flow,
	// so it is guaranteed to carry the new token.
	var user User
	if err := s.client.Get(ctx, "/api/auth/me", &user); err != nil {
		s.logger.Warn("profile fetch after login failed: %v", err)
		s.invalidate()
		return Result{Error: mapError(err, nil)}
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.persist(ctx, resp.AccessToken, user)

	s.logger.Info("logged in as %s (%s)", mask.Email(user.Email), user.Role)
	return Result{Success: true, User: &user, RedirectPath: user.Role.HomePath()}
}

// Register creates an account. 422 maps to an invalid-fields message and
// 409 to an email-in-use message; the server-supplied detail wins when
// present.
func (s *Store) Register(ctx context.Context, reg Registration) Result {
	var user User
	if err := s.client.Post(ctx, "/api/auth/register", reg, &user); err != nil {
		s.logger.Debug("registration failed: %v", err)
		return Result{Error: mapError(err, map[int]string{
			http.StatusUnprocessableEntity: msgInvalidFields,
			http.StatusConflict:            msgEmailTaken,
		})}
	}
	return Result{Success: true, User: &user}
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirm struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// RequestPasswordReset asks the backend to email a reset code.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) Result {
	if err := s.client.Post(ctx, "/api/auth/password-reset/request", passwordResetRequest{Email: email}, nil); err != nil {
		return Result{Error: mapError(err, nil)}
	}
	return Result{Success: true}
}

// ConfirmPasswordReset exchanges the emailed code for a new password.
func (s *Store) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) Result {
	if err := s.client.Post(ctx, "/api/auth/password-reset/confirm", passwordResetConfirm{
		Email:       email,
		Code:        code,
		NewPassword: newPassword,
	}, nil); err != nil {
		return Result{Error: mapError(err, map[int]string{
			http.StatusBadRequest: msgInvalidFields,
		})}
	}
	return Result{Success: true}
}

// Logout clears the token, the profile, and the durable snapshot. It is
// idempotent and safe to call when already logged out.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	if _, err := s.state.Delete(ctx, keyToken); err != nil {
		s.logger.Warn("failed to clear persisted token: %v", err)
	}
	if _, err := s.state.Delete(ctx, keyUser); err != nil {
		s.logger.Warn("failed to clear persisted profile: %v", err)
	}
	s.logger.Debug("session cleared")
}

// Restore initializes the session at application start. A persisted token
// with a snapshot younger than ProfileTTL is adopted without a network
// call; otherwise the token is verified against the backend. A rejected
// token performs a full logout so the app never operates with a dead
// credential. Restore never fails the app: the zero session is the
// fallback.
func (s *Store) Restore(ctx context.Context) {
	found, token, err := cache.GetTyped[string](ctx, s.state, keyToken)
	if err != nil {
		s.logger.Warn("failed to read persisted token: %v", err)
		return
	}
	if !found || token == "" {
		return
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	// Fresh snapshot: skip the round-trip entirely.
	if found, user, err := cache.GetTyped[User](ctx, s.state, keyUser); err == nil && found {
		s.mu.Lock()
		s.user = &user
		s.mu.Unlock()
		s.logger.Debug("session restored from snapshot (%s)", mask.Email(user.Email))
		return
	}

	var user User
	if err := s.client.Get(ctx, "/api/auth/me", &user); err != nil {
		s.logger.Info("persisted token rejected, logging out: %v", err)
		s.Logout(ctx)
		return
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.persist(ctx, token, user)
	s.logger.Debug("session verified for %s", mask.Email(user.Email))
}

// persist writes the token and a fresh profile snapshot to durable state.
// Write failures degrade to an in-memory session only.
func (s *Store) persist(ctx context.Context, token string, user User) {
	if err := s.state.Set(ctx, keyToken, token, cache.NoExpiration); err != nil {
		s.logger.Warn("failed to persist token: %v", err)
	}
	if err := s.state.Set(ctx, keyUser, user, ProfileTTL); err != nil {
		s.logger.Warn("failed to persist profile snapshot: %v", err)
	}
}

// invalidate is the 401 teardown path. It cannot use a request context
// (the triggering request may already be cancelled) so it clears durable
// state on the background context.
func (s *Store) invalidate() {
	s.Logout(context.Background())
}

// mapError converts an API failure into a user-facing message: the
// server-supplied detail wins, then the per-status overrides, then the
// generic server/network fallbacks.
func mapError(err error, overrides map[int]string) string {
	if detail := api.DetailOf(err); detail != "" {
		return detail
	}
	status := api.StatusOf(err)
	if msg, ok := overrides[status]; ok {
		return msg
	}
	switch {
	case status == 0:
		return msgNetworkError
	case status >= http.StatusInternalServerError:
		return msgServerError
	}
	return msgServerError
}
