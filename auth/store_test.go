package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hennalash/go-client/cache"
	"github.com/hennalash/go-client/logger"
)

type fakeBackend struct {
	mux      *http.ServeMux
	srv      *httptest.Server
	meCalls  atomic.Int32
	validTok string
	user     User
}

func newFakeBackend(t *testing.T, user User) *fakeBackend {
	t.Helper()
	b := &fakeBackend{mux: http.NewServeMux(), validTok: "tok-valid", user: user}
	b.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "correct" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Incorrect email or password"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": b.validTok})
	})
	b.mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.meCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+b.validTok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(b.user)
	})
	b.srv = httptest.NewServer(b.mux)
	t.Cleanup(b.srv.Close)
	return b
}

func newTestStore(t *testing.T, baseURL string) (*Store, cache.Cache) {
	t.Helper()
	state, err := cache.NewFile(filepath.Join(t.TempDir(), "state.bin"))
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })
	return NewStore(baseURL, state, WithLogger(logger.NewTestLogger())), state
}

func TestLoginSuccessClientRole(t *testing.T) {
	b := newFakeBackend(t, User{ID: "1", Email: "claire@example.fr", Role: RoleClient})
	s, state := newTestStore(t, b.srv.URL)

	res := s.Login(context.Background(), "claire@example.fr", "correct")
	require.True(t, res.Success)
	assert.Equal(t, RoleClient, res.User.Role)
	assert.Equal(t, "/mon-espace", res.RedirectPath)
	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.IsAdmin())

	// Token and snapshot must be durably persisted.
	found, tok, err := cache.GetTyped[string](context.Background(), state, keyToken)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tok-valid", tok)
	found, _, err = cache.GetTyped[User](context.Background(), state, keyUser)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLoginSuccessAdminRole(t *testing.T) {
	b := newFakeBackend(t, User{ID: "2", Email: "sarah@hennalash.fr", Role: RoleAdmin})
	s, _ := newTestStore(t, b.srv.URL)

	res := s.Login(context.Background(), "sarah@hennalash.fr", "correct")
	require.True(t, res.Success)
	assert.Equal(t, "/admin", res.RedirectPath)
	assert.True(t, s.IsAdmin())
}

func TestLoginBadCredentials(t *testing.T) {
	b := newFakeBackend(t, User{Role: RoleClient})
	s, _ := newTestStore(t, b.srv.URL)

	res := s.Login(context.Background(), "claire@example.fr", "wrong")
	assert.False(t, res.Success)
	// Server-supplied detail wins over the mapped message.
	assert.Equal(t, "Incorrect email or password", res.Error)
	assert.False(t, s.IsAuthenticated())
}

func TestLoginMappedMessages(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status int
		want   string
	}{
		{"unauthorized", http.StatusUnauthorized, msgInvalidCredentials},
		{"server error", http.StatusInternalServerError, msgServerError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()
			s, _ := newTestStore(t, srv.URL)
			res := s.Login(context.Background(), "a@b.fr", "pw")
			assert.False(t, res.Success)
			assert.Equal(t, tc.want, res.Error)
		})
	}
}

func TestLoginNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	s, _ := newTestStore(t, srv.URL)
	res := s.Login(context.Background(), "a@b.fr", "pw")
	assert.False(t, res.Success)
	assert.Equal(t, msgNetworkError, res.Error)
}

func TestLogoutClearsEverything(t *testing.T) {
	b := newFakeBackend(t, User{Email: "claire@example.fr", Role: RoleClient})
	s, state := newTestStore(t, b.srv.URL)

	require.True(t, s.Login(context.Background(), "claire@example.fr", "correct").Success)
	s.Logout(context.Background())

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	found, _, err := state.Get(context.Background(), keyToken)
	require.NoError(t, err)
	assert.False(t, found)

	// Idempotent.
	s.Logout(context.Background())
	assert.False(t, s.IsAuthenticated())
}

func TestRestoreFromFreshSnapshot(t *testing.T) {
	b := newFakeBackend(t, User{Email: "claire@example.fr", Role: RoleClient})
	s, state := newTestStore(t, b.srv.URL)
	require.True(t, s.Login(context.Background(), "claire@example.fr", "correct").Success)
	meCallsAfterLogin := b.meCalls.Load()

	// Fresh store over the same durable state, as after a restart.
	s2 := NewStore(b.srv.URL, state, WithLogger(logger.NewTestLogger()))
	s2.Restore(context.Background())

	assert.True(t, s2.IsAuthenticated())
	assert.Equal(t, "tok-valid", s2.Token())
	// The snapshot is under ProfileTTL old: no verification round-trip.
	assert.Equal(t, meCallsAfterLogin, b.meCalls.Load())
}

func TestRestoreStaleSnapshotVerifies(t *testing.T) {
	b := newFakeBackend(t, User{Email: "claire@example.fr", Role: RoleClient})
	s, state := newTestStore(t, b.srv.URL)
	require.True(t, s.Login(context.Background(), "claire@example.fr", "correct").Success)

	// Age the snapshot out.
	_, err := state.Delete(context.Background(), keyUser)
	require.NoError(t, err)
	before := b.meCalls.Load()

	s2 := NewStore(b.srv.URL, state, WithLogger(logger.NewTestLogger()))
	s2.Restore(context.Background())

	assert.True(t, s2.IsAuthenticated())
	assert.Equal(t, before+1, b.meCalls.Load())

	// Verification refreshes the snapshot.
	found, _, err := state.Get(context.Background(), keyUser)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRestoreRejectedTokenLogsOut(t *testing.T) {
	b := newFakeBackend(t, User{Email: "claire@example.fr", Role: RoleClient})
	state, err := cache.NewFile(filepath.Join(t.TempDir(), "state.bin"))
	require.NoError(t, err)
	defer state.Close()

	// Persist a dead token with no snapshot.
	require.NoError(t, state.Set(context.Background(), keyToken, "tok-expired", cache.NoExpiration))

	s := NewStore(b.srv.URL, state, WithLogger(logger.NewTestLogger()))
	s.Restore(context.Background())

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	found, _, err := state.Get(context.Background(), keyToken)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRestoreWithoutToken(t *testing.T) {
	b := newFakeBackend(t, User{})
	s, _ := newTestStore(t, b.srv.URL)
	s.Restore(context.Background())
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, int32(0), b.meCalls.Load())
}

func TestRegisterConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()
	s, _ := newTestStore(t, srv.URL)
	res := s.Register(context.Background(), Registration{Email: "a@b.fr", Password: "pw", Name: "A"})
	assert.False(t, res.Success)
	assert.Equal(t, msgEmailTaken, res.Error)
}

func TestRegisterValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()
	s, _ := newTestStore(t, srv.URL)
	res := s.Register(context.Background(), Registration{})
	assert.False(t, res.Success)
	assert.Equal(t, msgInvalidFields, res.Error)
}

func TestRegisterSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(User{ID: "3", Email: "new@example.fr", Role: RoleClient})
	}))
	defer srv.Close()
	s, _ := newTestStore(t, srv.URL)
	res := s.Register(context.Background(), Registration{Email: "new@example.fr", Password: "pw", Name: "N"})
	require.True(t, res.Success)
	assert.Equal(t, "new@example.fr", res.User.Email)
	// Registration does not log the user in.
	assert.False(t, s.IsAuthenticated())
}

func TestUnauthorizedAnywhereTearsDownSession(t *testing.T) {
	b := newFakeBackend(t, User{Email: "claire@example.fr", Role: RoleClient})
	b.mux.HandleFunc("GET /api/appointments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	s, state := newTestStore(t, b.srv.URL)
	require.True(t, s.Login(context.Background(), "claire@example.fr", "correct").Success)

	// Any 401 response purges the session, whatever call triggered it.
	_ = s.Client().Get(context.Background(), "/api/appointments", nil)

	assert.False(t, s.IsAuthenticated())
	found, _, err := state.Get(context.Background(), keyToken)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPasswordResetFlow(t *testing.T) {
	var gotConfirm passwordResetConfirm
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/password-reset/request", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/auth/password-reset/confirm", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotConfirm)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, _ := newTestStore(t, srv.URL)
	assert.True(t, s.RequestPasswordReset(context.Background(), "claire@example.fr").Success)
	res := s.ConfirmPasswordReset(context.Background(), "claire@example.fr", "123456", "newpw")
	assert.True(t, res.Success)
	assert.Equal(t, "123456", gotConfirm.Code)
	assert.Equal(t, "newpw", gotConfirm.NewPassword)
}
