package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallethabit/affirmations/internal/common"
	"github.com/wallethabit/affirmations/internal/models"
)

const testAnonKey = "anon-key"

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// fakeSupabase records the last request seen per route and serves canned rows.
type fakeSupabase struct {
	t *testing.T

	lastHeaders http.Header
	lastQuery   map[string]string
	lastBody    []byte

	accessToken string
}

func (f *fakeSupabase) capture(r *http.Request) {
	f.lastHeaders = r.Header.Clone()
	f.lastQuery = map[string]string{}
	for k := range r.URL.Query() {
		f.lastQuery[k] = r.URL.Query().Get(k)
	}
	f.lastBody, _ = io.ReadAll(r.Body)
}

func newFakeSupabase(t *testing.T) (*fakeSupabase, *httptest.Server) {
	f := &fakeSupabase{t: t, accessToken: signedToken(t, time.Now().Add(time.Hour))}

	r := chi.NewRouter()
	r.Post("/auth/v1/otp", func(w http.ResponseWriter, req *http.Request) {
		f.capture(req)
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/auth/v1/verify", func(w http.ResponseWriter, req *http.Request) {
		f.capture(req)
		var body map[string]string
		_ = json.Unmarshal(f.lastBody, &body)
		if body["token"] != "123456" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": f.accessToken,
			"user":         map[string]string{"id": "user-1", "email": "u@example.com"},
		})
	})
	r.Post("/auth/v1/logout", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/auth/v1/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/rest/v1/affirmations", func(w http.ResponseWriter, req *http.Request) {
		f.capture(req)
		var a models.Affirmation
		_ = json.Unmarshal(f.lastBody, &a)
		a.UserID = "user-1"
		_ = json.NewEncoder(w).Encode([]models.Affirmation{a})
	})
	r.Get("/rest/v1/affirmations", func(w http.ResponseWriter, req *http.Request) {
		f.capture(req)
		_ = json.NewEncoder(w).Encode([]models.Affirmation{
			{ID: "a1", UserID: "user-1", Title: "Remote"},
		})
	})
	r.Post("/rest/v1/practice_sessions", func(w http.ResponseWriter, req *http.Request) {
		f.capture(req)
		var s models.Session
		_ = json.Unmarshal(f.lastBody, &s)
		s.UserID = "user-1"
		_ = json.NewEncoder(w).Encode([]models.Session{s})
	})
	r.Get("/rest/v1/user_settings", func(w http.ResponseWriter, req *http.Request) {
		f.capture(req)
		_ = json.NewEncoder(w).Encode([]models.Settings{})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func signIn(t *testing.T, g *HTTPGateway) *Session {
	t.Helper()
	s, err := g.VerifyOTP(context.Background(), "u@example.com", "123456")
	require.NoError(t, err)
	return s
}

func TestVerifyOTP_InstallsSessionAndNotifies(t *testing.T) {
	_, srv := newFakeSupabase(t)
	g := NewHTTPGateway(srv.URL, testAnonKey)

	var notified []*Session
	g.OnSessionChange(func(s *Session) { notified = append(notified, s) })

	s := signIn(t, g)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "u@example.com", s.Email)
	assert.False(t, s.ExpiresAt.IsZero(), "expiry parsed from the token")
	assert.True(t, s.Valid(time.Now()))

	require.Len(t, notified, 1)
	assert.Equal(t, s, notified[0])
	assert.Equal(t, s, g.GetSession())
}

func TestVerifyOTP_BadCode(t *testing.T) {
	_, srv := newFakeSupabase(t)
	g := NewHTTPGateway(srv.URL, testAnonKey)

	_, err := g.VerifyOTP(context.Background(), "u@example.com", "999999")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Nil(t, g.GetSession())
}

func TestCreateAffirmation_HeadersAndConflictKey(t *testing.T) {
	f, srv := newFakeSupabase(t)
	g := NewHTTPGateway(srv.URL, testAnonKey)
	signIn(t, g)

	a := models.NewAffirmation("money", "Title", "Text", time.Now())
	got, err := g.CreateAffirmation(context.Background(), a)
	require.NoError(t, err)

	// server representation wins
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, a.ID, got.ID)

	assert.Equal(t, testAnonKey, f.lastHeaders.Get("apikey"))
	assert.Equal(t, "Bearer "+f.accessToken, f.lastHeaders.Get("Authorization"))
	assert.Equal(t, "resolution=merge-duplicates,return=representation", f.lastHeaders.Get("Prefer"))
	assert.Equal(t, "id", f.lastQuery["on_conflict"])
}

func TestRequestsWithoutSessionUseAnonKey(t *testing.T) {
	f, srv := newFakeSupabase(t)
	g := NewHTTPGateway(srv.URL, testAnonKey)

	_, err := g.ListAffirmations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+testAnonKey, f.lastHeaders.Get("Authorization"))
}

func TestLogSession_UpsertsOnConflictKey(t *testing.T) {
	f, srv := newFakeSupabase(t)
	g := NewHTTPGateway(srv.URL, testAnonKey)
	signIn(t, g)

	s := models.NewSession("a1", models.ModeWriting, time.Now(), time.Now())
	got, err := g.LogSession(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "user_id,affirmation_id,practiced_at,mode", f.lastQuery["on_conflict"])
}

func TestGetSettings(t *testing.T) {
	_, srv := newFakeSupabase(t)
	g := NewHTTPGateway(srv.URL, testAnonKey)

	// without a session the call never reaches the network
	_, err := g.GetSettings(context.Background())
	assert.ErrorIs(t, err, common.ErrNoSession)

	signIn(t, g)
	_, err = g.GetSettings(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestErrorMapping(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/rest/v1/affirmations", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	r.Get("/rest/v1/practice_sessions", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	g := NewHTTPGateway(srv.URL, testAnonKey)

	_, err := g.ListAffirmations(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = g.ListSessions(context.Background())
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestNetworkErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	g := NewHTTPGateway(srv.URL, testAnonKey)
	err := g.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestSignOut_AlwaysClearsLocally(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/v1/logout", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	g := NewHTTPGateway(srv.URL, testAnonKey)
	g.setSession(&Session{AccessToken: "tok", UserID: "user-1"})

	var notified []*Session
	g.OnSessionChange(func(s *Session) { notified = append(notified, s) })

	err := g.SignOut(context.Background())
	assert.Error(t, err)
	assert.Nil(t, g.GetSession())
	require.Len(t, notified, 1)
	assert.Nil(t, notified[0])
}

func TestSessionValid(t *testing.T) {
	now := time.Now()

	var nilSession *Session
	assert.False(t, nilSession.Valid(now))
	assert.False(t, (&Session{}).Valid(now))
	assert.True(t, (&Session{AccessToken: "tok"}).Valid(now))
	assert.True(t, (&Session{AccessToken: "tok", ExpiresAt: now.Add(time.Minute)}).Valid(now))
	assert.False(t, (&Session{AccessToken: "tok", ExpiresAt: now.Add(-time.Minute)}).Valid(now))
}
