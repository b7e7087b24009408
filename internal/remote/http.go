package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wallethabit/affirmations/internal/common"
	"github.com/wallethabit/affirmations/internal/models"
)

const (
	restPath = "/rest/v1"
	authPath = "/auth/v1"

	affirmationsTable = "affirmations"
	sessionsTable     = "practice_sessions"
	settingsTable     = "user_settings"

	// sessionsListCap bounds the reconciliation pull to one year of history.
	sessionsListCap = 365
)

// HTTPGateway implements Gateway against a Supabase-compatible backend:
// PostgREST tables under /rest/v1 and GoTrue auth under /auth/v1.
type HTTPGateway struct {
	baseURL string
	anonKey string
	client  *http.Client

	mu          sync.RWMutex
	session     *Session
	subscribers []func(*Session)
}

// NewHTTPGateway returns a gateway for the given project URL and public
// (anon) API key.
func NewHTTPGateway(baseURL, anonKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

// GetSession returns the current session, or nil when signed out.
func (g *HTTPGateway) GetSession() *Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// OnSessionChange registers a callback invoked on every session transition
// (sign-in, sign-out). The callback receives the new session (nil on
// sign-out) and runs on the caller's goroutine.
func (g *HTTPGateway) OnSessionChange(fn func(*Session)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subscribers = append(g.subscribers, fn)
}

func (g *HTTPGateway) setSession(s *Session) {
	g.mu.Lock()
	g.session = s
	subs := make([]func(*Session), len(g.subscribers))
	copy(subs, g.subscribers)
	g.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

// SignInWithMagicLink asks the backend to email a one-time code / magic link.
func (g *HTTPGateway) SignInWithMagicLink(ctx context.Context, email string) error {
	payload := map[string]any{"email": email, "create_user": true}
	return g.doJSON(ctx, http.MethodPost, authPath+"/otp", nil, "", payload, nil)
}

type verifyResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// VerifyOTP completes the magic-link flow with the emailed code and installs
// the resulting session.
func (g *HTTPGateway) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	payload := map[string]string{"type": "email", "email": email, "token": code}

	var resp verifyResponse
	if err := g.doJSON(ctx, http.MethodPost, authPath+"/verify", nil, "", payload, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", common.ErrUnauthorized)
	}

	s := &Session{
		AccessToken: resp.AccessToken,
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		ExpiresAt:   tokenExpiry(resp.AccessToken),
	}
	g.setSession(s)
	return s, nil
}

// SignOut revokes the session remotely and always clears it locally, even
// when the revoke call fails.
func (g *HTTPGateway) SignOut(ctx context.Context) error {
	err := g.doJSON(ctx, http.MethodPost, authPath+"/logout", nil, "", nil, nil)
	g.setSession(nil)
	return err
}

// Ping checks backend reachability via the auth health endpoint.
func (g *HTTPGateway) Ping(ctx context.Context) error {
	return g.doJSON(ctx, http.MethodGet, authPath+"/health", nil, "", nil, nil)
}

func (g *HTTPGateway) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

// CreateAffirmation inserts with on_conflict=id merge semantics, so a queued
// create replayed after a lost response does not duplicate the record.
func (g *HTTPGateway) CreateAffirmation(ctx context.Context, a models.Affirmation) (*models.Affirmation, error) {
	q := url.Values{"on_conflict": {"id"}}
	var rows []models.Affirmation
	err := g.doJSON(ctx, http.MethodPost, restPath+"/"+affirmationsTable, q,
		"resolution=merge-duplicates,return=representation", a, &rows)
	if err != nil {
		return nil, err
	}
	return oneRow(rows)
}

func (g *HTTPGateway) UpdateAffirmation(ctx context.Context, id string, a models.Affirmation) (*models.Affirmation, error) {
	q := url.Values{"id": {"eq." + id}}
	var rows []models.Affirmation
	err := g.doJSON(ctx, http.MethodPatch, restPath+"/"+affirmationsTable, q,
		"return=representation", a, &rows)
	if err != nil {
		return nil, err
	}
	return oneRow(rows)
}

func (g *HTTPGateway) ListAffirmations(ctx context.Context) ([]models.Affirmation, error) {
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	var rows []models.Affirmation
	if err := g.doJSON(ctx, http.MethodGet, restPath+"/"+affirmationsTable, q, "", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LogSession upserts a practice session on the backend conflict key, so
// replaying the same queued item is idempotent.
func (g *HTTPGateway) LogSession(ctx context.Context, s models.Session) (*models.Session, error) {
	q := url.Values{"on_conflict": {"user_id,affirmation_id,practiced_at,mode"}}
	var rows []models.Session
	err := g.doJSON(ctx, http.MethodPost, restPath+"/"+sessionsTable, q,
		"resolution=merge-duplicates,return=representation", s, &rows)
	if err != nil {
		return nil, err
	}
	return oneRow(rows)
}

func (g *HTTPGateway) ListSessions(ctx context.Context) ([]models.Session, error) {
	q := url.Values{
		"select": {"*"},
		"order":  {"practiced_at.desc"},
		"limit":  {fmt.Sprint(sessionsListCap)},
	}
	var rows []models.Session
	if err := g.doJSON(ctx, http.MethodGet, restPath+"/"+sessionsTable, q, "", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *HTTPGateway) GetSettings(ctx context.Context) (*models.Settings, error) {
	s := g.GetSession()
	if !s.Valid(time.Now()) {
		return nil, common.ErrNoSession
	}
	q := url.Values{"select": {"*"}, "user_id": {"eq." + s.UserID}, "limit": {"1"}}
	var rows []models.Settings
	if err := g.doJSON(ctx, http.MethodGet, restPath+"/"+settingsTable, q, "", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrNotFound
	}
	return &rows[0], nil
}

func (g *HTTPGateway) UpsertSettings(ctx context.Context, s models.Settings) (*models.Settings, error) {
	q := url.Values{"on_conflict": {"user_id"}}
	var rows []models.Settings
	err := g.doJSON(ctx, http.MethodPost, restPath+"/"+settingsTable, q,
		"resolution=merge-duplicates,return=representation", s, &rows)
	if err != nil {
		return nil, err
	}
	return oneRow(rows)
}

// doJSON performs one JSON round trip. Network errors map to
// common.ErrUnavailable, 401/403 to common.ErrUnauthorized, and any other
// non-2xx status to common.ErrUnavailable with the status attached.
func (g *HTTPGateway) doJSON(ctx context.Context, method, path string, query url.Values, prefer string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", g.anonKey)
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	token := g.anonKey
	if s := g.GetSession(); s.Valid(time.Now()) {
		token = s.AccessToken
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", common.ErrUnauthorized, resp.StatusCode, data)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: status %d: %s", common.ErrUnavailable, resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: bad response: %v", common.ErrUnavailable, err)
		}
	}
	return nil
}

func oneRow[T any](rows []T) (*T, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty representation", common.ErrUnavailable)
	}
	return &rows[0], nil
}

// tokenExpiry reads the exp claim from an access token without verifying the
// signature; the client only needs it to decide when to re-authenticate.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
