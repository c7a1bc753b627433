package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/user/deepfocus-cli/config"
)

func TestCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")

	_, err := LoadCredentials(path)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	c := &Credentials{
		Token:  &oauth2.Token{AccessToken: "at", RefreshToken: "rt"},
		UserID: "1234",
		Email:  "student@example.com",
	}
	require.NoError(t, SaveCredentials(path, c))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "1234", got.UserID)
	assert.Equal(t, "rt", got.Token.RefreshToken)

	require.NoError(t, RemoveCredentials(path))
	require.NoError(t, RemoveCredentials(path))
	_, err = LoadCredentials(path)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestLoadCredentialsWithoutUserIsSignedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":{"access_token":"x"}}`), 0o600))

	_, err := LoadCredentials(path)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestSessions(t *testing.T) {
	anon := Anonymous()
	assert.False(t, anon.Authenticated())
	assert.Nil(t, anon.TokenSource())

	var nilSession *Session
	assert.False(t, nilSession.Authenticated())
	assert.Empty(t, nilSession.UserID())

	static := Static("u1")
	assert.True(t, static.Authenticated())
	assert.Equal(t, "u1", static.UserID())
	assert.Nil(t, static.TokenSource())
}

func TestSessionSavesRefreshedToken(t *testing.T) {
	var saved []*oauth2.Token
	cfg := &oauth2.Config{}
	valid := &oauth2.Token{AccessToken: "at", Expiry: time.Now().Add(time.Hour)}

	s := NewSession(context.Background(), cfg, &Credentials{Token: valid, UserID: "u1", Email: "a@b.c"}, func(tok *oauth2.Token) error {
		saved = append(saved, tok)
		return nil
	})
	assert.True(t, s.Authenticated())
	assert.Equal(t, "a@b.c", s.Email())

	tok, err := s.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Empty(t, saved, "unchanged token is not rewritten")
}

func TestOAuthConfigRequiresClient(t *testing.T) {
	_, err := OAuthConfig(config.GoogleConfig{})
	assert.ErrorIs(t, err, ErrMissingClient)

	cfg, err := OAuthConfig(config.GoogleConfig{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	assert.Equal(t, Scopes, cfg.Scopes)
}

func newFakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.NotEmpty(t, r.PostForm.Get("code_verifier"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access",
			"refresh_token": "refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/oauth2/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "g-42", "email": "student@example.com"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testFlow(srv *httptest.Server, open func(string) error) *Flow {
	return &Flow{
		Config: &oauth2.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
			Scopes:       Scopes,
		},
		Open:            open,
		Logger:          zerolog.Nop(),
		UserInfoOptions: []option.ClientOption{option.WithEndpoint(srv.URL + "/")},
	}
}

// redirect simulates the consent page sending the browser back to the loopback listener.
func redirect(t *testing.T, authURL string, mutate func(url.Values)) {
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "S256", q.Get("code_challenge_method"))

	back := url.Values{}
	back.Set("code", "the-code")
	back.Set("state", q.Get("state"))
	if mutate != nil {
		mutate(back)
	}

	go func() {
		resp, err := http.Get(q.Get("redirect_uri") + "?" + back.Encode())
		if err == nil {
			resp.Body.Close()
		}
	}()
}

func TestFlowRun(t *testing.T) {
	srv := newFakeGoogle(t)
	flow := testFlow(srv, func(authURL string) error {
		redirect(t, authURL, nil)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	creds, err := flow.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "g-42", creds.UserID)
	assert.Equal(t, "student@example.com", creds.Email)
	assert.Equal(t, "refresh", creds.Token.RefreshToken)
}

func TestFlowRejectsStateMismatch(t *testing.T) {
	srv := newFakeGoogle(t)
	flow := testFlow(srv, func(authURL string) error {
		redirect(t, authURL, func(v url.Values) { v.Set("state", "forged") })
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := flow.Run(ctx)
	assert.ErrorContains(t, err, "state mismatch")
}

func TestFlowReportsDenial(t *testing.T) {
	srv := newFakeGoogle(t)
	flow := testFlow(srv, func(authURL string) error {
		redirect(t, authURL, func(v url.Values) { v.Set("error", "access_denied") })
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := flow.Run(ctx)
	assert.ErrorContains(t, err, "access_denied")
}

func TestFlowHonoursContext(t *testing.T) {
	srv := newFakeGoogle(t)
	flow := testFlow(srv, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := flow.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
