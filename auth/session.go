package auth

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

// Session is the signed-in identity for one process. The zero value is signed out.
type Session struct {
	userID string
	email  string
	ts     oauth2.TokenSource
}

// Anonymous returns a signed-out session. Progress saves and Drive exports are skipped.
func Anonymous() *Session {
	return &Session{}
}

// Static returns a session for userID with no Google token, used when progress goes to a
// remote server that identifies the user by its own bearer token.
func Static(userID string) *Session {
	return &Session{userID: userID}
}

// NewSession wraps stored credentials. Refreshed tokens are written back through save,
// which may be nil.
func NewSession(ctx context.Context, cfg *oauth2.Config, c *Credentials, save func(*oauth2.Token) error) *Session {
	base := cfg.TokenSource(ctx, c.Token)
	return &Session{
		userID: c.UserID,
		email:  c.Email,
		ts:     &savingTokenSource{base: base, last: c.Token, save: save},
	}
}

func (s *Session) Authenticated() bool { return s != nil && s.userID != "" }

func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.userID
}

func (s *Session) Email() string {
	if s == nil {
		return ""
	}
	return s.email
}

// TokenSource returns the Google token source, or nil when there is none.
func (s *Session) TokenSource() oauth2.TokenSource {
	if s == nil {
		return nil
	}
	return s.ts
}

type savingTokenSource struct {
	base oauth2.TokenSource
	save func(*oauth2.Token) error

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.save != nil && (s.last == nil || tok.AccessToken != s.last.AccessToken) {
		if err := s.save(tok); err != nil {
			return nil, err
		}
	}
	s.last = tok
	return tok, nil
}
