package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
)

// OAuthConfig returns the web flow configuration for the Gmail modify scope.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{gmail.GmailModifyScope},
		Endpoint:     google.Endpoint,
	}
}

// TokenSessions derives a fresh Gmail client from the stored token on every call.
// Nothing is cached between calls.
type TokenSessions struct {
	OAuth   *oauth2.Config
	Store   TokenStore
	Account string
	Logger  *slog.Logger
	// Options are appended to the service options; tests point the endpoint at a fake server.
	Options []option.ClientOption
}

// Client returns a Gmail client bound to the stored token, or an error matching
// gmail.ErrNotAuthenticated when no token has been saved.
func (s *TokenSessions) Client(ctx context.Context) (gc.Client, error) {
	token, err := s.Store.LoadToken(s.Account)
	if err != nil {
		return nil, err
	}
	src := &savingTokenSource{
		src:     s.OAuth.TokenSource(ctx, token),
		current: token,
		save: func(t *oauth2.Token) error {
			return s.Store.SaveToken(s.Account, t)
		},
		logger: s.Logger,
	}
	opts := append([]option.ClientOption{option.WithTokenSource(src)}, s.Options...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return NewGoogleAPIClient(svc), nil
}

// Save stores a token obtained from the OAuth callback.
func (s *TokenSessions) Save(token *oauth2.Token) error {
	return s.Store.SaveToken(s.Account, token)
}

// Forget drops the stored token.
func (s *TokenSessions) Forget() error {
	return s.Store.DeleteToken(s.Account)
}

// savingTokenSource persists refreshed tokens so the next request starts from them.
type savingTokenSource struct {
	mu      sync.Mutex
	src     oauth2.TokenSource
	current *oauth2.Token
	save    func(*oauth2.Token) error
	logger  *slog.Logger
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.AccessToken != t.AccessToken {
		s.current = t
		if saveErr := s.save(t); saveErr != nil && s.logger != nil {
			s.logger.Warn("persist refreshed token", "error", saveErr)
		}
	}
	return t, nil
}
