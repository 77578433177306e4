package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
)

const keyringService = "labelsweep"

// TokenStore persists the OAuth token of a single account.
// LoadToken returns an error matching gmail.ErrNotAuthenticated when nothing is stored.
type TokenStore interface {
	SaveToken(account string, token *oauth2.Token) error
	LoadToken(account string) (*oauth2.Token, error)
	DeleteToken(account string) error
}

// KeyringTokenStore keeps tokens in the OS keyring.
type KeyringTokenStore struct{}

func (KeyringTokenStore) SaveToken(account string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := keyring.Set(keyringService, account, string(data)); err != nil {
		return fmt.Errorf("save token to keyring: %w", err)
	}
	return nil
}

func (KeyringTokenStore) LoadToken(account string) (*oauth2.Token, error) {
	data, err := keyring.Get(keyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("no token for %s: %w", account, gc.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("load token from keyring: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	return &token, nil
}

func (KeyringTokenStore) DeleteToken(account string) error {
	err := keyring.Delete(keyringService, account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete token from keyring: %w", err)
	}
	return nil
}

// FileTokenStore keeps tokens as JSON files under Dir, one per account.
type FileTokenStore struct {
	Dir string
}

func (f FileTokenStore) path(account string) string {
	return filepath.Join(f.Dir, account+".token.json")
}

func (f FileTokenStore) SaveToken(account string, token *oauth2.Token) error {
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(f.path(account), data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (f FileTokenStore) LoadToken(account string) (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path(account)) // #nosec G304 - path built from configured dir
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no token for %s: %w", account, gc.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	return &token, nil
}

func (f FileTokenStore) DeleteToken(account string) error {
	err := os.Remove(f.path(account))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

var (
	_ TokenStore = KeyringTokenStore{}
	_ TokenStore = FileTokenStore{}
)
