package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all labelsweep configuration.
type Config struct {
	Server  ServerConfig      `toml:"server"`
	Google  GoogleConfig      `toml:"google"`
	Ledger  LedgerConfig      `toml:"ledger"`
	Cleanup CleanupConfig     `toml:"cleanup"`
	Auth    AuthConfig        `toml:"auth"`
	Log     LogConfig         `toml:"log"`
	Labels  map[string]string `toml:"labels"` // extra name = "LABEL_ID" aliases
}

type ServerConfig struct {
	Addr        string `toml:"addr"`
	SecretKey   string `toml:"secret_key"` // signs the OAuth state parameter
	RedirectURL string `toml:"redirect_url"`
}

// GoogleConfig holds the OAuth client credentials of the web flow.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type LedgerConfig struct {
	Path string `toml:"path"`
}

type CleanupConfig struct {
	DefaultDays int `toml:"default_days"`
	PageSize    int `toml:"page_size"`
	RPS         int `toml:"rps"` // 0 disables rate limiting
}

type AuthConfig struct {
	TokenStore  string `toml:"token_store"` // "keyring" or "file"
	TokenDir    string `toml:"token_dir"`
	Account     string `toml:"account"`
	GmailctlDir string `toml:"gmailctl_dir"` // CLI credentials
}

type LogConfig struct {
	Level string `toml:"level"`
}

const (
	TokenStoreKeyring = "keyring"
	TokenStoreFile    = "file"
)

func defaults() Config {
	dataDir := DataDir()
	home, _ := os.UserHomeDir()
	return Config{
		Server: ServerConfig{
			Addr:        "127.0.0.1:5001",
			SecretKey:   "dev-secret",
			RedirectURL: "http://127.0.0.1:5001/callback",
		},
		Ledger: LedgerConfig{Path: filepath.Join(dataDir, "history.json")},
		Cleanup: CleanupConfig{
			DefaultDays: 30,
			PageSize:    100,
		},
		Auth: AuthConfig{
			TokenStore:  TokenStoreKeyring,
			TokenDir:    filepath.Join(dataDir, "tokens"),
			Account:     "default",
			GmailctlDir: filepath.Join(home, ".gmailctl"),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads config from path, then applies environment overrides (including a
// .env file in the working directory). An empty or missing path yields defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - user supplied config path
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.Server.RedirectURL, "GOOGLE_REDIRECT_URI")
	setString(&cfg.Server.SecretKey, "LABELSWEEP_SECRET_KEY")
	setString(&cfg.Server.Addr, "LABELSWEEP_ADDR")
	setString(&cfg.Ledger.Path, "LABELSWEEP_LEDGER")
	setString(&cfg.Auth.TokenStore, "LABELSWEEP_TOKEN_STORE")
	setString(&cfg.Log.Level, "LABELSWEEP_LOG_LEVEL")
	if v := os.Getenv("LABELSWEEP_DEFAULT_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse LABELSWEEP_DEFAULT_DAYS: %w", err)
		}
		cfg.Cleanup.DefaultDays = days
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.Cleanup.DefaultDays < 0 {
		return fmt.Errorf("cleanup.default_days must not be negative, got %d", c.Cleanup.DefaultDays)
	}
	if c.Cleanup.RPS < 0 {
		return fmt.Errorf("cleanup.rps must not be negative, got %d", c.Cleanup.RPS)
	}
	switch c.Auth.TokenStore {
	case TokenStoreKeyring, TokenStoreFile:
	default:
		return fmt.Errorf("auth.token_store must be %q or %q, got %q", TokenStoreKeyring, TokenStoreFile, c.Auth.TokenStore)
	}
	if c.Ledger.Path == "" {
		return errors.New("ledger.path must be set")
	}
	return nil
}

// HasGoogleCredentials reports whether the web OAuth client is configured.
func (c *Config) HasGoogleCredentials() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

// ConfigDir returns the labelsweep config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "labelsweep")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "labelsweep")
}

// DataDir returns the labelsweep data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "labelsweep")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "labelsweep")
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}
