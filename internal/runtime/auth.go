// Package runtime builds gmail.Client values from Google credentials.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mbrt/gmailctl/cmd/gmailctl/localcred"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
)

// NewGmailClient builds a client from the gmailctl credentials stored in cfgDir.
// localcred requests the modify scope, which covers listing and trashing.
func NewGmailClient(ctx context.Context, cfgDir string) (gc.Client, error) {
	svc, err := (localcred.Provider{}).Service(ctx, cfgDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no gmailctl credentials in %s (run gmailctl init): %w: %w", cfgDir, gc.ErrNotAuthenticated, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load gmailctl credentials from %s: %w", cfgDir, err)
	}
	return NewGoogleAPIClient(svc), nil
}

func DefaultLogger() *slog.Logger {
	return NewLogger("info")
}

// NewLogger returns a text logger on stderr at the named level.
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
