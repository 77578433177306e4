package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshsymonds/labelsweep/internal/cli"
	"github.com/joshsymonds/labelsweep/internal/config"
	"github.com/joshsymonds/labelsweep/internal/history"
	"github.com/joshsymonds/labelsweep/internal/rate"
	"github.com/joshsymonds/labelsweep/internal/runtime"
	"github.com/joshsymonds/labelsweep/internal/sweep"
	"github.com/joshsymonds/labelsweep/internal/web"
)

const shutdownGrace = 10 * time.Second

type webConfig struct {
	configPath        string
	addr              string
	ledger            string
	requestsPerMinute int
}

func main() {
	cfg := parseWebFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("labelsweep-web failed", "error", err)
		os.Exit(1)
	}
}

func parseWebFlags() webConfig {
	configPath := flag.String("config", config.DefaultPath(), "path to config.toml")
	addr := flag.String("addr", "", "listen address (overrides config)")
	ledger := flag.String("ledger", "", "history ledger path (overrides config)")
	rpm := flag.Int("requests-per-minute", 120, "per-client request limit, 0 disables")
	flag.Parse()

	return webConfig{
		configPath:        *configPath,
		addr:              *addr,
		ledger:            *ledger,
		requestsPerMinute: *rpm,
	}
}

func run(wc webConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(wc.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if wc.addr != "" {
		cfg.Server.Addr = wc.addr
	}
	if wc.ledger != "" {
		cfg.Ledger.Path = wc.ledger
	}
	if !cfg.HasGoogleCredentials() {
		return errors.New("google OAuth credentials not configured; set [google] in the config file or GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET")
	}
	logger := runtime.NewLogger(cfg.Log.Level)
	gin.SetMode(gin.ReleaseMode)

	oauth := runtime.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Server.RedirectURL)
	sessions := &runtime.TokenSessions{
		OAuth:   oauth,
		Store:   cli.TokenStore(cfg),
		Account: cfg.Auth.Account,
		Logger:  logger,
	}

	var limiter rate.Limiter
	if bucket := rate.NewTokenBucket(cfg.Cleanup.RPS); bucket != nil {
		limiter = bucket
	}
	svc := sweep.NewService(limiter, logger)
	svc.PageSize = cfg.Cleanup.PageSize

	server := web.New(web.Options{
		Sweeper:           svc,
		Ledger:            history.NewLedger(cfg.Ledger.Path),
		Sessions:          sessions,
		OAuth:             oauth,
		Labels:            sweep.DefaultLabels().With(cfg.Labels),
		DefaultDays:       cfg.Cleanup.DefaultDays,
		Secret:            []byte(cfg.Server.SecretKey),
		Logger:            logger,
		RequestsPerMinute: wc.requestsPerMinute,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "ledger", cfg.Ledger.Path)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
