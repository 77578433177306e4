package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/labelsweep/internal/config"
	gc "github.com/joshsymonds/labelsweep/internal/gmail"
	"github.com/joshsymonds/labelsweep/internal/history"
	"github.com/joshsymonds/labelsweep/internal/rate"
	"github.com/joshsymonds/labelsweep/internal/runtime"
	"github.com/joshsymonds/labelsweep/internal/sweep"
)

// version is set via ldflags at build time.
var version = "dev"

// ClientFunc returns the Gmail client used by one command invocation.
type ClientFunc func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (gc.Client, error)

// Deps are the collaborators a command tree runs against.
type Deps struct {
	Client ClientFunc
	Out    io.Writer
	Clock  func() time.Time
	Logger *slog.Logger
}

type globalFlags struct {
	configPath string
	ledgerPath string
	days       int
	daysSet    bool
	rps        int
	rpsSet     bool
	labelMap   string
	logLevel   string
	webLogin   bool
}

// env is resolved once per command from flags and config.
type env struct {
	cfg     *config.Config
	svc     *sweep.Service
	ledger  *history.Ledger
	labels  sweep.Labels
	days    int
	logger  *slog.Logger
	out     io.Writer
	clock   func() time.Time
	clients ClientFunc
}

// NewRootCmd builds the labelsweep command tree.
func NewRootCmd(deps Deps) *cobra.Command {
	if deps.Client == nil {
		deps.Client = DefaultClient
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "labelsweep",
		Short:         "Trash old Gmail messages by label",
		Long:          "List, preview and trash Gmail messages in a label that are older than a number of days, keeping a history of cleanups.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.DefaultPath(), "path to config.toml")
	pf.StringVar(&flags.ledgerPath, "ledger", "", "history ledger path (overrides config)")
	pf.IntVar(&flags.days, "days", 0, "only messages older than this many days (default from config)")
	pf.IntVar(&flags.rps, "rps", 0, "max Gmail requests per second, 0 for unlimited (default from config)")
	pf.StringVar(&flags.labelMap, "labels", "", "extra comma separated name=LABEL_ID aliases")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&flags.webLogin, "web-login", false, "use the token saved by labelsweep-web instead of gmailctl credentials")

	setup := func() (*env, error) {
		flags.daysSet = pf.Changed("days")
		flags.rpsSet = pf.Changed("rps")
		return newEnv(flags, deps)
	}
	root.AddCommand(
		newListCmd(setup),
		newDryRunCmd(setup),
		newCleanCmd(setup),
		newHistoryCmd(setup),
		newSendersCmd(setup),
		newLabelsCmd(setup),
	)
	return root
}

func newEnv(flags *globalFlags, deps Deps) (*env, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.ledgerPath != "" {
		cfg.Ledger.Path = flags.ledgerPath
	}
	if flags.rpsSet {
		if flags.rps < 0 {
			return nil, fmt.Errorf("--rps must not be negative, got %d", flags.rps)
		}
		cfg.Cleanup.RPS = flags.rps
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.webLogin {
		cfg.Auth.GmailctlDir = ""
	}
	logger := deps.Logger
	if logger == nil {
		logger = runtime.NewLogger(cfg.Log.Level)
	}

	extra, err := sweep.ParseLabelMap(flags.labelMap)
	if err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	days := cfg.Cleanup.DefaultDays
	if flags.daysSet {
		if flags.days < 0 {
			return nil, fmt.Errorf("--days %d: %w", flags.days, sweep.ErrInvalidAge)
		}
		days = flags.days
	}

	var limiter rate.Limiter
	if bucket := rate.NewTokenBucket(cfg.Cleanup.RPS); bucket != nil {
		limiter = bucket
	}
	svc := sweep.NewService(limiter, logger)
	svc.Clock = deps.Clock
	svc.PageSize = cfg.Cleanup.PageSize

	return &env{
		cfg:     cfg,
		svc:     svc,
		ledger:  history.NewLedger(cfg.Ledger.Path),
		labels:  sweep.DefaultLabels().With(cfg.Labels).With(extra),
		days:    days,
		logger:  logger,
		out:     deps.Out,
		clock:   deps.Clock,
		clients: deps.Client,
	}, nil
}

func (e *env) client(ctx context.Context) (gc.Client, error) {
	return e.clients(ctx, e.cfg, e.logger)
}

// DefaultClient uses gmailctl credentials, or the web login token when
// auth.gmailctl_dir is empty.
func DefaultClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (gc.Client, error) {
	if cfg.Auth.GmailctlDir != "" {
		return runtime.NewGmailClient(ctx, cfg.Auth.GmailctlDir)
	}
	sessions := &runtime.TokenSessions{
		OAuth:   runtime.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Server.RedirectURL),
		Store:   TokenStore(cfg),
		Account: cfg.Auth.Account,
		Logger:  logger,
	}
	return sessions.Client(ctx)
}

// TokenStore returns the store selected by auth.token_store.
func TokenStore(cfg *config.Config) runtime.TokenStore {
	if cfg.Auth.TokenStore == config.TokenStoreFile {
		return runtime.FileTokenStore{Dir: cfg.Auth.TokenDir}
	}
	return runtime.KeyringTokenStore{}
}
