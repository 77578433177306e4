// Package web serves the labelsweep dashboard and cleanup routes.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
	"github.com/joshsymonds/labelsweep/internal/history"
	"github.com/joshsymonds/labelsweep/internal/sweep"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sessions hands out a Gmail client for the signed-in user on every request.
type Sessions interface {
	Client(ctx context.Context) (gc.Client, error)
	Save(token *oauth2.Token) error
	Forget() error
}

// OAuthFlow is the part of *oauth2.Config the login routes use.
type OAuthFlow interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// Options configures a Server.
type Options struct {
	Sweeper           *sweep.Service
	Ledger            *history.Ledger
	Sessions          Sessions
	OAuth             OAuthFlow
	Labels            sweep.Labels
	DefaultDays       int
	Secret            []byte
	Logger            *slog.Logger
	RequestsPerMinute int // per client address, 0 disables the limiter
}

// Server wires the cleanup services to HTTP routes.
type Server struct {
	sweeper     *sweep.Service
	ledger      *history.Ledger
	sessions    Sessions
	oauth       OAuthFlow
	labels      sweep.Labels
	defaultDays int
	secret      []byte
	logger      *slog.Logger
	rpm         int

	// Clock dates history records and OAuth state.
	Clock func() time.Time
}

// New constructs a Server with sane defaults.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	labels := opts.Labels
	if labels == nil {
		labels = sweep.DefaultLabels()
	}
	return &Server{
		sweeper:     opts.Sweeper,
		ledger:      opts.Ledger,
		sessions:    opts.Sessions,
		oauth:       opts.OAuth,
		labels:      labels,
		defaultDays: opts.DefaultDays,
		secret:      opts.Secret,
		logger:      logger,
		rpm:         opts.RequestsPerMinute,
		Clock:       time.Now,
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	if s.rpm > 0 {
		r.Use(rateLimiter(s.rpm, time.Minute))
	}
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", s.landing)
	r.GET("/login", s.login)
	r.GET("/callback", s.callback)
	r.GET("/logout", s.logout)
	r.GET("/dashboard", s.dashboard)

	r.GET("/emails/:label", s.listEmails)
	r.GET("/emails/:label/older/:days", s.listEmails)
	r.GET("/dryrun/:label", s.dryRun)
	r.GET("/dry-run/:label", s.dryRun)
	r.GET("/cleanup/:label", s.cleanup)

	api := r.Group("/api")
	{
		api.GET("/summary", s.apiSummary)
		api.GET("/history", s.apiHistory)
		api.GET("/emails/:label", s.apiList)
		api.GET("/dryrun/:label", s.apiDryRun)
		api.GET("/senders/:label", s.apiSenders)
		api.POST("/cleanup/:label", s.apiCleanup)
	}
	return r
}
