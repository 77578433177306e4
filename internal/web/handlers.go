package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/joshsymonds/labelsweep/internal/audit"
	gc "github.com/joshsymonds/labelsweep/internal/gmail"
	"github.com/joshsymonds/labelsweep/internal/history"
	"github.com/joshsymonds/labelsweep/internal/sweep"
)

func (s *Server) landing(c *gin.Context) {
	c.HTML(http.StatusOK, "landing.html", gin.H{
		"Title":  "labelsweep",
		"Labels": s.labels.Names(),
		"Days":   s.defaultDays,
	})
}

func (s *Server) login(c *gin.Context) {
	state, err := s.newState()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int(stateTTL.Seconds()), "/", "", false, true)
	url := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
	c.Redirect(http.StatusFound, url)
}

func (s *Server) callback(c *gin.Context) {
	state := c.Query("state")
	cookie, _ := c.Cookie(stateCookie)
	if state == "" || cookie != state {
		s.fail(c, fmt.Errorf("%w: state does not match cookie", errBadState))
		return
	}
	if err := s.verifyState(state); err != nil {
		s.fail(c, err)
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)
	if reason := c.Query("error"); reason != "" {
		c.String(http.StatusUnauthorized, "Authorization was denied: %s", reason)
		return
	}
	token, err := s.oauth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		s.fail(c, fmt.Errorf("exchange auth code: %w", err))
		return
	}
	if err := s.sessions.Save(token); err != nil {
		s.fail(c, fmt.Errorf("save token: %w", err))
		return
	}
	s.logger.InfoContext(c.Request.Context(), "signed in")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) logout(c *gin.Context) {
	if err := s.sessions.Forget(); err != nil {
		s.fail(c, fmt.Errorf("forget token: %w", err))
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) dashboard(c *gin.Context) {
	records, err := s.ledger.Load()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":   "Dashboard",
		"Summary": history.Summarize(records),
	})
}

func (s *Server) listEmails(c *gin.Context) {
	req, err := s.parse(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	client, err := s.sessions.Client(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	listing, err := s.sweeper.List(c.Request.Context(), client, req.label, req.days)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "listing.html", gin.H{
		"Title":   fmt.Sprintf("%s older than %d days", req.name, req.days),
		"Listing": listing,
	})
}

func (s *Server) dryRun(c *gin.Context) {
	req, err := s.parse(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	client, err := s.sessions.Client(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	preview, err := s.sweeper.Preview(c.Request.Context(), client, req.label, req.days)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "result.html", gin.H{
		"Title":   "Dry run: " + req.name,
		"Message": preview.Message(),
	})
}

func (s *Server) cleanup(c *gin.Context) {
	res, err := s.runCleanup(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "result.html", gin.H{
		"Title":   "Cleanup completed",
		"Message": res.Message,
		"Cleanup": true,
		"Scanned": res.Scanned,
		"Deleted": res.Deleted,
	})
}

// runCleanup trashes matching mail and records the run. Failed runs are not recorded.
func (s *Server) runCleanup(c *gin.Context) (sweep.Result, error) {
	req, err := s.parse(c)
	if err != nil {
		return sweep.Result{}, err
	}
	ctx := c.Request.Context()
	client, err := s.sessions.Client(ctx)
	if err != nil {
		return sweep.Result{}, err
	}
	res, err := s.sweeper.Execute(ctx, client, req.label, req.days)
	if err != nil {
		return sweep.Result{}, err
	}
	if err := s.ledger.Append(res.Record(s.Clock())); err != nil {
		return sweep.Result{}, err
	}
	return res, nil
}

func (s *Server) apiSummary(c *gin.Context) {
	records, err := s.ledger.Load()
	if err != nil {
		s.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, history.Summarize(records))
}

func (s *Server) apiHistory(c *gin.Context) {
	records, err := s.ledger.Load()
	if err != nil {
		s.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) apiList(c *gin.Context) {
	req, err := s.parse(c)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	client, err := s.sessions.Client(c.Request.Context())
	if err != nil {
		s.failJSON(c, err)
		return
	}
	listing, err := s.sweeper.List(c.Request.Context(), client, req.label, req.days)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	messages := make([]gin.H, 0, len(listing.Messages))
	for _, m := range listing.Messages {
		messages = append(messages, gin.H{
			"id":      m.ID,
			"subject": m.Headers["Subject"],
			"from":    m.Headers["From"],
			"date":    m.Headers["Date"],
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"label":    listing.Label,
		"days":     listing.Days,
		"message":  listing.Message(),
		"messages": messages,
	})
}

func (s *Server) apiDryRun(c *gin.Context) {
	req, err := s.parse(c)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	client, err := s.sessions.Client(c.Request.Context())
	if err != nil {
		s.failJSON(c, err)
		return
	}
	preview, err := s.sweeper.Preview(c.Request.Context(), client, req.label, req.days)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"label":        preview.Label,
		"days":         preview.Days,
		"would_affect": preview.WouldAffect,
		"message":      preview.Message(),
	})
}

func (s *Server) apiSenders(c *gin.Context) {
	req, err := s.parse(c)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	top, err := strconv.Atoi(c.DefaultQuery("top", "10"))
	if err != nil || top < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "top must be a non-negative integer"})
		return
	}
	client, err := s.sessions.Client(c.Request.Context())
	if err != nil {
		s.failJSON(c, err)
		return
	}
	listing, err := s.sweeper.List(c.Request.Context(), client, req.label, req.days)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, audit.Senders(listing.Messages, top))
}

func (s *Server) apiCleanup(c *gin.Context) {
	res, err := s.runCleanup(c)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  res.Outcome.String(),
		"label":   res.Label,
		"days":    res.Days,
		"scanned": res.Scanned,
		"deleted": res.Deleted,
		"message": res.Message,
	})
}

type labelRequest struct {
	name  string
	label gc.LabelID
	days  int
}

// parse reads the label path parameter and the age from the :days path
// parameter or the days query parameter, falling back to the default.
func (s *Server) parse(c *gin.Context) (labelRequest, error) {
	name := c.Param("label")
	label, err := s.labels.Resolve(name)
	if err != nil {
		return labelRequest{}, err
	}
	raw := c.Param("days")
	if raw == "" {
		raw = c.Query("days")
	}
	days := s.defaultDays
	if raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 0 {
			return labelRequest{}, fmt.Errorf("%w: %q", errBadDays, raw)
		}
	}
	return labelRequest{name: name, label: label, days: days}, nil
}
