package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
	"github.com/joshsymonds/labelsweep/internal/history"
	"github.com/joshsymonds/labelsweep/internal/sweep"
)

const notLoggedIn = "Not logged in. Go to /login first."

var errBadDays = errors.New("days must be a non-negative integer")

// classify maps an error to the status code and the message shown to the user.
func classify(err error) (int, string) {
	var (
		apiErr  *gc.APIError
		persist *history.PersistenceError
	)
	switch {
	case errors.Is(err, gc.ErrNotAuthenticated):
		return http.StatusUnauthorized, notLoggedIn
	case errors.Is(err, sweep.ErrUnknownLabel):
		return http.StatusBadRequest, "Invalid label"
	case errors.Is(err, sweep.ErrInvalidAge), errors.Is(err, errBadDays):
		return http.StatusBadRequest, errBadDays.Error()
	case errors.Is(err, errBadState):
		return http.StatusBadRequest, "Login expired or was tampered with. Start again at /login."
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, "Gmail request failed. Try again later."
	case errors.As(err, &persist):
		return http.StatusInternalServerError, "Could not update cleanup history."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code, msg := classify(err)
	s.log(c, code, err)
	c.String(code, msg)
}

func (s *Server) failJSON(c *gin.Context, err error) {
	code, msg := classify(err)
	s.log(c, code, err)
	c.JSON(code, gin.H{"error": msg})
}

func (s *Server) log(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		return
	}
	s.logger.InfoContext(c.Request.Context(), "request rejected", "path", c.Request.URL.Path, "error", err)
}
