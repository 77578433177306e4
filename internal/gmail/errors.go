package gmail

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated reports that no usable Gmail credentials are available.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError wraps a failed call against the Gmail API.
type APIError struct {
	Op   string
	Code int // HTTP status, 0 when the call never produced a response
	Err  error
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("gmail %s: status %d: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("gmail %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets a 401 from the API match ErrNotAuthenticated.
func (e *APIError) Is(target error) bool {
	return target == ErrNotAuthenticated && e.Code == http.StatusUnauthorized
}
