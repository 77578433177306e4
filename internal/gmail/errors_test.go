package gmail

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIErrorUnauthorizedMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("list messages: %w", &APIError{Op: "messages.list", Code: 401, Err: errors.New("invalid credentials")})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected 401 to match ErrNotAuthenticated")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError in chain")
	}
	if apiErr.Op != "messages.list" {
		t.Fatalf("unexpected op %q", apiErr.Op)
	}
}

func TestAPIErrorOtherStatus(t *testing.T) {
	err := &APIError{Op: "messages.trash", Code: 500, Err: errors.New("backend error")}
	if errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("500 must not match ErrNotAuthenticated")
	}
	want := "gmail messages.trash: status 500: backend error"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
	noCode := &APIError{Op: "threads.list", Err: errors.New("dial tcp: timeout")}
	if noCode.Error() != "gmail threads.list: dial tcp: timeout" {
		t.Fatalf("unexpected message %q", noCode.Error())
	}
}
