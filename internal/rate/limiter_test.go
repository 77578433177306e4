package rate

import (
	"context"
	"testing"
)

func TestNewTokenBucketDisabled(t *testing.T) {
	if tb := NewTokenBucket(0); tb != nil {
		t.Fatalf("expected nil bucket for rps=0")
	}
	var tb *TokenBucket
	if err := tb.Wait(context.Background()); err != nil {
		t.Fatalf("nil bucket should not block: %v", err)
	}
}

func TestTokenBucketFirstCallImmediate(t *testing.T) {
	tb := NewTokenBucket(2)
	if err := tb.Wait(context.Background()); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
}

func TestTokenBucketCanceled(t *testing.T) {
	tb := NewTokenBucket(1)
	ctx, cancel := context.WithCancel(context.Background())
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	cancel()
	if err := tb.Wait(ctx); err == nil {
		t.Fatalf("expected error after cancel")
	}
}
