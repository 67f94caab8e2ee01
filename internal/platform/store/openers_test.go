package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPingRetry_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := pingRetry(context.Background(), "pg", 3, time.Second, func(ctx context.Context) error {
		calls++
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("ping ctx should carry a deadline")
		}
		if calls < 2 {
			return errors.New("refused")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("pingRetry = %v after %d calls", err, calls)
	}
}

func TestPingRetry_GivesUp(t *testing.T) {
	t.Parallel()

	calls := 0
	err := pingRetry(context.Background(), "clickhouse", 2, time.Second, func(context.Context) error {
		calls++
		return errors.New("refused")
	})
	if err == nil || calls != 2 {
		t.Fatalf("pingRetry = %v after %d calls", err, calls)
	}
	if !strings.Contains(err.Error(), "clickhouse ping failed after 2 attempts: refused") {
		t.Fatalf("message = %q", err)
	}
}

func TestPingRetry_ParentCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := pingRetry(ctx, "pg", 50, time.Second, func(context.Context) error { return errors.New("refused") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancel should short circuit the backoff")
	}
}
