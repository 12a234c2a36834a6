package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/homegrid-io/comps/internal/domain"
)

func fastOpts(attempts int) Opts {
	return Opts{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     2 * time.Millisecond,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastOpts(3), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("called %d times, want 1", calls)
	}
}

func TestDo_RetriesTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastOpts(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("upsert: %w", domain.ErrTransientIO)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("called %d times, want 3", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastOpts(3), func(context.Context) error {
		calls++
		return domain.ErrTransientIO
	})
	if !errors.Is(err, domain.ErrTransientIO) {
		t.Fatalf("want ErrTransientIO, got %v", err)
	}
	if calls != 3 {
		t.Errorf("called %d times, want 3", calls)
	}
}

func TestDo_NonTransientReturnsImmediately(t *testing.T) {
	permanent := errors.New("schema mismatch")
	calls := 0
	err := Do(context.Background(), fastOpts(3), func(context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("want permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("called %d times, want 1", calls)
	}
}

func TestDo_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Opts{MaxAttempts: 5, InitialWait: time.Hour, MaxWait: time.Hour},
		func(context.Context) error {
			calls++
			cancel()
			return domain.ErrTransientIO
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("called %d times, want 1", calls)
	}
}
