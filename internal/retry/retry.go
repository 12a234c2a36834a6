// Package retry provides bounded retry with exponential backoff for
// transient I/O failures.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/homegrid-io/comps/internal/domain"
)

// Opts configures retry behavior.
type Opts struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Jitter      bool
}

// Default provides sensible retry defaults.
var Default = Opts{
	MaxAttempts: 3,
	InitialWait: 200 * time.Millisecond,
	MaxWait:     5 * time.Second,
	Jitter:      true,
}

// Do retries f up to MaxAttempts times with exponential backoff. Only
// transient failures are retried; any other error returns immediately.
func Do(ctx context.Context, opts Opts, f func(context.Context) error) error {
	var err error
	wait := opts.InitialWait

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		err = f(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTransientIO) {
			return err
		}
		if attempt == opts.MaxAttempts-1 {
			break
		}

		sleep := wait
		if opts.Jitter {
			sleep = time.Duration(float64(wait) * (0.5 + rand.Float64()))
		}
		if sleep > opts.MaxWait {
			sleep = opts.MaxWait
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		wait *= 2
		if wait > opts.MaxWait {
			wait = opts.MaxWait
		}
	}
	return err
}
