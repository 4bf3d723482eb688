// Package lock provides per-resource mutual exclusion around booking checks.
// Every backend waits up to a bounded time for the key and then gives up with
// ErrUnavailable.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtbook/pkg/model"
)

var ErrUnavailable = errors.New("resource lock unavailable")

// Release gives the lock back. It is safe to call more than once.
type Release func()

type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// CourtKey is the lock key for one court of one gymnasium.
func CourtKey(court model.CourtRef) string {
	return court.Key()
}

// GymnasiumKey serializes structural edits of a gymnasium document.
func GymnasiumKey(gymID int) string {
	return fmt.Sprintf("gymnasium:%d", gymID)
}

const pollInterval = 25 * time.Millisecond

// poll retries try until it succeeds, fails, the wait elapses or ctx ends.
func poll(ctx context.Context, wait time.Duration, try func() (bool, error)) error {
	deadline := time.Now().Add(wait)
	for {
		ok, err := try()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrUnavailable
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(pollInterval, time.Until(deadline))):
		}
	}
}
