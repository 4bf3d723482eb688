package lock

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	ch   chan struct{}
	refs int
}

// Local is an in-process keyed mutex. Entries are dropped once no caller
// holds or waits for them.
type Local struct {
	wait    time.Duration
	mu      sync.Mutex
	entries map[string]*localEntry
}

func NewLocal(wait time.Duration) *Local {
	return &Local{
		wait:    wait,
		entries: map[string]*localEntry{},
	}
}

func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := l.ref(key)

	select {
	case e.ch <- struct{}{}:
	default:
		if err := l.await(ctx, e); err != nil {
			l.unref(key)
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.unref(key)
		})
	}, nil
}

func (l *Local) await(ctx context.Context, e *localEntry) error {
	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrUnavailable
	}
}

func (l *Local) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
