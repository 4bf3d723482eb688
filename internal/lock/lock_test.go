package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"courtbook/pkg/model"
)

func TestCourtKey(t *testing.T) {
	got := CourtKey(model.CourtRef{GymnasiumID: 1, CourtNumber: 2})
	if got != "court:1:2" {
		t.Errorf("CourtKey() = %q, want court:1:2", got)
	}
}

func TestLocal_MutualExclusion(t *testing.T) {
	l := NewLocal(5 * time.Second)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "court:1:1")
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("expected at most one holder at a time, saw %d", maxInside)
	}
	if len(l.entries) != 0 {
		t.Errorf("expected entries to be cleaned up, got %d", len(l.entries))
	}
}

func TestLocal_TimesOut(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "court:1:1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer release()

	if _, err := l.Acquire(ctx, "court:1:1"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	other, err := l.Acquire(ctx, "court:1:2")
	if err != nil {
		t.Fatalf("other keys must not be blocked: %v", err)
	}
	other()
}

func TestLocal_ContextCancelled(t *testing.T) {
	l := NewLocal(time.Second)

	release, err := l.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Acquire(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLocal_ReleaseIsIdempotent(t *testing.T) {
	l := NewLocal(50 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()
	release()

	again, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("lock should be free after release: %v", err)
	}
	again()
}

func TestPoll(t *testing.T) {
	attempts := 0
	err := poll(context.Background(), time.Second, func() (bool, error) {
		attempts++
		return attempts == 3, nil
	})
	if err != nil || attempts != 3 {
		t.Errorf("poll() = %v after %d attempts", err, attempts)
	}

	err = poll(context.Background(), 10*time.Millisecond, func() (bool, error) { return false, nil })
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	boom := errors.New("boom")
	err = poll(context.Background(), time.Second, func() (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
