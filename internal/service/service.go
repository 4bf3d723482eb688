// Package service is the API consumers use. Every write validates its
// document, takes the locks it needs, runs in one transaction together with
// the snapshot cascades it triggers, and publishes its domain event after
// commit.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"courtbook/internal/conflict"
	"courtbook/internal/lock"
	"courtbook/internal/notify"
	"courtbook/internal/propagation"
	"courtbook/internal/repository"
	"courtbook/internal/validator"
	"courtbook/pkg/config"
	mongotx "courtbook/pkg/db/mongo"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/logger"
)

// Deps is everything a service needs. Publisher and Checker are optional.
type Deps struct {
	Repos     *repository.Repositories
	Validator *validator.Validator
	Locker    lock.Locker
	Publisher notify.Publisher
	Checker   *conflict.Checker
	Cfg       *config.Config
}

type base struct {
	Deps
	log *logger.Logger
}

func newBase(d Deps, component string) base {
	if d.Publisher == nil {
		d.Publisher = notify.Nop{}
	}
	if d.Checker == nil {
		d.Checker = conflict.NewChecker(d.Cfg.Location)
	}
	return base{Deps: d, log: d.Cfg.Log.Component(component)}
}

func (b *base) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.Cfg.WriteTimeout)
}

func (b *base) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.Cfg.ReadTimeout)
}

func now() time.Time {
	return time.Now().UTC()
}

// lockKeys takes every key in sorted order so that two writers needing
// overlapping key sets cannot deadlock. The returned release frees them all.
func (b *base) lockKeys(ctx context.Context, resource string, keys ...string) (lock.Release, error) {
	keys = slices.Compact(slices.Sorted(slices.Values(keys)))

	held := make([]lock.Release, 0, len(keys))
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}

	for _, key := range keys {
		release, err := b.Locker.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			switch {
			case errors.Is(err, lock.ErrUnavailable):
				b.log.Warn("Resource lock unavailable", "key", key)
				return nil, apperrors.LockUnavailable(resource)
			case isContextError(err):
				return nil, apperrors.Timeout(fmt.Sprintf("timed out waiting for %s lock", resource))
			default:
				b.log.Error("Failed to acquire resource lock", "key", key, "error", err)
				return nil, apperrors.Internal("Failed to acquire resource lock", err)
			}
		}
		held = append(held, release)
	}

	return releaseAll, nil
}

// inTx runs fn in one transaction and maps the outcome onto the error
// taxonomy.
func (b *base) inTx(ctx context.Context, op string, fn mongotx.TransactionFunc) error {
	return b.mapError(b.Repos.Tx.ExecuteTransaction(ctx, fn), op)
}

func (b *base) mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if isContextError(err) {
		return apperrors.Timeout(fmt.Sprintf("%s timed out", op))
	}

	b.log.Error("Storage operation failed", "operation", op, "error", err)
	return apperrors.Internal("Failed to "+op, err)
}

// fail logs a failed operation at a level matching whose fault it is and
// returns err unchanged.
func (b *base) fail(msg string, err error, attrs ...any) error {
	attrs = append(attrs, "error", err)
	switch {
	case apperrors.HasCode(err, apperrors.CodeInternal),
		apperrors.HasCode(err, apperrors.CodePropagationFailed),
		apperrors.HasCode(err, apperrors.CodeTimeout):
		b.log.Error(msg, attrs...)
	default:
		b.log.Warn(msg, attrs...)
	}
	return err
}

func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func lookupError(err error, resource string, key any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFoundWithKey(resource, key)
	}
	return err
}

func missingDocument() error {
	return apperrors.SchemaViolation(apperrors.Violation{Field: "document", Reason: "document is required"})
}

func missingPatch() error {
	return apperrors.InvalidInput("update cannot be empty")
}

type refCheck struct {
	collection string
	count      func(ctx context.Context) (int64, error)
}

// references counts the documents pointing at a key. Collections with no
// references are left out of the map; an empty map means the key is free.
func references(ctx context.Context, checks ...refCheck) (map[string]int64, error) {
	refs := map[string]int64{}
	for _, c := range checks {
		n, err := c.count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s references: %w", c.collection, err)
		}
		if n > 0 {
			refs[c.collection] += n
		}
	}
	return refs, nil
}

func (b *base) drain(ctx context.Context, q *propagation.Queue) (propagation.Result, error) {
	if q.Len() == 0 {
		return propagation.Result{}, nil
	}
	return q.Drain(ctx, b.Repos.SnapshotTargets())
}

// announce reports a committed cascade.
func (b *base) announce(ctx context.Context, source string, key any, res propagation.Result) {
	if len(res.Tasks) == 0 {
		return
	}

	b.log.Info("Snapshots propagated",
		"source", source,
		"key", key,
		"tasks", res.Tasks,
		"touched", res.Touched,
	)

	b.Publisher.Publish(ctx, notify.Event{
		Type: notify.SnapshotPropagated,
		Key:  fmt.Sprintf("%s:%v", source, key),
		Payload: notify.PropagationPayload{
			Source:  source,
			Key:     fmt.Sprint(key),
			Tasks:   res.Tasks,
			Touched: res.Touched,
		},
	})
}

// listWithCount fetches a page and the total in parallel.
func listWithCount[T any](
	ctx context.Context,
	b *base,
	resource string,
	find func(ctx context.Context) ([]T, error),
	count func(ctx context.Context) (int64, error),
) ([]T, int64, error) {
	var (
		items             []T
		total             int64
		errFind, errCount error
		wg                sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx, cancel := b.readCtx(ctx)
		defer cancel()
		items, errFind = find(ctx)
	}()
	go func() {
		defer wg.Done()
		ctx, cancel := b.readCtx(ctx)
		defer cancel()
		total, errCount = count(ctx)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, b.fail("Failed to list "+resource, b.mapError(errFind, "list "+resource))
	}
	if errCount != nil {
		return nil, 0, b.fail("Failed to count "+resource, b.mapError(errCount, "count "+resource))
	}

	b.log.Debug("Listed "+resource, "returned", len(items), "total", total)
	return items, total, nil
}
