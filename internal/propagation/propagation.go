// Package propagation keeps the denormalized snapshots embedded in bookings,
// events and tickets in step with their source documents. Writes enqueue
// tasks and drain the queue inside their own transaction, so a failed
// cascade rolls the source write back.
package propagation

import (
	"context"
	"fmt"

	"courtbook/internal/repository"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
)

type Kind string

const (
	UserRenamed        Kind = "user_renamed"
	GymnasiumRenamed   Kind = "gymnasium_renamed"
	CourtRenumbered    Kind = "court_renumbered"
	CourtStatusChanged Kind = "court_status_changed"
)

// Task is one cascade. Only the fields of its Kind are set.
type Task struct {
	Kind Kind

	UserID string
	User   model.UserSnapshot

	GymnasiumID   int
	GymnasiumName string

	FromNumber int
	ToNumber   int

	Court  model.CourtRef
	Status model.CourtStatus
}

func RenameUser(userID string, snap model.UserSnapshot) Task {
	return Task{Kind: UserRenamed, UserID: userID, User: snap}
}

func RenameGymnasium(gymID int, name string) Task {
	return Task{Kind: GymnasiumRenamed, GymnasiumID: gymID, GymnasiumName: name}
}

func RenumberCourt(gymID, from, to int) Task {
	return Task{Kind: CourtRenumbered, GymnasiumID: gymID, FromNumber: from, ToNumber: to}
}

func ChangeCourtStatus(court model.CourtRef, status model.CourtStatus) Task {
	return Task{Kind: CourtStatusChanged, Court: court, Status: status}
}

func (t Task) String() string {
	switch t.Kind {
	case UserRenamed:
		return fmt.Sprintf("%s(%s)", t.Kind, t.UserID)
	case GymnasiumRenamed:
		return fmt.Sprintf("%s(%d)", t.Kind, t.GymnasiumID)
	case CourtRenumbered:
		return fmt.Sprintf("%s(%d:%d->%d)", t.Kind, t.GymnasiumID, t.FromNumber, t.ToNumber)
	case CourtStatusChanged:
		return fmt.Sprintf("%s(%s=%s)", t.Kind, t.Court.Key(), t.Status)
	}
	return string(t.Kind)
}

func (t Task) apply(ctx context.Context, w repository.SnapshotWriter) (int64, error) {
	switch t.Kind {
	case UserRenamed:
		return w.RenameUser(ctx, t.UserID, t.User)
	case GymnasiumRenamed:
		return w.RenameGymnasium(ctx, t.GymnasiumID, t.GymnasiumName)
	case CourtRenumbered:
		return w.RenumberCourt(ctx, t.GymnasiumID, t.FromNumber, t.ToNumber)
	case CourtStatusChanged:
		return w.SetCourtStatus(ctx, t.Court, t.Status)
	}
	return 0, fmt.Errorf("unknown propagation task %q", t.Kind)
}

// Result summarizes a drain.
type Result struct {
	Tasks   []string
	Touched map[string]int64
}

// Total is the number of documents matched across all collections.
func (r Result) Total() int64 {
	var n int64
	for _, c := range r.Touched {
		n += c
	}
	return n
}

// Queue is a FIFO worklist. It is owned by a single write operation and is
// not safe for concurrent use.
type Queue struct {
	tasks []Task
}

func (q *Queue) Push(tasks ...Task) {
	q.tasks = append(q.tasks, tasks...)
}

func (q *Queue) Len() int {
	return len(q.tasks)
}

// Drain runs every queued task against every target in order and empties the
// queue. The first failure stops the drain with a PropagationFailed error;
// ctx must belong to the source write's transaction for the rollback to
// cover the source document.
func (q *Queue) Drain(ctx context.Context, targets []repository.SnapshotTarget) (Result, error) {
	res := Result{Touched: make(map[string]int64, len(targets))}

	for len(q.tasks) > 0 {
		task := q.tasks[0]
		q.tasks = q.tasks[1:]

		for _, target := range targets {
			n, err := task.apply(ctx, target.Writer)
			if err != nil {
				q.tasks = nil
				return res, apperrors.PropagationFailed(fmt.Errorf("%s on %s: %w", task, target.Collection, err))
			}
			res.Touched[target.Collection] += n
		}
		res.Tasks = append(res.Tasks, task.String())
	}

	return res, nil
}
