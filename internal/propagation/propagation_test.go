package propagation

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtbook/internal/repository"
	"courtbook/internal/repository/memory"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct {
	repository.SnapshotWriter
	calls int
}

func (f *failingWriter) RenameUser(ctx context.Context, userID string, snap model.UserSnapshot) (int64, error) {
	f.calls++
	return 0, errors.New("connection reset")
}

type countingWriter struct {
	calls []Kind
}

func (c *countingWriter) RenameUser(context.Context, string, model.UserSnapshot) (int64, error) {
	c.calls = append(c.calls, UserRenamed)
	return 1, nil
}

func (c *countingWriter) RenameGymnasium(context.Context, int, string) (int64, error) {
	c.calls = append(c.calls, GymnasiumRenamed)
	return 2, nil
}

func (c *countingWriter) RenumberCourt(context.Context, int, int, int) (int64, error) {
	c.calls = append(c.calls, CourtRenumbered)
	return 3, nil
}

func (c *countingWriter) SetCourtStatus(context.Context, model.CourtRef, model.CourtStatus) (int64, error) {
	c.calls = append(c.calls, CourtStatusChanged)
	return 4, nil
}

func TestDrain_RunsTasksInOrder(t *testing.T) {
	w := &countingWriter{}
	q := &Queue{}
	q.Push(
		RenumberCourt(1, 1, 5),
		ChangeCourtStatus(model.CourtRef{GymnasiumID: 1, CourtNumber: 5}, model.CourtMaintenance),
		RenameGymnasium(1, "Ginásio Central"),
		RenameUser("11122233344", model.UserSnapshot{Name: "José"}),
	)

	res, err := q.Drain(context.Background(), []repository.SnapshotTarget{{Collection: "bookings", Writer: w}})
	require.NoError(t, err)

	assert.Equal(t, []Kind{CourtRenumbered, CourtStatusChanged, GymnasiumRenamed, UserRenamed}, w.calls)
	assert.Equal(t, int64(10), res.Touched["bookings"])
	assert.Equal(t, int64(10), res.Total())
	assert.Len(t, res.Tasks, 4)
	assert.Zero(t, q.Len())
}

func TestDrain_FailureStopsAndReportsPropagationFailed(t *testing.T) {
	bad := &failingWriter{}
	after := &countingWriter{}
	q := &Queue{}
	q.Push(RenameUser("11122233344", model.UserSnapshot{Name: "José"}), RenameGymnasium(1, "x"))

	_, err := q.Drain(context.Background(), []repository.SnapshotTarget{
		{Collection: "bookings", Writer: bad},
		{Collection: "events", Writer: after},
	})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePropagationFailed))
	assert.Equal(t, 1, bad.calls)
	assert.Empty(t, after.calls)
	assert.Zero(t, q.Len(), "a failed drain must not leave work behind")
}

func TestDrain_RewritesSnapshotsInMemoryBackend(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()
	start := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Bookings.Create(ctx, &model.Booking{
		ID:            "b1",
		RequesterID:   "11122233344",
		RequesterInfo: model.UserSnapshot{Name: "José Testador"},
		GymnasiumID:   1,
		CourtNumber:   1,
		LocationInfo:  model.VenueSnapshot{GymnasiumName: "Ginásio Principal A", CourtStatus: model.CourtAvailable},
		Start:         start,
		End:           start.Add(time.Hour),
		Status:        model.BookingConfirmed,
	}))
	require.NoError(t, repos.Tickets.Create(ctx, &model.Ticket{
		ID:           "t1",
		ReporterID:   "11122233344",
		ReporterInfo: model.UserSnapshot{Name: "José Testador"},
		GymnasiumID:  1,
		CourtNumber:  1,
		Status:       model.TicketOpen,
	}))

	q := &Queue{}
	q.Push(RenameUser("11122233344", model.UserSnapshot{Name: "José T. Silva"}))
	res, err := q.Drain(ctx, repos.SnapshotTargets())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Touched[repository.BookingsCollection])
	assert.Equal(t, int64(1), res.Touched[repository.TicketsCollection])

	b, err := repos.Bookings.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "José T. Silva", b.RequesterInfo.Name)
	assert.Equal(t, model.BookingConfirmed, b.Status)

	tk, err := repos.Tickets.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "José T. Silva", tk.ReporterInfo.Name)
}
