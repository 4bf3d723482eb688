package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtbook/internal/repository"
	"courtbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGym(t *testing.T, repos *repository.Repositories) {
	t.Helper()
	err := repos.Gymnasiums.Create(context.Background(), &model.Gymnasium{
		ID:   1,
		Name: "Ginásio Principal A",
		Courts: []model.Court{
			{Number: 1, Status: model.CourtAvailable, AllowedSports: []int{1, 3}},
		},
		Equipment: []model.Equipment{
			{ID: 101, Name: "Bola de Basquete", TotalQuantity: 10, AvailableQuantity: 8},
		},
	})
	require.NoError(t, err)
}

func TestExecuteTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	seedGym(t, repos)

	boom := errors.New("boom")
	err := repos.Tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repos.Sports.Create(ctx, &model.Sport{ID: 1, Name: "Basquete", MaxPlayers: 10}))
		require.NoError(t, repos.Gymnasiums.ReserveEquipment(ctx, 1, 101, 3))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repos.Sports.FindByID(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	gym, err := repos.Gymnasiums.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, gym.Equipment[0].AvailableQuantity)
}

func TestExecuteTransaction_PlainReadsWaitForCommit(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	seedGym(t, repos)

	seen := make(chan int, 1)
	readEarly := false
	boom := errors.New("boom")
	err := repos.Tx.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, repos.Gymnasiums.ReserveEquipment(txCtx, 1, 101, 8))

		go func() {
			gym, err := repos.Gymnasiums.FindByID(ctx, 1)
			if err != nil {
				seen <- -1
				return
			}
			seen <- gym.Equipment[0].AvailableQuantity
		}()

		select {
		case got := <-seen:
			readEarly = true
			t.Errorf("read outside the transaction returned %d before it finished", got)
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	if !readEarly {
		assert.Equal(t, 8, <-seen)
	}
}

func TestExecuteTransaction_CommitsAndNests(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	err := repos.Tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		if err := repos.Sports.Create(ctx, &model.Sport{ID: 1, Name: "Basquete", MaxPlayers: 10}); err != nil {
			return err
		}
		return repos.Tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
			return repos.Sports.Create(ctx, &model.Sport{ID: 2, Name: "Futsal", MaxPlayers: 10})
		})
	})
	require.NoError(t, err)

	count, err := repos.Sports.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestExecuteTransaction_CancelledContext(t *testing.T) {
	repos := NewRepositories()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := repos.Tx.ExecuteTransaction(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestEquipmentReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	seedGym(t, repos)

	require.NoError(t, repos.Gymnasiums.ReserveEquipment(ctx, 1, 101, 8))
	assert.ErrorIs(t, repos.Gymnasiums.ReserveEquipment(ctx, 1, 101, 1), repository.ErrInsufficientQuantity)
	assert.ErrorIs(t, repos.Gymnasiums.ReserveEquipment(ctx, 1, 999, 1), repository.ErrNotFound)
	assert.ErrorIs(t, repos.Gymnasiums.ReserveEquipment(ctx, 9, 101, 1), repository.ErrNotFound)

	require.NoError(t, repos.Gymnasiums.ReleaseEquipment(ctx, 1, 101, 50))
	gym, err := repos.Gymnasiums.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, gym.Equipment[0].AvailableQuantity, "release is capped at total quantity")
}

func TestUsers_DuplicateKeys(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	user := &model.User{NationalID: "11122233344", Email: "jose@teste.com", Password: "123", PasswordHash: "hash"}
	require.NoError(t, repos.Users.Create(ctx, user))

	assert.ErrorIs(t, repos.Users.Create(ctx, user), repository.ErrDuplicateKey)

	other := &model.User{NationalID: "22233344455", Email: "JOSE@teste.com"}
	err := repos.Users.Create(ctx, other)
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	stored, err := repos.Users.FindByID(ctx, user.NationalID)
	require.NoError(t, err)
	assert.Empty(t, stored.Password, "plain passwords are never stored")
}

func TestReturnedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	seedGym(t, repos)

	gym, err := repos.Gymnasiums.FindByID(ctx, 1)
	require.NoError(t, err)
	gym.Courts[0].AllowedSports[0] = 42
	gym.Equipment[0].AvailableQuantity = 0

	again, err := repos.Gymnasiums.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Courts[0].AllowedSports[0])
	assert.Equal(t, 8, again.Equipment[0].AvailableQuantity)
}

func TestBookings_FiltersAndSnapshots(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	bookings := []*model.Booking{
		{ID: "b1", RequesterID: "11122233344", GymnasiumID: 1, CourtNumber: 1, Start: base, End: base.Add(time.Hour), Status: model.BookingConfirmed},
		{ID: "b2", RequesterID: "11122233344", GymnasiumID: 1, CourtNumber: 1, Start: base.Add(time.Hour), End: base.Add(2 * time.Hour), Status: model.BookingConfirmed},
		{ID: "b3", RequesterID: "22233344455", GymnasiumID: 1, CourtNumber: 2, Start: base, End: base.Add(time.Hour), Status: model.BookingCancelled},
	}
	for _, b := range bookings {
		require.NoError(t, repos.Bookings.Create(ctx, b))
	}

	court := model.CourtRef{GymnasiumID: 1, CourtNumber: 1}
	overlapping, err := repos.Bookings.FindConfirmedOverlapping(ctx, court, base.Add(30*time.Minute), base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, overlapping, 1)
	assert.Equal(t, "b1", overlapping[0].ID)

	// Half-open: a window starting at b1's end only touches b2.
	overlapping, err = repos.Bookings.FindConfirmedOverlapping(ctx, court, base.Add(time.Hour), base.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, overlapping, 1)
	assert.Equal(t, "b2", overlapping[0].ID)

	mine, err := repos.Bookings.FindAll(ctx, model.BookingFilter{RequesterID: "11122233344", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "b2", mine[0].ID)

	n, err := repos.Bookings.RenameUser(ctx, "11122233344", model.UserSnapshot{Name: "José T."})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repos.Bookings.SetCourtStatus(ctx, model.CourtRef{GymnasiumID: 1, CourtNumber: 2}, model.CourtMaintenance)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "cancelled bookings keep their copy")

	n, err = repos.Bookings.RenumberCourt(ctx, 1, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	b1, err := repos.Bookings.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "José T.", b1.RequesterInfo.Name)
	assert.Equal(t, 7, b1.CourtNumber)
}

func TestEvents_RenumberBlockedCourt(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	event := &model.Event{
		ID:            "e1",
		BlockedCourts: []model.CourtRef{{GymnasiumID: 1, CourtNumber: 1}, {GymnasiumID: 1, CourtNumber: 2}},
	}
	require.NoError(t, repos.Events.Create(ctx, event))

	n, err := repos.Events.RenumberCourt(ctx, 1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := repos.Events.FindByID(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, stored.Blocks(model.CourtRef{GymnasiumID: 1, CourtNumber: 5}))
	assert.False(t, stored.Blocks(model.CourtRef{GymnasiumID: 1, CourtNumber: 2}))
	assert.Equal(t, 2, event.BlockedCourts[1].CourtNumber, "caller's document is not aliased")
}

func TestDropAll(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	seedGym(t, repos)

	require.NoError(t, repos.Dropper.DropAll(ctx))
	count, err := repos.Gymnasiums.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
