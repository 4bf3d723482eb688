package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtbook/internal/notify"
	"courtbook/internal/repository"
	"courtbook/internal/repository/memory"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/secret"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTickets struct {
	repository.TicketRepository
}

func (failingTickets) RenameUser(context.Context, string, model.UserSnapshot) (int64, error) {
	return 0, errors.New("connection reset by peer")
}

func TestUserService_Create(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	u, err := f.users.GetByKey(f.ctx, "111.222.333-44")
	require.NoError(t, err)
	assert.Equal(t, model.UserActive, u.Status)
	assert.Empty(t, u.Password)
	assert.True(t, secret.IsHash(u.PasswordHash))
	assert.True(t, secret.Matches(u.PasswordHash, "123"))

	tests := []struct {
		name string
		user func() *model.User
		code string
	}{
		{"nil document", func() *model.User { return nil }, apperrors.CodeSchemaViolation},
		{"same national id", func() *model.User {
			u := joseUser()
			u.Email = "other@teste.com"
			return u
		}, apperrors.CodeDuplicateKey},
		{"same email", func() *model.User {
			u := joseUser()
			u.NationalID = "55566677788"
			u.Email = " JOSE@teste.com "
			return u
		}, apperrors.CodeDuplicateKey},
		{"unknown supervisor", func() *model.User {
			u := anaUser()
			u.NationalID = "33344455566"
			u.Email = "outra@email.com"
			u.StudentDetails.SupervisorStaffID = "SERV999"
			return u
		}, apperrors.CodeSchemaViolation},
		{"staff id taken", func() *model.User {
			u := adminUser()
			u.NationalID = "44455566677"
			u.Email = "second.admin@sistema.com"
			return u
		}, apperrors.CodeDuplicateKey},
		{"plain text stored as hash", func() *model.User {
			u := joseUser()
			u.NationalID = "66677788899"
			u.Email = "plain@teste.com"
			u.Password = ""
			u.PasswordHash = "123"
			return u
		}, apperrors.CodeSchemaViolation},
		{"role without details", func() *model.User {
			u := joseUser()
			u.NationalID = "77788899900"
			u.Email = "staff@teste.com"
			u.Role = model.RoleStaff
			return u
		}, apperrors.CodeSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Create(f.ctx, tt.user())
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}

	_, total, err := f.users.List(f.ctx, model.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestUserService_RenamePropagates(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	b, err := f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(10, 0), tomorrowAt(11, 0)))
	require.NoError(t, err)
	tk, err := f.tickets.Create(f.ctx, &model.Ticket{ReporterID: joseID, GymnasiumID: 2, CourtNumber: 1, Description: "Rede rasgada"})
	require.NoError(t, err)

	name := "José Testador da Silva"
	u, err := f.users.Update(f.ctx, joseID, &model.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, u.Name)

	b, err = f.bookings.GetByKey(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, name, b.RequesterInfo.Name)
	assert.Equal(t, model.BookingConfirmed, b.Status)

	tk, err = f.tickets.GetByKey(f.ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, name, tk.ReporterInfo.Name)

	events := f.pub.OfType(notify.SnapshotPropagated)
	require.Len(t, events, 1)
	payload := events[0].Payload.(notify.PropagationPayload)
	assert.Equal(t, int64(1), payload.Touched[repository.BookingsCollection])
	assert.Equal(t, int64(1), payload.Touched[repository.TicketsCollection])
}

func TestUserService_OrganizerRenamePropagatesToEvents(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	start := tomorrowAt(14, 0)
	end := start.Add(4 * time.Hour)
	ev, err := f.events.Create(f.ctx, &model.Event{
		Name: "Campeonato Intercursos", OrganizerID: adminID, Type: model.EventOneOff,
		Start: &start, End: &end, BlockedCourts: []model.CourtRef{court(1, 1), court(1, 2)},
	})
	require.NoError(t, err)

	name := "Administração Geral"
	_, err = f.users.Update(f.ctx, adminID, &model.UserUpdate{Name: &name})
	require.NoError(t, err)

	ev, err = f.events.GetByKey(f.ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, name, ev.OrganizerInfo.Name)
}

func TestUserService_PropagationFailureRollsBack(t *testing.T) {
	repos := memory.NewRepositories()
	f := newFixtureWith(t, repos)
	f.seed(t)

	b, err := f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(10, 0), tomorrowAt(11, 0)))
	require.NoError(t, err)

	repos.Tickets = failingTickets{repos.Tickets}

	name := "Nome Novo"
	_, err = f.users.Update(f.ctx, joseID, &model.UserUpdate{Name: &name})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePropagationFailed))

	u, err := f.users.GetByKey(f.ctx, joseID)
	require.NoError(t, err)
	assert.Equal(t, "José Testador", u.Name, "source update must roll back")

	b, err = f.bookings.GetByKey(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "José Testador", b.RequesterInfo.Name, "partial cascade must roll back")
	assert.Empty(t, f.pub.OfType(notify.SnapshotPropagated))
}

func TestUserService_UpdateWithoutNameChangeDoesNotPropagate(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	email := "jose.novo@teste.com"
	u, err := f.users.Update(f.ctx, joseID, &model.UserUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, u.Email)
	assert.Empty(t, f.pub.OfType(notify.SnapshotPropagated))

	taken := "admin@sistema.com"
	_, err = f.users.Update(f.ctx, joseID, &model.UserUpdate{Email: &taken})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateKey))

	_, err = f.users.Update(f.ctx, "99988877766", &model.UserUpdate{Email: &email})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.users.Update(f.ctx, joseID, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestUserService_PasswordChange(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	password := "nova-senha"
	_, err := f.users.Update(f.ctx, joseID, &model.UserUpdate{Password: &password})
	require.NoError(t, err)

	u, err := f.users.GetByKey(f.ctx, joseID)
	require.NoError(t, err)
	assert.True(t, secret.Matches(u.PasswordHash, "nova-senha"))
	assert.False(t, secret.Matches(u.PasswordHash, "123"))
}

func TestUserService_SetStatus(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	u, err := f.users.SetStatus(f.ctx, joseID, model.UserInactive)
	require.NoError(t, err)
	assert.Equal(t, model.UserInactive, u.Status)

	_, err = f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(10, 0), tomorrowAt(11, 0)))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
	_, err = f.tickets.Create(f.ctx, &model.Ticket{ReporterID: joseID, GymnasiumID: 2, CourtNumber: 1, Description: "Rede rasgada"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = f.users.SetStatus(f.ctx, joseID, "suspended")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSchemaViolation))

	_, err = f.users.SetStatus(f.ctx, joseID, model.UserActive)
	require.NoError(t, err)
	_, err = f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(10, 0), tomorrowAt(11, 0)))
	assert.NoError(t, err)
}

func TestUserService_Delete(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	_, err := f.bookings.Create(f.ctx, bookingRequest(court(1, 1), tomorrowAt(10, 0), tomorrowAt(11, 0)))
	require.NoError(t, err)

	err = f.users.Delete(f.ctx, joseID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeReferentialConflict))
	refs := apperrors.AsAppError(err).Details["references"].(map[string]int64)
	assert.Equal(t, int64(1), refs[repository.BookingsCollection])

	// The admin supervises Ana through SERV001.
	err = f.users.Delete(f.ctx, adminID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeReferentialConflict))

	_, err = f.users.Update(f.ctx, adminID, &model.UserUpdate{RemoveStaffDetails: true})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeReferentialConflict))

	require.NoError(t, f.users.Delete(f.ctx, anaID))
	require.NoError(t, f.users.Delete(f.ctx, adminID))

	_, err = f.users.GetByKey(f.ctx, adminID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.True(t, apperrors.HasCode(f.users.Delete(f.ctx, adminID), apperrors.CodeNotFound))
}
