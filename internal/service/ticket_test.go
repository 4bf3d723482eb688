package service

import (
	"testing"

	"courtbook/internal/notify"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicket(gym, number int) *model.Ticket {
	return &model.Ticket{
		ReporterID:  joseID,
		GymnasiumID: gym,
		CourtNumber: number,
		Description: "A rede de vôlei está rasgada.",
	}
}

func TestTicketService_Create(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	tk, err := f.tickets.Create(f.ctx, newTicket(2, 1))
	require.NoError(t, err)
	assert.Equal(t, model.TicketOpen, tk.Status)
	assert.Equal(t, "José Testador", tk.ReporterInfo.Name)
	assert.Equal(t, "Ginásio Anexo B", tk.LocationInfo.GymnasiumName)

	tests := []struct {
		name   string
		ticket func() *model.Ticket
		code   string
	}{
		{"nil document", func() *model.Ticket { return nil }, apperrors.CodeSchemaViolation},
		{"starts resolved", func() *model.Ticket {
			t := newTicket(2, 1)
			t.Status = model.TicketResolved
			return t
		}, apperrors.CodeInvalidInput},
		{"unknown court", func() *model.Ticket { return newTicket(2, 9) }, apperrors.CodeNotFound},
		{"unknown gymnasium", func() *model.Ticket { return newTicket(9, 1) }, apperrors.CodeNotFound},
		{"unknown reporter", func() *model.Ticket {
			t := newTicket(2, 1)
			t.ReporterID = "99988877766"
			return t
		}, apperrors.CodeNotFound},
		{"short description", func() *model.Ticket {
			t := newTicket(2, 1)
			t.Description = "x"
			return t
		}, apperrors.CodeSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tickets.Create(f.ctx, tt.ticket())
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestTicketService_Advance(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	tk, err := f.tickets.Create(f.ctx, newTicket(2, 1))
	require.NoError(t, err)

	_, err = f.tickets.Advance(f.ctx, tk.ID, model.TicketResolved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition), "open cannot skip to resolved")

	tk, err = f.tickets.Advance(f.ctx, tk.ID, model.TicketInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.TicketInProgress, tk.Status)

	tk, err = f.tickets.Advance(f.ctx, tk.ID, model.TicketResolved)
	require.NoError(t, err)
	assert.Equal(t, model.TicketResolved, tk.Status)

	_, err = f.tickets.Advance(f.ctx, tk.ID, model.TicketOpen)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition), "resolved is terminal")

	events := f.pub.OfType(notify.TicketAdvanced)
	require.Len(t, events, 2)
	payload := events[1].Payload.(notify.TicketPayload)
	assert.Equal(t, tk.ID, payload.TicketID)
}

func TestTicketService_UpdateListDelete(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	first, err := f.tickets.Create(f.ctx, newTicket(2, 1))
	require.NoError(t, err)
	_, err = f.tickets.Create(f.ctx, newTicket(1, 2))
	require.NoError(t, err)

	desc := "Rede substituída parcialmente, falta o poste."
	tk, err := f.tickets.Update(f.ctx, first.ID, &model.TicketUpdate{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, tk.Description)
	assert.Equal(t, model.TicketOpen, tk.Status)

	_, err = f.tickets.Advance(f.ctx, first.ID, model.TicketInProgress)
	require.NoError(t, err)

	open, total, err := f.tickets.List(f.ctx, model.TicketFilter{Status: model.TicketOpen})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, open, 1)
	assert.Equal(t, 1, open[0].GymnasiumID)

	require.NoError(t, f.tickets.Delete(f.ctx, first.ID))
	_, err = f.tickets.GetByKey(f.ctx, first.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
