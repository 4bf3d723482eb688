package model

import (
	"testing"
	"time"
)

func TestBookingStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingNoShow, true},
		{BookingConfirmed, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingNoShow, BookingCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTicketStatus_Next(t *testing.T) {
	next, ok := TicketOpen.Next()
	if !ok || next != TicketInProgress {
		t.Errorf("open should advance to in_progress, got %q %v", next, ok)
	}
	next, ok = TicketInProgress.Next()
	if !ok || next != TicketResolved {
		t.Errorf("in_progress should advance to resolved, got %q %v", next, ok)
	}
	if _, ok := TicketResolved.Next(); ok {
		t.Errorf("resolved is terminal")
	}
}

func TestUser_HasCapability(t *testing.T) {
	admin := &User{
		Role:         RoleAdmin,
		StaffDetails: &StaffDetails{StaffID: "SERV001", AdmissionDate: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)},
		AdminDetails: &AdminDetails{AccessLevel: 1, ResponsibilityArea: "Gestão Geral"},
	}

	if !admin.HasCapability(RoleStaff) || !admin.HasCapability(RoleAdmin) {
		t.Errorf("admin with staff details should hold staff and admin capabilities")
	}
	if admin.HasCapability(RoleStudent) {
		t.Errorf("admin has no student details")
	}
}

func TestGymnasium_FindCourtAndEquipment(t *testing.T) {
	g := &Gymnasium{
		ID:   1,
		Name: "Ginásio Principal A",
		Courts: []Court{
			{Number: 1, Status: CourtAvailable},
			{Number: 2, Status: CourtMaintenance},
		},
		Equipment: []Equipment{{ID: 101, TotalQuantity: 10, AvailableQuantity: 8}},
	}

	court, idx := g.FindCourt(2)
	if court == nil || idx != 1 || court.Status != CourtMaintenance {
		t.Fatalf("FindCourt(2) = %v, %d", court, idx)
	}
	court.Status = CourtAvailable
	if g.Courts[1].Status != CourtAvailable {
		t.Errorf("FindCourt should return a pointer into the slice")
	}
	if c, i := g.FindCourt(9); c != nil || i != -1 {
		t.Errorf("FindCourt(9) should miss")
	}
	if e, _ := g.FindEquipment(101); e == nil || e.AvailableQuantity != 8 {
		t.Errorf("FindEquipment(101) = %v", e)
	}

	snap := g.Snapshot(&g.Courts[0])
	if snap.GymnasiumName != "Ginásio Principal A" || snap.CourtStatus != CourtAvailable {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestEvent_Blocks(t *testing.T) {
	e := &Event{BlockedCourts: []CourtRef{{GymnasiumID: 1, CourtNumber: 1}, {GymnasiumID: 1, CourtNumber: 2}}}

	if !e.Blocks(CourtRef{GymnasiumID: 1, CourtNumber: 2}) {
		t.Errorf("event should block gym 1 court 2")
	}
	if e.Blocks(CourtRef{GymnasiumID: 2, CourtNumber: 1}) {
		t.Errorf("event should not block gym 2 court 1")
	}
}

func TestClockMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"13:30", 810, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"12:60", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ClockMinutes(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ClockMinutes(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ClockMinutes(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
