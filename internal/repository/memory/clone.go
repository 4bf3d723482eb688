package memory

import (
	"slices"
	"time"

	"courtbook/pkg/model"
)

func cloneUser(u model.User) model.User {
	u.Password = ""
	if u.StudentDetails != nil {
		sd := *u.StudentDetails
		u.StudentDetails = &sd
	}
	if u.StaffDetails != nil {
		sd := *u.StaffDetails
		u.StaffDetails = &sd
	}
	if u.AdminDetails != nil {
		ad := *u.AdminDetails
		u.AdminDetails = &ad
	}
	return u
}

func cloneGymnasium(g model.Gymnasium) model.Gymnasium {
	g.Courts = slices.Clone(g.Courts)
	for i := range g.Courts {
		g.Courts[i].AllowedSports = slices.Clone(g.Courts[i].AllowedSports)
	}
	g.Equipment = slices.Clone(g.Equipment)
	return g
}

func cloneBooking(b model.Booking) model.Booking {
	b.Equipment = slices.Clone(b.Equipment)
	return b
}

func cloneEvent(e model.Event) model.Event {
	e.Start = cloneTime(e.Start)
	e.End = cloneTime(e.End)
	if e.Recurrence != nil {
		r := *e.Recurrence
		e.Recurrence = &r
	}
	e.BlockedCourts = slices.Clone(e.BlockedCourts)
	return e
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
