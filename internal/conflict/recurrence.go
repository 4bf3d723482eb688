package conflict

import (
	"time"

	"courtbook/pkg/model"
)

// Window is one concrete occupied interval, half-open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Occurrences returns the windows of e that intersect [from, to), in order.
// A one-off event has at most one. A recurring event yields one window per
// matching weekday up to and including the Until calendar day.
func (c *Checker) Occurrences(e *model.Event, from, to time.Time) []Window {
	if !from.Before(to) {
		return nil
	}

	switch e.Type {
	case model.EventOneOff:
		if e.Start == nil || e.End == nil {
			return nil
		}
		if Overlaps(*e.Start, *e.End, from, to) {
			return []Window{{Start: *e.Start, End: *e.End}}
		}
		return nil
	case model.EventRecurring:
		return c.recurringWindows(e.Recurrence, from, to)
	}
	return nil
}

func (c *Checker) recurringWindows(r *model.Recurrence, from, to time.Time) []Window {
	if r == nil {
		return nil
	}
	startMin, err := model.ClockMinutes(r.StartTime)
	if err != nil {
		return nil
	}
	endMin, err := model.ClockMinutes(r.EndTime)
	if err != nil || endMin <= startMin {
		return nil
	}

	// Until is a calendar date; its UTC date is the last day included.
	uy, um, ud := r.Until.UTC().Date()
	lastDay := time.Date(uy, um, ud, 0, 0, 0, 0, time.UTC)

	fy, fm, fd := from.In(c.loc).Date()
	ty, tm, td := to.In(c.loc).Date()
	day := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	endDay := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	if endDay.After(lastDay) {
		endDay = lastDay
	}

	var windows []Window
	for ; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != r.Weekday {
			continue
		}
		y, m, d := day.Date()
		w := Window{
			Start: time.Date(y, m, d, startMin/60, startMin%60, 0, 0, c.loc),
			End:   time.Date(y, m, d, endMin/60, endMin%60, 0, 0, c.loc),
		}
		if Overlaps(w.Start, w.End, from, to) {
			windows = append(windows, w)
		}
	}
	return windows
}

// Span is the interval in which e can still occupy a court. A recurring
// event is considered from the start of the week containing now (Monday, in
// the checker's zone) through the end of its Until day.
func (c *Checker) Span(e *model.Event, now time.Time) (Window, bool) {
	switch e.Type {
	case model.EventOneOff:
		if e.Start == nil || e.End == nil || !e.Start.Before(*e.End) {
			return Window{}, false
		}
		return Window{Start: *e.Start, End: *e.End}, true
	case model.EventRecurring:
		if e.Recurrence == nil {
			return Window{}, false
		}
		local := now.In(c.loc)
		y, m, d := local.Date()
		sinceMonday := (int(local.Weekday()) + 6) % 7
		from := time.Date(y, m, d-sinceMonday, 0, 0, 0, 0, c.loc)

		uy, um, ud := e.Recurrence.Until.UTC().Date()
		to := time.Date(uy, um, ud+1, 0, 0, 0, 0, c.loc)
		if !from.Before(to) {
			return Window{}, false
		}
		return Window{Start: from, End: to}, true
	}
	return Window{}, false
}

// EventsOverlap reports whether any occurrence of a intersects any
// occurrence of b from the current week on. Blocked courts are not compared.
func (c *Checker) EventsOverlap(a, b *model.Event, now time.Time) bool {
	sa, ok := c.Span(a, now)
	if !ok {
		return false
	}
	sb, ok := c.Span(b, now)
	if !ok {
		return false
	}

	from, to := sa.Start, sa.End
	if sb.Start.After(from) {
		from = sb.Start
	}
	if sb.End.Before(to) {
		to = sb.End
	}
	for _, w := range c.Occurrences(a, from, to) {
		if len(c.Occurrences(b, w.Start, w.End)) > 0 {
			return true
		}
	}
	return false
}
