package workdays

import (
	"time"

	"leadtime/domain/core"
)

// DefaultWeek is the Monday-Friday working week
var DefaultWeek = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// Counter counts net working days between two points in time, in the
// spirit of the NETWORKDAYS spreadsheet macro. Weekend days fall out of
// the working week; an exclusion calendar removes holidays and vacation
// on top of that.
type Counter struct {
	week     map[time.Weekday]bool
	excludes Calendar
}

// NewCounter creates a counter for the default Monday-Friday week
func NewCounter() *Counter {
	return NewCounterForWeek(DefaultWeek, nil)
}

// NewCounterForWeek creates a counter for a custom working week and an
// optional exclusion calendar.
func NewCounterForWeek(week []time.Weekday, excludes Calendar) *Counter {
	days := make(map[time.Weekday]bool, len(week))
	for _, d := range week {
		days[d] = true
	}
	return &Counter{week: days, excludes: excludes}
}

// Net returns the number of working days in (start, end], by calendar
// date. start == end yields 0; an end before start is an error.
func (c *Counter) Net(start, end time.Time) (int, error) {
	from := dateOf(start)
	to := dateOf(end)
	if to.Before(from) {
		return 0, core.NewInvalidRangeError(core.NewTimestamp(start), core.NewTimestamp(end))
	}

	days := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if !c.week[d.Weekday()] {
			continue
		}
		if c.excludes.Contains(d) {
			continue
		}
		days++
	}
	return days, nil
}

// dateOf truncates a timestamp to its calendar date in UTC
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
