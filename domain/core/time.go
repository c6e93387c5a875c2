package core

import (
	"fmt"
	"math"
	"time"
)

// TimeLayout is the canonical textual form for every date field that
// leaves the pipeline. All timestamps serialize in this fixed format.
const TimeLayout = "2006-01-02 15:04:05"

// Timestamp represents a point in time with a canonical serialized form
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// ParseTimestamp parses the canonical textual form
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Timestamp(t), nil
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// Before returns true if t is before u
func (t Timestamp) Before(u Timestamp) bool {
	return time.Time(t).Before(time.Time(u))
}

// After returns true if t is after u
func (t Timestamp) After(u Timestamp) bool {
	return time.Time(t).After(time.Time(u))
}

// String returns the canonical textual form
func (t Timestamp) String() string {
	return time.Time(t).Format(TimeLayout)
}

// MarshalJSON serializes the timestamp in the canonical format
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON parses the canonical format back into a timestamp
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp literal %s", s)
	}
	parsed, err := ParseTimestamp(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Halflife is an evidence decay halflife in days
type Halflife float64

// NewHalflife creates a halflife from a day count
func NewHalflife(days float64) Halflife { return Halflife(days) }

func (h Halflife) Days() float64  { return float64(h) }
func (h Halflife) String() string { return fmt.Sprintf("%gd", float64(h)) }

// Weight returns the exponential decay weight for evidence aged by the
// given number of days: exactly 0.5 at one halflife.
func (h Halflife) Weight(ageDays float64) float64 {
	if h <= 0 {
		return 1
	}
	return math.Pow(0.5, ageDays/float64(h))
}
