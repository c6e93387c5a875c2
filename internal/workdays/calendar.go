package workdays

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Calendar is a set of dates excluded from the working week, e.g. a
// holiday schedule or an engineer's vacation.
type Calendar map[string]struct{}

// NewCalendar creates a calendar from explicit dates
func NewCalendar(dates ...time.Time) Calendar {
	c := make(Calendar, len(dates))
	for _, d := range dates {
		c.Add(d)
	}
	return c
}

// Add marks a date as excluded
func (c Calendar) Add(d time.Time) {
	c[d.Format(dateLayout)] = struct{}{}
}

// Contains reports whether a date is excluded. A nil calendar excludes
// nothing.
func (c Calendar) Contains(d time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c[d.Format(dateLayout)]
	return ok
}

// LoadCalendar reads a calendar file: one YYYY-MM-DD date per line,
// blank lines and #-comments ignored.
func LoadCalendar(path string) (Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open calendar %s: %w", path, err)
	}
	defer f.Close()

	cal := make(Calendar)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		d, err := time.Parse(dateLayout, text)
		if err != nil {
			return nil, fmt.Errorf("calendar %s line %d: %w", path, line, err)
		}
		cal.Add(d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read calendar %s: %w", path, err)
	}
	return cal, nil
}
