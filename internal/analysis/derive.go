package analysis

import (
	"fmt"
	"time"

	"leadtime/domain/work"
)

// DayCounter counts net working days between two points in time
type DayCounter interface {
	Net(start, end time.Time) (int, error)
}

// Deriver attaches the two working-day duration metrics to work items.
// Both durations are anchored at dev_start: the production lead time is
// not chained onto the development one.
type Deriver struct {
	counter DayCounter
}

// NewDeriver creates a deriver over the given day counter
func NewDeriver(counter DayCounter) *Deriver {
	return &Deriver{counter: counter}
}

// Derive computes dev_done_workdays and prod_done_workdays for every
// item, in place. Items are validated first; any counter error aborts
// the whole batch with the offending item named.
func (d *Deriver) Derive(items []*work.Item) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}

		devDays, err := d.counter.Net(item.DevStart.Time(), item.DevDone.Time())
		if err != nil {
			return fmt.Errorf("item %s dev duration: %w", item.ID, err)
		}
		prodDays, err := d.counter.Net(item.DevStart.Time(), item.ProdDone.Time())
		if err != nil {
			return fmt.Errorf("item %s prod duration: %w", item.ID, err)
		}

		item.DevDoneWorkdays = devDays
		item.ProdDoneWorkdays = prodDays
	}
	return nil
}
