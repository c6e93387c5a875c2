package work

import (
	"strings"

	"leadtime/domain/core"
)

// Item represents one processed unit of tracked work. Raw fields come
// from the feed normalizer; the two workday durations are attached once
// by the duration deriver and are read-only afterwards.
type Item struct {
	ID       string `json:"id,omitempty"`
	Assignee string `json:"assignee"`
	Estimate string `json:"estimate"`

	DevStart core.Timestamp `json:"dev_start"`
	DevDone  core.Timestamp `json:"dev_done"`
	ProdDone core.Timestamp `json:"prod_done"`

	// Derived working-day durations, both anchored at DevStart.
	DevDoneWorkdays  int `json:"dev_done_workdays"`
	ProdDoneWorkdays int `json:"prod_done_workdays"`
}

// GroupKey returns the grouping dimensions for the item: the assignee
// exactly as given, and the estimate bucket normalized to lowercase.
func (i *Item) GroupKey() (assignee, estimate string) {
	return i.Assignee, strings.ToLower(i.Estimate)
}

// Validate checks that every field the pipeline depends on is present
func (i *Item) Validate() error {
	switch {
	case i.Assignee == "":
		return core.NewMissingFieldError(i.label(), "assignee")
	case i.Estimate == "":
		return core.NewMissingFieldError(i.label(), "estimate")
	case i.DevStart.IsZero():
		return core.NewMissingFieldError(i.label(), "dev_start")
	case i.DevDone.IsZero():
		return core.NewMissingFieldError(i.label(), "dev_done")
	case i.ProdDone.IsZero():
		return core.NewMissingFieldError(i.label(), "prod_done")
	}
	return nil
}

func (i *Item) label() string {
	if i.ID != "" {
		return i.ID
	}
	return "<unidentified>"
}
