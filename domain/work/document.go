package work

import "sort"

// Grouped holds the partitioned evidence before aggregation:
// assignee -> estimate bucket -> items in feed order.
type Grouped map[string]map[string][]*Item

// Add appends an item to its group, creating the group on first use.
// Items are never dropped, deduplicated, or reordered within a group.
func (g Grouped) Add(item *Item) {
	assignee, estimate := item.GroupKey()
	buckets, ok := g[assignee]
	if !ok {
		buckets = make(map[string][]*Item)
		g[assignee] = buckets
	}
	buckets[estimate] = append(buckets[estimate], item)
}

// Len returns the total number of items across all groups
func (g Grouped) Len() int {
	n := 0
	for _, buckets := range g {
		for _, items := range buckets {
			n += len(items)
		}
	}
	return n
}

// Summary is the terminal representation of one evidence group: the raw
// evidence retained as-is, plus descriptive statistics over each of the
// two duration metrics. Standard deviation is the population form and
// the confidence interval is the 1.96-sigma half-width, regardless of
// sample size.
type Summary struct {
	Evidence []*Item `json:"evidence"`

	DevDoneMean    float64 `json:"dev_done_workdays_mean"`
	DevDoneStddev  float64 `json:"dev_done_workdays_stddev"`
	DevDoneMedian  float64 `json:"dev_done_workdays_median"`
	DevDoneStderr  float64 `json:"dev_done_workdays_stderr"`
	DevDoneConfInt float64 `json:"dev_done_workdays_conf_int"`

	ProdDoneMean    float64 `json:"prod_done_workdays_mean"`
	ProdDoneStddev  float64 `json:"prod_done_workdays_stddev"`
	ProdDoneMedian  float64 `json:"prod_done_workdays_median"`
	ProdDoneStderr  float64 `json:"prod_done_workdays_stderr"`
	ProdDoneConfInt float64 `json:"prod_done_workdays_conf_int"`
}

// SampleSize returns the number of evidence items behind the summary
func (s *Summary) SampleSize() int {
	return len(s.Evidence)
}

// Document is the top-level evidence document:
// assignee -> estimate bucket -> aggregate summary.
type Document map[string]map[string]*Summary

// Assignees returns the document's top-level keys in sorted order
func (d Document) Assignees() []string {
	keys := make([]string, 0, len(d))
	for assignee := range d {
		keys = append(keys, assignee)
	}
	sort.Strings(keys)
	return keys
}

// Estimates returns the estimate buckets for an assignee in sorted order
func (d Document) Estimates(assignee string) []string {
	buckets := d[assignee]
	keys := make([]string, 0, len(buckets))
	for estimate := range buckets {
		keys = append(keys, estimate)
	}
	sort.Strings(keys)
	return keys
}

// GroupCount returns the number of (assignee, estimate) groups
func (d Document) GroupCount() int {
	n := 0
	for _, buckets := range d {
		n += len(buckets)
	}
	return n
}
