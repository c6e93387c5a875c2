package analysis

import (
	"leadtime/domain/work"
)

// Group partitions derived items by (assignee, lowercased estimate).
// Assignees are matched case-sensitively; estimate buckets are folded
// to lowercase. Within a group, items keep feed order.
func Group(items []*work.Item) work.Grouped {
	grouped := make(work.Grouped)
	for _, item := range items {
		grouped.Add(item)
	}
	return grouped
}
