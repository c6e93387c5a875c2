package testkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leadtime/domain/core"
	"leadtime/domain/work"
)

// feedTimeLayout mirrors the timestamp format of Jira XML exports
const feedTimeLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

// Item builds a raw work item fixture. Durations are left for the
// deriver to attach.
func Item(id, assignee, estimate string, devStart, devDone, prodDone time.Time) *work.Item {
	return &work.Item{
		ID:       id,
		Assignee: assignee,
		Estimate: estimate,
		DevStart: core.NewTimestamp(devStart),
		DevDone:  core.NewTimestamp(devDone),
		ProdDone: core.NewTimestamp(prodDone),
	}
}

// Day builds a timestamp at 09:00 UTC on the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
}

// FeedXML renders items as a Jira XML export the feed parser accepts
func FeedXML(items ...*work.Item) string {
	var b strings.Builder
	b.WriteString("<rss version=\"0.92\"><channel>\n")
	for _, item := range items {
		b.WriteString("<item>\n")
		fmt.Fprintf(&b, "  <key>%s</key>\n", item.ID)
		fmt.Fprintf(&b, "  <assignee>%s</assignee>\n", item.Assignee)
		b.WriteString("  <customfields>\n")
		writeCustomField(&b, "Estimate", item.Estimate)
		writeDateField(&b, "Started Date", item.DevStart)
		writeDateField(&b, "Ready for QA Date", item.DevDone)
		writeDateField(&b, "Shipped Date", item.ProdDone)
		b.WriteString("  </customfields>\n")
		b.WriteString("</item>\n")
	}
	b.WriteString("</channel></rss>\n")
	return b.String()
}

func writeCustomField(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "    <customfield><customfieldname>%s</customfieldname>"+
		"<customfieldvalues><customfieldvalue>%s</customfieldvalue></customfieldvalues></customfield>\n",
		name, value)
}

func writeDateField(b *strings.Builder, name string, ts core.Timestamp) {
	if ts.IsZero() {
		return
	}
	writeCustomField(b, name, ts.Time().Format(feedTimeLayout))
}

// WriteFeed writes a feed fixture to a temp file and returns its path
func WriteFeed(t *testing.T, items ...*work.Item) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(FeedXML(items...)), 0o644); err != nil {
		t.Fatalf("write feed fixture: %v", err)
	}
	return path
}
