package ui

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"leadtime/domain/work"
)

// BuildMarkdownReport renders an evidence document as a markdown table
// per assignee: one row per estimate bucket with the lead-time stats in
// working days.
func BuildMarkdownReport(doc work.Document) string {
	var b strings.Builder
	b.WriteString("# Lead Time Report\n\n")

	if len(doc) == 0 {
		b.WriteString("No evidence found.\n")
		return b.String()
	}

	for _, assignee := range doc.Assignees() {
		fmt.Fprintf(&b, "## %s\n\n", assignee)
		b.WriteString("| Estimate | Samples | Dev Mean | Dev Median | Dev ±95% | Prod Mean | Prod Median | Prod ±95% |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, estimate := range doc.Estimates(assignee) {
			s := doc[assignee][estimate]
			fmt.Fprintf(&b, "| %s | %d | %.1f | %.1f | %.2f | %.1f | %.1f | %.2f |\n",
				estimate, s.SampleSize(),
				s.DevDoneMean, s.DevDoneMedian, s.DevDoneConfInt,
				s.ProdDoneMean, s.ProdDoneMedian, s.ProdDoneConfInt)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML converts a markdown report to HTML
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
