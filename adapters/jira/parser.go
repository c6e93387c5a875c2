package jira

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"leadtime/domain/core"
	"leadtime/domain/work"
)

// FeedTimeLayout matches the timestamps Jira writes into XML exports
const FeedTimeLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

// FieldMap names the feed elements that back each work-item field.
// Workflow dates live in custom fields, addressed by custom field name.
type FieldMap struct {
	Estimate string
	DevStart string
	DevDone  string
	ProdDone string
}

// DefaultFieldMap returns the custom field names of the standard
// workflow: started, ready for QA, shipped.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Estimate: "Estimate",
		DevStart: "Started Date",
		DevDone:  "Ready for QA Date",
		ProdDone: "Shipped Date",
	}
}

// Parser converts Jira XML exports into normalized work items
type Parser struct {
	fields FieldMap
	layout string
}

// NewParser creates a parser for the default field mapping
func NewParser() *Parser {
	return NewParserWithFields(DefaultFieldMap())
}

// NewParserWithFields creates a parser with a custom field mapping
func NewParserWithFields(fields FieldMap) *Parser {
	return &Parser{fields: fields, layout: FeedTimeLayout}
}

// XML schema for Jira exports: rss > channel > item
type feedDoc struct {
	XMLName xml.Name    `xml:"rss"`
	Channel feedChannel `xml:"channel"`
}

type feedChannel struct {
	Items []feedEntry `xml:"item"`
}

type feedEntry struct {
	Key          string        `xml:"key"`
	Assignee     string        `xml:"assignee"`
	CustomFields []customField `xml:"customfields>customfield"`
}

type customField struct {
	Name   string   `xml:"customfieldname"`
	Values []string `xml:"customfieldvalues>customfieldvalue"`
}

// Parse reads a full Jira XML export into work items, preserving feed
// order. Any malformed entry aborts the parse.
func (p *Parser) Parse(r io.Reader) ([]*work.Item, error) {
	var doc feedDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrFeedUnreadable, err)
	}

	items := make([]*work.Item, 0, len(doc.Channel.Items))
	for _, entry := range doc.Channel.Items {
		item, err := p.normalize(entry)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// normalize maps one feed entry onto the work-item schema
func (p *Parser) normalize(entry feedEntry) (*work.Item, error) {
	key := strings.TrimSpace(entry.Key)
	label := key
	if label == "" {
		label = "<unidentified>"
	}

	assignee := strings.TrimSpace(entry.Assignee)
	if assignee == "" {
		return nil, core.NewMissingFieldError(label, "assignee")
	}

	estimate := entry.customValue(p.fields.Estimate)
	if estimate == "" {
		return nil, core.NewMissingFieldError(label, "estimate")
	}

	devStart, err := p.customDate(entry, label, "dev_start", p.fields.DevStart)
	if err != nil {
		return nil, err
	}
	devDone, err := p.customDate(entry, label, "dev_done", p.fields.DevDone)
	if err != nil {
		return nil, err
	}
	prodDone, err := p.customDate(entry, label, "prod_done", p.fields.ProdDone)
	if err != nil {
		return nil, err
	}

	return &work.Item{
		ID:       key,
		Assignee: assignee,
		Estimate: estimate,
		DevStart: devStart,
		DevDone:  devDone,
		ProdDone: prodDone,
	}, nil
}

func (p *Parser) customDate(entry feedEntry, label, field, name string) (core.Timestamp, error) {
	raw := entry.customValue(name)
	if raw == "" {
		return core.Timestamp{}, core.NewMissingFieldError(label, field)
	}
	ts, err := parseFeedTime(raw, p.layout)
	if err != nil {
		return core.Timestamp{}, core.NewUnparsableDateError(label, field, raw, err)
	}
	return ts, nil
}

// customValue returns the first value of the named custom field
func (e feedEntry) customValue(name string) string {
	for _, cf := range e.CustomFields {
		if strings.TrimSpace(cf.Name) != name {
			continue
		}
		for _, v := range cf.Values {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
