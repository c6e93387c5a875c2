package app

import (
	"context"
	"time"

	"leadtime/adapters/jira"
	"leadtime/domain/work"
	"leadtime/internal/analysis"
)

// PipelineService runs the feed-to-document aggregation pipeline:
// normalize, derive, group, aggregate. The whole batch either completes
// and yields one document or fails with no partial result.
type PipelineService struct {
	parser  *jira.Parser
	deriver *analysis.Deriver
}

// PipelineResult contains the complete output of one pipeline run
type PipelineResult struct {
	Document   work.Document `json:"document"`
	ItemCount  int           `json:"item_count"`
	GroupCount int           `json:"group_count"`
	RuntimeMs  int64         `json:"runtime_ms"`
}

// NewPipelineService creates a pipeline service over a feed parser and
// a day counter.
func NewPipelineService(parser *jira.Parser, counter analysis.DayCounter) *PipelineService {
	return &PipelineService{
		parser:  parser,
		deriver: analysis.NewDeriver(counter),
	}
}

// Run executes the pipeline against one feed source
func (s *PipelineService) Run(ctx context.Context, source string) (*PipelineResult, error) {
	startTime := time.Now()

	items, err := s.DeriveItems(ctx, source)
	if err != nil {
		return nil, err
	}

	grouped := analysis.Group(items)
	doc, err := analysis.Aggregate(grouped)
	if err != nil {
		return nil, err
	}

	return &PipelineResult{
		Document:   doc,
		ItemCount:  len(items),
		GroupCount: doc.GroupCount(),
		RuntimeMs:  time.Since(startTime).Milliseconds(),
	}, nil
}

// DeriveItems ingests a feed and attaches the workday durations,
// stopping short of grouping. Used by the forecast service, which
// groups differently.
func (s *PipelineService) DeriveItems(ctx context.Context, source string) ([]*work.Item, error) {
	items, err := s.parser.ParseSource(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := s.deriver.Derive(items); err != nil {
		return nil, err
	}
	return items, nil
}
