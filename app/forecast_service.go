package app

import (
	"context"
	"time"

	"leadtime/internal/analysis"
)

// ForecastDocument maps assignee -> estimate bucket -> daily series
type ForecastDocument map[string]map[string][]analysis.ForecastPoint

// ForecastService produces decay-weighted daily lead-time series per
// (assignee, estimate) group.
type ForecastService struct {
	pipeline   *PipelineService
	forecaster *analysis.Forecaster
}

// NewForecastService creates a forecast service
func NewForecastService(pipeline *PipelineService, forecaster *analysis.Forecaster) *ForecastService {
	return &ForecastService{
		pipeline:   pipeline,
		forecaster: forecaster,
	}
}

// Run ingests a feed and computes the forecast series for every group,
// from each group's earliest completion up to until.
func (s *ForecastService) Run(ctx context.Context, source string, until time.Time) (ForecastDocument, error) {
	items, err := s.pipeline.DeriveItems(ctx, source)
	if err != nil {
		return nil, err
	}

	doc := make(ForecastDocument)
	for assignee, buckets := range analysis.Group(items) {
		series := make(map[string][]analysis.ForecastPoint, len(buckets))
		for estimate, groupItems := range buckets {
			series[estimate] = s.forecaster.Series(estimate, groupItems, until)
		}
		doc[assignee] = series
	}
	return doc, nil
}
