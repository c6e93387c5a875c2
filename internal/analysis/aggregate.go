package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"leadtime/domain/core"
	"leadtime/domain/work"
)

// normalConfInt is the 95% half-width multiplier on the standard error.
// Applied uniformly regardless of sample size.
const normalConfInt = 1.96

// Aggregate folds the grouped evidence into a fresh document of
// per-group summaries. The input grouping is left untouched; building a
// separate output structure avoids mutating a map while iterating it.
func Aggregate(grouped work.Grouped) (work.Document, error) {
	doc := make(work.Document, len(grouped))
	for assignee, buckets := range grouped {
		summaries := make(map[string]*work.Summary, len(buckets))
		for estimate, items := range buckets {
			summary, err := Summarize(items)
			if err != nil {
				return nil, fmt.Errorf("group (%s, %s): %w", assignee, estimate, err)
			}
			summaries[estimate] = summary
		}
		doc[assignee] = summaries
	}
	return doc, nil
}

// Summarize computes the aggregate summary for one evidence group. The
// evidence slice is retained in the summary, not copied.
func Summarize(items []*work.Item) (*work.Summary, error) {
	if len(items) == 0 {
		return nil, core.ErrEmptyGroup
	}

	devDays := make([]float64, len(items))
	prodDays := make([]float64, len(items))
	for i, item := range items {
		devDays[i] = float64(item.DevDoneWorkdays)
		prodDays[i] = float64(item.ProdDoneWorkdays)
	}

	dev, err := describe(devDays)
	if err != nil {
		return nil, err
	}
	prod, err := describe(prodDays)
	if err != nil {
		return nil, err
	}

	return &work.Summary{
		Evidence: items,

		DevDoneMean:    dev.mean,
		DevDoneStddev:  dev.stddev,
		DevDoneMedian:  dev.median,
		DevDoneStderr:  dev.stderr,
		DevDoneConfInt: dev.confInt,

		ProdDoneMean:    prod.mean,
		ProdDoneStddev:  prod.stddev,
		ProdDoneMedian:  prod.median,
		ProdDoneStderr:  prod.stderr,
		ProdDoneConfInt: prod.confInt,
	}, nil
}

type metricStats struct {
	mean    float64
	stddev  float64
	median  float64
	stderr  float64
	confInt float64
}

// describe computes the five descriptive statistics over one metric.
// Standard deviation is the population form (divide by n), so a
// single-value sequence yields 0 for stddev, stderr and conf_int.
func describe(vals []float64) (metricStats, error) {
	mean, err := stats.Mean(vals)
	if err != nil {
		return metricStats{}, err
	}
	stddev, err := stats.StandardDeviationPopulation(vals)
	if err != nil {
		return metricStats{}, err
	}
	median, err := stats.Median(vals)
	if err != nil {
		return metricStats{}, err
	}

	stderr := stddev / math.Sqrt(float64(len(vals)))
	return metricStats{
		mean:    mean,
		stddev:  stddev,
		median:  median,
		stderr:  stderr,
		confInt: stderr * normalConfInt,
	}, nil
}
