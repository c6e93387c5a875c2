package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"leadtime/domain/core"
	"leadtime/domain/work"
)

// Sample pairs a completion date with the observed workdays duration
type Sample struct {
	On       core.Timestamp `json:"on"`
	Workdays float64        `json:"workdays"`
}

// WeightedStats holds decay-weighted descriptive statistics for one
// duration metric as of a given day. Recent completions count more than
// old ones; the weight halves every configured halflife.
type WeightedStats struct {
	SampleSize int     `json:"sample_size"`
	Mean       float64 `json:"mean"`
	Stddev     float64 `json:"stddev"`
	Median     float64 `json:"median"`
	Stderr     float64 `json:"stderr"`
	ConfInt    float64 `json:"conf_int"`
}

// ForecastPoint is one day's decay-weighted view of a group's lead times
type ForecastPoint struct {
	AsOf     core.Timestamp `json:"as_of"`
	Estimate string         `json:"effort_est"`
	DevDone  *WeightedStats `json:"dev_done,omitempty"`
	ProdDone *WeightedStats `json:"prod_done,omitempty"`
}

// Forecaster computes daily decay-weighted lead-time series per group
type Forecaster struct {
	halflife core.Halflife
}

// DefaultHalflife is the evidence decay halflife in days
const DefaultHalflife = 45.0

// NewForecaster creates a forecaster with the given decay halflife
func NewForecaster(halflife core.Halflife) *Forecaster {
	if halflife <= 0 {
		halflife = core.NewHalflife(DefaultHalflife)
	}
	return &Forecaster{halflife: halflife}
}

// Series returns one forecast point per day from the earliest completion
// in the group up to (and excluding) until. Each point describes the
// dev and prod lead times using only evidence completed by that day,
// weighted by age. Groups with no completions yield an empty series.
func (f *Forecaster) Series(estimate string, items []*work.Item, until time.Time) []ForecastPoint {
	devSamples := samplesFor(items, func(i *work.Item) (core.Timestamp, float64) {
		return i.DevDone, float64(i.DevDoneWorkdays)
	})
	prodSamples := samplesFor(items, func(i *work.Item) (core.Timestamp, float64) {
		return i.ProdDone, float64(i.ProdDoneWorkdays)
	})
	if len(devSamples) == 0 && len(prodSamples) == 0 {
		return nil
	}

	since := earliest(devSamples, prodSamples)
	points := make([]ForecastPoint, 0)
	for day := since; day.Before(until); day = day.AddDate(0, 0, 1) {
		point := ForecastPoint{
			AsOf:     core.NewTimestamp(day),
			Estimate: estimate,
			DevDone:  f.weighted(devSamples, day),
			ProdDone: f.weighted(prodSamples, day),
		}
		if point.DevDone == nil && point.ProdDone == nil {
			continue
		}
		points = append(points, point)
	}
	return points
}

// weighted computes decay-weighted statistics over the samples completed
// by the given day, or nil when no evidence is available yet.
func (f *Forecaster) weighted(samples []Sample, day time.Time) *WeightedStats {
	evidence := make([]float64, 0, len(samples))
	weights := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.On.Time().After(day) {
			break
		}
		age := day.Sub(s.On.Time()).Hours() / 24
		evidence = append(evidence, s.Workdays)
		weights = append(weights, f.halflife.Weight(age))
	}
	if len(evidence) == 0 {
		return nil
	}

	mean := stat.Mean(evidence, weights)
	variance := stat.MomentAbout(2, evidence, mean, weights)
	stddev := math.Sqrt(variance)
	median, _ := stats.Median(evidence)
	stderr := stddev / math.Sqrt(float64(len(evidence)))

	return &WeightedStats{
		SampleSize: len(evidence),
		Mean:       mean,
		Stddev:     stddev,
		Median:     median,
		Stderr:     stderr,
		ConfInt:    stderr * normalConfInt,
	}
}

func samplesFor(items []*work.Item, metric func(*work.Item) (core.Timestamp, float64)) []Sample {
	samples := make([]Sample, 0, len(items))
	for _, item := range items {
		on, workdays := metric(item)
		if on.IsZero() {
			continue
		}
		samples = append(samples, Sample{On: on, Workdays: workdays})
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].On.Before(samples[j].On)
	})
	return samples
}

func earliest(groups ...[]Sample) time.Time {
	var low time.Time
	for _, samples := range groups {
		if len(samples) == 0 {
			continue
		}
		first := samples[0].On.Time()
		if low.IsZero() || first.Before(low) {
			low = first
		}
	}
	return low
}
