// Package report assembles the end-of-day DTOs the reporting collaborator
// consumes from a finished Park run: the aggregated DayMetrics summary and
// the Run envelope around it. The HistoryRecorder's time-indexed series are
// not copied into either; they stay available through Park.History().
package report

import (
	"sort"
	"strings"

	"github.com/parksim/daysim/internal/park"
	"github.com/parksim/daysim/pkg/models"
	"github.com/parksim/daysim/pkg/utils"
)

// BuildDayMetrics aggregates a finished Park run into the end-of-day summary
// DTO: global wait-time percentiles plus one AttractionMetrics entry per
// attraction, computed once from the run's HistoryRecorder.Summary() and the
// attraction registry's own pass/cycle counters.
func BuildDayMetrics(p *park.Park) *models.DayMetrics {
	arrived, left, distributed, redeemed := p.Totals()
	summary := p.History().Summary()

	metrics := &models.DayMetrics{
		TotalArrived:      arrived,
		TotalLeft:         left,
		DistributedPasses: distributed,
		RedeemedPasses:    redeemed,
		AttractionMetrics: make(map[string]*models.AttractionMetrics, len(p.Attractions())),
	}

	var skipped int
	for _, a := range p.Attractions() {
		dist, redm, skip := a.Counters()
		cycles, served := a.Cycles()
		skipped += skip

		entry := &models.AttractionMetrics{
			Name:              a.Name,
			TimesCycled:       cycles,
			AgentsServed:      int64(served),
			PassesDistributed: dist,
			PassesRedeemed:    redm,
			PassesSkipped:     skip,
		}
		if agg, ok := summary.Aggregations["queue_length:"+a.Name]; ok {
			entry.QueueLenP50 = agg.P50
			entry.QueueLenP95 = agg.P95
		}
		if agg, ok := summary.Aggregations["queue_wait_time:"+a.Name]; ok {
			entry.WaitTimeP50 = agg.P50
			entry.WaitTimeP95 = agg.P95
			entry.WaitTimeMean = utils.Round(agg.Mean, 2)
		}
		metrics.AttractionMetrics[a.Name] = entry
	}
	metrics.SkippedPasses = skipped

	if agg := globalWaitAggregation(summary); agg != nil {
		metrics.WaitTimeP50 = agg.P50
		metrics.WaitTimeP95 = agg.P95
		metrics.WaitTimeP99 = agg.P99
		metrics.WaitTimeMean = utils.Round(agg.Mean, 2)
	}

	return metrics
}

// BuildRun wraps a finished Park run's metrics in the Run envelope, the
// record a caller would persist or stream onward: identity, random seed,
// the minute range from opening (0) to park close, and completion status.
func BuildRun(p *park.Park, runID string, randomSeed int64) *models.Run {
	return &models.Run{
		ID:           runID,
		Status:       models.RunStatusCompleted,
		RandomSeed:   randomSeed,
		StartedAtMin: 0,
		EndedAtMin:   p.ParkClose(),
		Metrics:      BuildDayMetrics(p),
	}
}

// globalWaitAggregation pools every attraction's queue_wait_time samples
// into one combined aggregation, giving a single park-wide wait-time figure
// alongside the per-attraction breakdown.
func globalWaitAggregation(summary *models.MetricsSummary) *models.Aggregation {
	var pooled []float64
	for key, values := range summary.Metrics {
		if strings.HasPrefix(key, "queue_wait_time:") {
			pooled = append(pooled, values...)
		}
	}
	if len(pooled) == 0 {
		return nil
	}
	sorted := make([]float64, len(pooled))
	copy(sorted, pooled)
	sort.Float64s(sorted)

	return &models.Aggregation{
		Count: int64(len(sorted)),
		Sum:   utils.Sum(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  utils.Mean(sorted),
		P50:   utils.P50(sorted),
		P95:   utils.P95(sorted),
		P99:   utils.P99(sorted),
	}
}
