// Package history implements the per-run metrics recorder: a time-indexed
// capture of every attraction and activity series plus the global counters,
// with percentile aggregation computed once at the end of a run.
package history

import (
	"sort"
	"sync"

	"github.com/parksim/daysim/pkg/models"
	"github.com/parksim/daysim/pkg/utils"
)

// Recorder accumulates one simulated day's metrics. One Recorder is created
// per run; every tick calls RecordAttraction/RecordActivity/RecordGlobal
// once per subject, then Summary computes aggregations over the whole day.
type Recorder struct {
	mu sync.RWMutex

	// series maps metric name -> label (attraction/activity name, or ""
	// for global series) -> ordered points.
	series map[string]map[string][]models.MetricPoint

	startMinute int
	endMinute   int
}

// NewRecorder creates an empty recorder for a run starting at startMinute.
func NewRecorder(startMinute int) *Recorder {
	return &Recorder{
		series:      make(map[string]map[string][]models.MetricPoint),
		startMinute: startMinute,
		endMinute:   startMinute,
	}
}

// RecordAttraction records one minute's worth of an attraction's five
// posted series.
func (r *Recorder) RecordAttraction(minute int, name string, queueLength, waitTime, expQueueLength, expWaitTime, expReturnTime int) {
	r.record(minute, "queue_length", name, float64(queueLength))
	r.record(minute, "queue_wait_time", name, float64(waitTime))
	r.record(minute, "exp_queue_length", name, float64(expQueueLength))
	r.record(minute, "exp_queue_wait_time", name, float64(expWaitTime))
	r.record(minute, "exp_return_time", name, float64(expReturnTime))
}

// RecordActivity records one minute's dwelling population for an activity.
func (r *Recorder) RecordActivity(minute int, name string, population int) {
	r.record(minute, "population", name, float64(population))
}

// RecordGlobal records one minute's park-wide totals.
func (r *Recorder) RecordGlobal(minute, totalActive, totalLeft, distributedPasses, redeemedPasses int) {
	r.record(minute, "total_active_agents", "", float64(totalActive))
	r.record(minute, "total_left_agents", "", float64(totalLeft))
	r.record(minute, "distributed_passes", "", float64(distributedPasses))
	r.record(minute, "redeemed_passes", "", float64(redeemedPasses))
}

func (r *Recorder) record(minute int, metric, label string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.series[metric] == nil {
		r.series[metric] = make(map[string][]models.MetricPoint)
	}
	r.series[metric][label] = append(r.series[metric][label], models.MetricPoint{
		Minute: minute,
		Name:   metric,
		Value:  value,
		Labels: labelsFor(label),
	})
	if minute > r.endMinute {
		r.endMinute = minute
	}
}

func labelsFor(label string) map[string]string {
	if label == "" {
		return nil
	}
	return map[string]string{"name": label}
}

// Series returns a copy of one metric's recorded points for a given label
// (empty label selects the unlabeled global series).
func (r *Recorder) Series(metric, label string) []models.MetricPoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	points := r.series[metric][label]
	out := make([]models.MetricPoint, len(points))
	copy(out, points)
	return out
}

// Snapshot returns the full time-indexed dump of every recorded series,
// keyed as "metric" for unlabeled series or "metric:label" for labeled ones.
func (r *Recorder) Snapshot() map[string][]models.MetricPoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]models.MetricPoint)
	for metric, byLabel := range r.series {
		for label, points := range byLabel {
			key := metric
			if label != "" {
				key = metric + ":" + label
			}
			cp := make([]models.MetricPoint, len(points))
			copy(cp, points)
			out[key] = cp
		}
	}
	return out
}

// Summary computes P50/P95/P99/mean aggregation for every recorded series,
// using the values-only view (ignoring minute order), once at the end of a
// run.
func (r *Recorder) Summary() *models.MetricsSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := &models.MetricsSummary{
		StartMinute:  r.startMinute,
		EndMinute:    r.endMinute,
		Metrics:      make(map[string][]float64),
		Aggregations: make(map[string]*models.Aggregation),
	}

	for metric, byLabel := range r.series {
		labels := make([]string, 0, len(byLabel))
		for label := range byLabel {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			key := metric
			if label != "" {
				key = metric + ":" + label
			}
			values := make([]float64, len(byLabel[label]))
			for i, p := range byLabel[label] {
				values[i] = p.Value
			}
			summary.Metrics[key] = values
			summary.Aggregations[key] = aggregate(values)
		}
	}

	return summary
}

func aggregate(values []float64) *models.Aggregation {
	if len(values) == 0 {
		return &models.Aggregation{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
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
