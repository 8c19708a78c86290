package tuning

import (
	"fmt"

	"github.com/parksim/daysim/pkg/models"
)

// Objective scores one trial's end-of-day metrics into a single raw value.
// Whether that value should be minimized or maximized is a property of the
// tuning run (config.TuningSpec.Minimize), not of the objective itself.
type Objective interface {
	Name() string
	Evaluate(metrics *models.DayMetrics) (float64, error)
}

// NewObjective resolves a TuningSpec's objective name to a concrete
// Objective implementation.
func NewObjective(name string) (Objective, error) {
	switch name {
	case "p95_wait_time":
		return p95WaitTime{}, nil
	case "p99_wait_time":
		return p99WaitTime{}, nil
	case "mean_wait_time":
		return meanWaitTime{}, nil
	case "total_completed_rides":
		return totalCompletedRides{}, nil
	case "skip_rate":
		return skipRate{}, nil
	default:
		return nil, fmt.Errorf("unknown tuning objective %q", name)
	}
}

type p95WaitTime struct{}

func (p95WaitTime) Name() string { return "p95_wait_time" }

func (p95WaitTime) Evaluate(m *models.DayMetrics) (float64, error) {
	return m.WaitTimeP95, nil
}

type p99WaitTime struct{}

func (p99WaitTime) Name() string { return "p99_wait_time" }

func (p99WaitTime) Evaluate(m *models.DayMetrics) (float64, error) {
	return m.WaitTimeP99, nil
}

type meanWaitTime struct{}

func (meanWaitTime) Name() string { return "mean_wait_time" }

func (meanWaitTime) Evaluate(m *models.DayMetrics) (float64, error) {
	return m.WaitTimeMean, nil
}

// totalCompletedRides sums every attraction's served-agent count. Spec's
// "maximize total completed rides" use case sets minimize:false so the
// tuner negates this value internally rather than the objective doing it.
type totalCompletedRides struct{}

func (totalCompletedRides) Name() string { return "total_completed_rides" }

func (totalCompletedRides) Evaluate(m *models.DayMetrics) (float64, error) {
	var total int64
	for _, a := range m.AttractionMetrics {
		total += a.AgentsServed
	}
	return float64(total), nil
}

// skipRate is the fraction of distributed expedited passes never redeemed.
type skipRate struct{}

func (skipRate) Name() string { return "skip_rate" }

func (skipRate) Evaluate(m *models.DayMetrics) (float64, error) {
	if m.DistributedPasses == 0 {
		return 0, nil
	}
	return float64(m.SkippedPasses) / float64(m.DistributedPasses), nil
}
