// Package activity implements dwell locations: untimed areas an agent can
// browse at for a randomly sampled duration, with no queue or capacity
// limit.
package activity

import (
	"sync"

	"github.com/parksim/daysim/pkg/config"
	"github.com/parksim/daysim/pkg/utils"
)

// Activity is one dwell location: every agent that enters is assigned a
// remaining dwell time sampled independently at entry.
type Activity struct {
	Name       string
	ParkArea   string
	Popularity int
	MeanTime   int

	mu       sync.RWMutex
	dwelling map[int]int // agent id -> remaining dwell minutes
}

// New builds an Activity from its static scenario configuration.
func New(cfg config.Activity) *Activity {
	return &Activity{
		Name:       cfg.Name,
		ParkArea:   cfg.ParkArea,
		Popularity: cfg.Popularity,
		MeanTime:   cfg.MeanTime,
		dwelling:   make(map[int]int),
	}
}

// AddToActivity records an agent's entry and samples its remaining dwell
// time from rng as max(1, round(Normal(mean_time, mean_time/4))).
func (a *Activity) AddToActivity(agentID int, rng *utils.RandSource) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	stddev := float64(a.MeanTime) / 4.0
	dwell := utils.Max(1, int(rng.NormFloat64(float64(a.MeanTime), stddev)+0.5))
	a.dwelling[agentID] = dwell
	return dwell
}

// Step decrements every dwelling agent's remaining time by one minute and
// returns the set of agents whose dwell reached zero this tick.
func (a *Activity) Step() []int {
	a.mu.Lock()
	defer a.mu.Unlock()

	var done []int
	for id, remaining := range a.dwelling {
		remaining--
		if remaining <= 0 {
			done = append(done, id)
			delete(a.dwelling, id)
		} else {
			a.dwelling[id] = remaining
		}
	}
	return done
}

// ForceExit yields an agent immediately, regardless of remaining dwell,
// used when the orchestrator must pull a browsing agent onto a ride via a
// redeemed expedited pass.
func (a *Activity) ForceExit(agentID int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.dwelling[agentID]; !ok {
		return false
	}
	delete(a.dwelling, agentID)
	return true
}

// Population returns the number of agents currently dwelling.
func (a *Activity) Population() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.dwelling)
}
