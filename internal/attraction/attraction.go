// Package attraction implements the ride state machine: two interleaved
// FIFO queues, a batch-loading cycle, and the wait-time and expedited
// return-window estimators the agent decision procedure consumes.
package attraction

import (
	"math"
	"sync"

	"github.com/parksim/daysim/internal/policy"
	"github.com/parksim/daysim/pkg/config"
	"github.com/parksim/daysim/pkg/utils"
)

// Attraction is one ride: its static configuration plus the volatile
// queue/cycle state the orchestrator mutates every tick.
type Attraction struct {
	Name             string
	ParkArea         string
	RunTime          int
	HourlyThroughput int
	Popularity       int
	ChildEligible    bool
	AdultEligible    bool
	ExpeditedEnabled bool
	ExpQueueRatio    float64

	capacity float64

	mu                 sync.RWMutex
	queue              []int
	expQueue           []int
	agentsInAttraction []int
	runTimeRemaining   int
	waitTime           int
	expWaitTime        int
	expReturnTime      int
	gate               *policy.PassGate
	distributed        int
	redeemed           int
	skipped            int
	cycles             int
	served             int
}

// New builds an Attraction from its static scenario configuration. The
// expedited-pass gate starts open unless the attraction offers no
// expedited seats at all (ratio 0 or the feature disabled), in which case
// it starts and stays closed.
func New(cfg config.Attraction) *Attraction {
	startOpen := cfg.ExpeditedQueue && cfg.ExpeditedQueueRatio > 0
	return &Attraction{
		Name:             cfg.Name,
		ParkArea:         cfg.ParkArea,
		RunTime:          cfg.RunTime,
		HourlyThroughput: cfg.HourlyThroughput,
		Popularity:       cfg.Popularity,
		ChildEligible:    cfg.ChildEligible,
		AdultEligible:    cfg.AdultEligible,
		ExpeditedEnabled: cfg.ExpeditedQueue,
		ExpQueueRatio:    cfg.ExpeditedQueueRatio,
		capacity:         cfg.Capacity(),
		gate:             policy.NewPassGate(startOpen),
	}
}

// Capacity returns the real-valued per-cycle capacity.
func (a *Attraction) Capacity() float64 {
	return a.capacity
}

// expRatio returns the effective expedited-queue ratio: 0 when the
// attraction doesn't offer an expedited queue at all, which folds the
// batch-split math in Step into a single formula for both cases.
func (a *Attraction) expRatio() float64 {
	if !a.ExpeditedEnabled {
		return 0
	}
	return a.ExpQueueRatio
}

// UpdateWaitTimes recomputes the posted standby and expedited wait
// estimates under the assumption of a saturated queue and theoretical
// capacity.
func (a *Attraction) UpdateWaitTimes() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ExpeditedEnabled {
		standbyCapacity := a.capacity * (1 - a.ExpQueueRatio)
		a.waitTime = utils.FloorDiv(float64(len(a.queue)), standbyCapacity)*a.RunTime + a.runTimeRemaining

		expCapacity := a.capacity * a.ExpQueueRatio
		a.expWaitTime = utils.FloorDiv(float64(len(a.expQueue)), expCapacity)*a.RunTime + a.runTimeRemaining
	} else {
		a.waitTime = utils.FloorDiv(float64(len(a.queue)), a.capacity)*a.RunTime + a.runTimeRemaining
	}
}

// UpdateExpReturnWindow recomputes the next return time offered to a
// freshly issued pass. Return windows never decrease and always land on a
// 5-minute boundary strictly greater than the time they were set at; once
// the earliest safe window would fall within an hour of closing, the gate
// closes permanently for the day.
func (a *Attraction) UpdateExpReturnWindow(time, parkClose int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.ExpeditedEnabled || !a.gate.IsOpen() {
		return
	}

	unredeemed := a.distributed - a.redeemed - a.skipped
	expCapacity := a.capacity * a.ExpQueueRatio
	minutesToProcess := 0.0
	if expCapacity > 0 {
		minutesToProcess = float64(unredeemed) * float64(a.RunTime) / expCapacity
	}
	estClear := float64(time) + minutesToProcess

	minPost := estClear
	if nextBoundary := float64(time + utils.MinutesToNextBoundary(time, 5)); nextBoundary > minPost {
		minPost = nextBoundary
	}
	if current := float64(a.expReturnTime); current > minPost {
		minPost = current
	}

	if minPost > float64(parkClose-60) {
		a.gate.Close()
		return
	}

	if estClear < minPost {
		a.expReturnTime = int(minPost)
	} else {
		a.expReturnTime = ceilToMultipleFloat(estClear, 5)
	}
}

// ceilToMultipleFloat rounds a real-valued minute estimate up to the next
// whole minute before deferring to CeilToMultiple for the 5-minute snap,
// since estClear is never negative in this context.
func ceilToMultipleFloat(v float64, step int) int {
	return utils.CeilToMultiple(int(math.Ceil(v)), step)
}

// AddToQueue appends an agent to the standby queue.
func (a *Attraction) AddToQueue(agentID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queue = append(a.queue, agentID)
}

// AddToExpQueue appends an agent to the expedited queue and returns the
// posted expedited wait time as of this call.
func (a *Attraction) AddToExpQueue(agentID int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.expQueue = append(a.expQueue, agentID)
	return a.expWaitTime
}

// IssuePass records the demand for one more expedited pass and returns the
// return time to attach to it.
func (a *Attraction) IssuePass() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.distributed++
	return a.expReturnTime
}

// RedeemPass records a boarding against a held pass.
func (a *Attraction) RedeemPass() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.redeemed++
}

// SkipPass records a held pass that was never redeemed, e.g. because its
// holder left the park first.
func (a *Attraction) SkipPass() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.skipped++
}

// Step runs one batch-load cycle if the attraction is due (run_time_remaining
// == 0): it expels every currently-riding agent, then fills the next
// in-ride set from the expedited queue head up to its seat share, and the
// standby queue head with whatever seats remain. It is a no-op, returning
// two nils, when the attraction is still mid-cycle.
func (a *Attraction) Step(time, parkClose int) (exiting, loaded []int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.runTimeRemaining != 0 {
		return nil, nil
	}

	exiting = a.agentsInAttraction
	a.agentsInAttraction = nil

	ratio := a.expRatio()
	maxExp := int(math.Floor(a.capacity * ratio))
	var maxStd int
	if len(a.expQueue) < maxExp {
		maxStd = int(math.Floor(a.capacity - float64(len(a.expQueue))))
	} else {
		maxStd = int(math.Floor(a.capacity - float64(maxExp)))
	}
	maxStd = utils.Clamp(maxStd, 0, int(math.Ceil(a.capacity)))

	loaded = make([]int, 0, maxExp+maxStd)

	n := maxExp
	if n > len(a.expQueue) {
		n = len(a.expQueue)
	}
	loaded = append(loaded, a.expQueue[:n]...)
	a.expQueue = a.expQueue[n:]

	m := maxStd
	if m > len(a.queue) {
		m = len(a.queue)
	}
	loaded = append(loaded, a.queue[:m]...)
	a.queue = a.queue[m:]

	a.agentsInAttraction = loaded
	a.runTimeRemaining = a.RunTime
	a.cycles++
	a.served += len(loaded)

	return exiting, loaded
}

// PassTime advances the attraction's internal cycle clock by one minute.
func (a *Attraction) PassTime() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runTimeRemaining > 0 {
		a.runTimeRemaining--
	}
}

// QueueLength returns the current standby queue length.
func (a *Attraction) QueueLength() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.queue)
}

// ExpQueueLength returns the current expedited queue length.
func (a *Attraction) ExpQueueLength() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.expQueue)
}

// WaitTime returns the posted standby wait estimate.
func (a *Attraction) WaitTime() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.waitTime
}

// ExpWaitTime returns the posted expedited wait estimate.
func (a *Attraction) ExpWaitTime() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.expWaitTime
}

// ExpReturnTime returns the absolute minute a freshly issued pass would
// currently be stamped with.
func (a *Attraction) ExpReturnTime() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.expReturnTime
}

// GateOpen reports whether the attraction is still issuing expedited
// passes.
func (a *Attraction) GateOpen() bool {
	return a.gate.IsOpen()
}

// RunTimeRemaining returns the minutes left in the current cycle.
func (a *Attraction) RunTimeRemaining() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.runTimeRemaining
}

// InAttraction returns a copy of the set of agents currently riding.
func (a *Attraction) InAttraction() []int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]int, len(a.agentsInAttraction))
	copy(out, a.agentsInAttraction)
	return out
}

// Counters returns the (distributed, redeemed, skipped) pass counters.
func (a *Attraction) Counters() (distributed, redeemed, skipped int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.distributed, a.redeemed, a.skipped
}

// Cycles returns the (batch-load cycles completed, total riders served)
// counters, accumulated across the whole run.
func (a *Attraction) Cycles() (cycles, served int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cycles, a.served
}
