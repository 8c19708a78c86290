// Package arrival builds the minute-indexed arrival schedule a park day
// draws agents from: a per-minute Poisson split of each hour's configured
// percentage of the day's total, optionally snapped to an exact total.
package arrival

import (
	"fmt"
	"sort"

	"github.com/parksim/daysim/pkg/config"
	"github.com/parksim/daysim/pkg/utils"
)

// Schedule maps a simulated minute to the number of agents that should be
// admitted at that minute.
type Schedule struct {
	arrivals  map[int]int
	parkClose int
	total     int
}

// BuildSchedule constructs the per-minute Schedule from the scenario's
// arrival seed and scalar configuration. Each hour gets its own RNG, seeded
// with baseSeed+h, so hours are independent of each other yet individually
// reproducible.
func BuildSchedule(hours []config.ArrivalHour, totalDailyAgents int, perfectArrivals bool, baseSeed int64) (*Schedule, error) {
	if len(hours) == 0 {
		return nil, fmt.Errorf("arrival_seed must define at least one hour")
	}

	arrivals := make(map[int]int)
	for h, hour := range hours {
		rng := utils.NewRandSource(baseSeed + int64(h))
		lambda := float64(totalDailyAgents) * float64(hour.Percent) / 100.0 / 60.0

		hourStart := h * 60
		for minuteOffset := 0; minuteOffset < 60; minuteOffset++ {
			n := 0
			if lambda > 0 {
				n = rng.PoissonInt(lambda)
				if n < 0 {
					n = 0
				}
			}
			arrivals[hourStart+minuteOffset] = n
		}
	}

	s := &Schedule{
		arrivals:  arrivals,
		parkClose: (len(hours) - 1) * 60,
	}
	s.recount()

	if perfectArrivals {
		s.snapToExactTotal(totalDailyAgents, baseSeed)
	}

	return s, nil
}

func (s *Schedule) recount() {
	total := 0
	for _, n := range s.arrivals {
		total += n
	}
	s.total = total
}

// snapToExactTotal adjusts randomly-chosen already-nonzero-arrival minutes
// up or down until the schedule's total equals target exactly, per the
// perfect_arrivals contract. The candidate pool is recomputed on every draw
// from whatever minutes currently hold at least one arrival — a minute that
// starts at zero can never be chosen by either branch, matching the
// reference implementation's `[key for key, val in schedule.items() if
// val > 0]`, redrawn fresh each iteration.
func (s *Schedule) snapToExactTotal(target int, baseSeed int64) {
	rng := utils.NewRandSource(baseSeed + 1_000_003) // distinct stream from any hour's

	for s.total < target {
		m, ok := s.randomNonzeroMinute(rng)
		if !ok {
			return
		}
		s.arrivals[m]++
		s.total++
	}
	for s.total > target {
		m, ok := s.randomNonzeroMinute(rng)
		if !ok {
			return
		}
		s.arrivals[m]--
		s.total--
	}
}

// randomNonzeroMinute uniformly draws one minute (before park close) whose
// arrival count is currently nonzero, recomputing the candidate pool fresh
// on every call.
func (s *Schedule) randomNonzeroMinute(rng *utils.RandSource) (int, bool) {
	minutes := make([]int, 0, len(s.arrivals))
	for m, n := range s.arrivals {
		if m < s.parkClose && n > 0 {
			minutes = append(minutes, m)
		}
	}
	if len(minutes) == 0 {
		return 0, false
	}
	sort.Ints(minutes) // deterministic candidate order for a reproducible draw
	return minutes[rng.Intn(len(minutes))], true
}

// At returns the number of agents scheduled to arrive at the given minute.
func (s *Schedule) At(minute int) int {
	return s.arrivals[minute]
}

// Total returns the sum of all scheduled arrivals.
func (s *Schedule) Total() int {
	return s.total
}

// ParkClose returns the minute the park closes: (len(hours)-1)*60.
func (s *Schedule) ParkClose() int {
	return s.parkClose
}
