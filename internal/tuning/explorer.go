package tuning

import (
	"fmt"
	"strings"

	"github.com/parksim/daysim/pkg/config"
)

// neighbors generates the up-and-down neighbor scenarios for one dotted
// parameter path, each a deep clone of base with that single knob adjusted
// by +/- stepSize. A neighbor that would fall outside the knob's valid range
// is omitted rather than clamped, so fewer than two may be returned. A path resolving to no
// matching attraction, or an unrecognized field, is an error: an unknown
// tuning parameter is a configuration fault, not a silently-skipped trial.
func neighbors(base *config.Scenario, parameter string, stepSize float64) ([]*config.Scenario, error) {
	segments := strings.Split(parameter, ".")

	switch segments[0] {
	case "attractions":
		if len(segments) != 3 {
			return nil, fmt.Errorf("tuning parameter %q: expected attractions.<name>.<field>", parameter)
		}
		return attractionNeighbors(base, segments[1], segments[2], stepSize)
	case "scalars":
		if len(segments) != 2 {
			return nil, fmt.Errorf("tuning parameter %q: expected scalars.<field>", parameter)
		}
		return scalarNeighbors(base, segments[1], stepSize)
	default:
		return nil, fmt.Errorf("tuning parameter %q: unrecognized root %q", parameter, segments[0])
	}
}

func attractionNeighbors(base *config.Scenario, name, field string, stepSize float64) ([]*config.Scenario, error) {
	index := -1
	for i, a := range base.Attractions {
		if a.Name == name {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, fmt.Errorf("tuning parameter: no attraction named %q", name)
	}

	var out []*config.Scenario
	switch field {
	case "hourly_throughput":
		cur := base.Attractions[index].HourlyThroughput
		if up := cur + int(stepSize); up > 0 {
			n := cloneScenario(base)
			n.Attractions[index].HourlyThroughput = up
			out = append(out, n)
		}
		if down := cur - int(stepSize); down > 0 {
			n := cloneScenario(base)
			n.Attractions[index].HourlyThroughput = down
			out = append(out, n)
		}
	case "exp_queue_ratio":
		cur := base.Attractions[index].ExpeditedQueueRatio
		if up := cur + stepSize; up <= 1.0 {
			n := cloneScenario(base)
			n.Attractions[index].ExpeditedQueueRatio = up
			out = append(out, n)
		}
		if down := cur - stepSize; down >= 0.0 {
			n := cloneScenario(base)
			n.Attractions[index].ExpeditedQueueRatio = down
			out = append(out, n)
		}
	default:
		return nil, fmt.Errorf("tuning parameter: unrecognized attraction field %q", field)
	}
	return out, nil
}

func scalarNeighbors(base *config.Scenario, field string, stepSize float64) ([]*config.Scenario, error) {
	var out []*config.Scenario
	switch field {
	case "exp_limit":
		cur := base.Scalars.ExpLimit
		if up := cur + int(stepSize); up >= 0 {
			n := cloneScenario(base)
			n.Scalars.ExpLimit = up
			out = append(out, n)
		}
		if down := cur - int(stepSize); down >= 0 {
			n := cloneScenario(base)
			n.Scalars.ExpLimit = down
			out = append(out, n)
		}
	case "exp_wait_threshold":
		cur := base.Scalars.ExpWaitThreshold
		if up := cur + int(stepSize); up >= 0 {
			n := cloneScenario(base)
			n.Scalars.ExpWaitThreshold = up
			out = append(out, n)
		}
		if down := cur - int(stepSize); down >= 0 {
			n := cloneScenario(base)
			n.Scalars.ExpWaitThreshold = down
			out = append(out, n)
		}
	default:
		return nil, fmt.Errorf("tuning parameter: unrecognized scalar field %q", field)
	}
	return out, nil
}

// cloneScenario deep-copies a scenario so a trial can mutate its own copy
// without disturbing the caller's base configuration or a sibling trial's.
func cloneScenario(s *config.Scenario) *config.Scenario {
	clone := &config.Scenario{
		Attractions:           make([]config.Attraction, len(s.Attractions)),
		Activities:            make([]config.Activity, len(s.Activities)),
		ParkMap:               make(map[string]map[string]int, len(s.ParkMap)),
		ArrivalSeed:           make([]config.ArrivalHour, len(s.ArrivalSeed)),
		Archetypes:            make(map[string]config.Archetype, len(s.Archetypes)),
		ArchetypeDistribution: make(map[string]int, len(s.ArchetypeDistribution)),
		Scalars:               s.Scalars,
	}
	copy(clone.Attractions, s.Attractions)
	copy(clone.Activities, s.Activities)
	copy(clone.ArrivalSeed, s.ArrivalSeed)
	for area, row := range s.ParkMap {
		clonedRow := make(map[string]int, len(row))
		for dest, minutes := range row {
			clonedRow[dest] = minutes
		}
		clone.ParkMap[area] = clonedRow
	}
	for name, archetype := range s.Archetypes {
		clone.Archetypes[name] = archetype
	}
	for name, weight := range s.ArchetypeDistribution {
		clone.ArchetypeDistribution[name] = weight
	}
	return clone
}
