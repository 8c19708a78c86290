package config

import (
	"fmt"
	"os"
)

// LoadConfig loads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadScenario loads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	scenario, err := ParseScenarioYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return scenario, nil
}

// validateConfig performs validation on the ambient configuration.
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.OutputFmt == "" {
		cfg.OutputFmt = "json"
	}
	if cfg.OutputFmt != "json" && cfg.OutputFmt != "jsonl" {
		return fmt.Errorf("invalid output_format: %s (must be json or jsonl)", cfg.OutputFmt)
	}

	if cfg.Tuning != nil {
		if err := validateTuning(cfg.Tuning); err != nil {
			return fmt.Errorf("tuning validation failed: %w", err)
		}
	}

	return nil
}

func validateTuning(t *TuningSpec) error {
	if t.Objective == "" {
		return fmt.Errorf("tuning objective cannot be empty")
	}
	if t.Parameter == "" {
		return fmt.Errorf("tuning parameter cannot be empty")
	}
	if t.MaxIterations <= 0 {
		return fmt.Errorf("tuning max_iterations must be positive, got %d", t.MaxIterations)
	}
	if t.StepSize == 0 {
		return fmt.Errorf("tuning step_size must be nonzero")
	}
	if t.Trials <= 0 {
		t.Trials = 1
	}
	return nil
}

// validateScenario performs the eager, fatal configuration-fault checks: out
// of range popularity, hourly percents not summing to 100, too many
// operating hours, nonzero closing-hour arrivals, archetype percent
// tolerance, archetype distribution total, and unknown park area
// references.
func validateScenario(s *Scenario) error {
	if err := validateAttractions(s.Attractions); err != nil {
		return fmt.Errorf("attractions: %w", err)
	}
	if err := validateActivities(s.Activities); err != nil {
		return fmt.Errorf("activities: %w", err)
	}

	areas := collectAreas(s)
	if err := validateParkMap(s.ParkMap, areas); err != nil {
		return fmt.Errorf("park_map: %w", err)
	}
	if err := validateArrivalSeed(s.ArrivalSeed); err != nil {
		return fmt.Errorf("arrival_seed: %w", err)
	}
	if err := validateArchetypes(s.Archetypes); err != nil {
		return fmt.Errorf("archetypes: %w", err)
	}
	if err := validateArchetypeDistribution(s.ArchetypeDistribution, s.Archetypes); err != nil {
		return fmt.Errorf("archetype_distribution: %w", err)
	}
	if err := validateScalars(s.Scalars, areas); err != nil {
		return fmt.Errorf("scalars: %w", err)
	}

	return nil
}

func validateAttractions(attractions []Attraction) error {
	if len(attractions) == 0 {
		return fmt.Errorf("at least one attraction must be defined")
	}
	names := make(map[string]bool)
	for _, a := range attractions {
		if a.Name == "" {
			return fmt.Errorf("attraction name cannot be empty")
		}
		if names[a.Name] {
			return fmt.Errorf("duplicate attraction name: %s", a.Name)
		}
		names[a.Name] = true
		if a.Popularity < 1 || a.Popularity > 10 {
			return fmt.Errorf("attraction %s: popularity must be in [1,10], got %d", a.Name, a.Popularity)
		}
		if a.RunTime <= 0 {
			return fmt.Errorf("attraction %s: run_time must be positive, got %d", a.Name, a.RunTime)
		}
		if a.HourlyThroughput <= 0 {
			return fmt.Errorf("attraction %s: hourly_throughput must be positive, got %d", a.Name, a.HourlyThroughput)
		}
		if a.ExpeditedQueueRatio < 0 || a.ExpeditedQueueRatio > 1 {
			return fmt.Errorf("attraction %s: expedited_queue_ratio must be in [0,1], got %f", a.Name, a.ExpeditedQueueRatio)
		}
		if !a.ChildEligible && !a.AdultEligible {
			return fmt.Errorf("attraction %s: must be eligible for at least one age class", a.Name)
		}
		if a.ParkArea == "" {
			return fmt.Errorf("attraction %s: park_area cannot be empty", a.Name)
		}
	}
	return nil
}

func validateActivities(activities []Activity) error {
	if len(activities) == 0 {
		return fmt.Errorf("at least one activity must be defined")
	}
	names := make(map[string]bool)
	for _, a := range activities {
		if a.Name == "" {
			return fmt.Errorf("activity name cannot be empty")
		}
		if names[a.Name] {
			return fmt.Errorf("duplicate activity name: %s", a.Name)
		}
		names[a.Name] = true
		if a.Popularity < 1 {
			return fmt.Errorf("activity %s: popularity must be positive, got %d", a.Name, a.Popularity)
		}
		if a.MeanTime <= 0 {
			return fmt.Errorf("activity %s: mean_time must be positive, got %d", a.Name, a.MeanTime)
		}
		if a.ParkArea == "" {
			return fmt.Errorf("activity %s: park_area cannot be empty", a.Name)
		}
	}
	return nil
}

func collectAreas(s *Scenario) map[string]bool {
	areas := make(map[string]bool)
	for _, a := range s.Attractions {
		areas[a.ParkArea] = true
	}
	for _, a := range s.Activities {
		areas[a.ParkArea] = true
	}
	return areas
}

func validateParkMap(parkMap map[string]map[string]int, areas map[string]bool) error {
	if len(parkMap) == 0 {
		return fmt.Errorf("park_map must define at least one area")
	}
	for from, row := range parkMap {
		if !areas[from] {
			return fmt.Errorf("park_map references area %s that no attraction or activity occupies", from)
		}
		for to, minutes := range row {
			if minutes < 0 {
				return fmt.Errorf("park_map[%s][%s] must be non-negative, got %d", from, to, minutes)
			}
		}
	}
	for area := range areas {
		if _, ok := parkMap[area]; !ok {
			return fmt.Errorf("park_map is missing a travel-time row for area %s", area)
		}
		for dest := range areas {
			if _, ok := parkMap[area][dest]; !ok {
				return fmt.Errorf("park_map[%s] is missing a travel time to area %s", area, dest)
			}
		}
	}
	return nil
}

func validateArrivalSeed(hours []ArrivalHour) error {
	if len(hours) == 0 {
		return fmt.Errorf("arrival_seed must define at least one hour")
	}
	if len(hours) > 24 {
		return fmt.Errorf("arrival_seed defines %d hours, more than 24", len(hours))
	}
	total := 0
	for _, h := range hours {
		if h.Percent < 0 {
			return fmt.Errorf("hour %s: percent cannot be negative, got %d", h.Label, h.Percent)
		}
		total += h.Percent
	}
	if total != 100 {
		return fmt.Errorf("hourly percents sum to %d, must sum to exactly 100", total)
	}
	last := hours[len(hours)-1]
	if last.Percent != 0 {
		return fmt.Errorf("closing hour %s must have zero percent arrivals, got %d", last.Label, last.Percent)
	}
	return nil
}

// percentTolerance is the slack allowed below 1.0 for the three age-class
// percents of an archetype, which in practice rarely sum to exactly 1.0 after
// rounding. Above 1.0 only floating-point rounding slack is allowed.
const percentTolerance = 0.02

func validateArchetypes(archetypes map[string]Archetype) error {
	if len(archetypes) == 0 {
		return fmt.Errorf("at least one archetype must be defined")
	}
	for name, arch := range archetypes {
		if arch.StayTimePreference <= 0 {
			return fmt.Errorf("archetype %s: stay_time_preference must be positive, got %d", name, arch.StayTimePreference)
		}
		if arch.AttractionPreference < 0 || arch.AttractionPreference > 1 {
			return fmt.Errorf("archetype %s: attraction_preference must be in [0,1], got %f", name, arch.AttractionPreference)
		}
		if arch.WaitDiscountBeta <= 0 || arch.WaitDiscountBeta >= 1 {
			return fmt.Errorf("archetype %s: wait_discount_beta must be in (0,1), got %f", name, arch.WaitDiscountBeta)
		}
		sum := arch.PercentNoChildRides + arch.PercentNoAdultRides + arch.PercentNoPreference
		if sum < 1.0-percentTolerance || sum > 1.0+1e-9 {
			return fmt.Errorf("archetype %s: age-class percents sum to %f, must be within [%.2f, 1.00]", name, sum, 1.0-percentTolerance)
		}
	}
	return nil
}

func validateArchetypeDistribution(dist map[string]int, archetypes map[string]Archetype) error {
	if len(dist) == 0 {
		return fmt.Errorf("archetype_distribution must assign at least one weight")
	}
	total := 0
	for name, weight := range dist {
		if _, ok := archetypes[name]; !ok {
			return fmt.Errorf("archetype_distribution references unknown archetype %s", name)
		}
		if weight < 0 {
			return fmt.Errorf("archetype_distribution[%s] cannot be negative, got %d", name, weight)
		}
		total += weight
	}
	if total != 100 {
		return fmt.Errorf("archetype_distribution weights sum to %d, must sum to exactly 100", total)
	}
	return nil
}

func validateScalars(s Scalars, areas map[string]bool) error {
	if s.TotalDailyAgents <= 0 {
		return fmt.Errorf("total_daily_agents must be positive, got %d", s.TotalDailyAgents)
	}
	if s.ExpAbilityPct < 0 || s.ExpAbilityPct > 1 {
		return fmt.Errorf("exp_ability_pct must be in [0,1], got %f", s.ExpAbilityPct)
	}
	if s.ExpWaitThreshold < 0 {
		return fmt.Errorf("exp_wait_threshold cannot be negative, got %d", s.ExpWaitThreshold)
	}
	if s.ExpLimit < 0 {
		return fmt.Errorf("exp_limit cannot be negative, got %d", s.ExpLimit)
	}
	if s.EntranceParkArea == "" {
		return fmt.Errorf("entrance_park_area cannot be empty")
	}
	if !areas[s.EntranceParkArea] {
		return fmt.Errorf("entrance_park_area %s references an area no attraction or activity occupies", s.EntranceParkArea)
	}
	return nil
}
