// Package archetype implements the static behavior-archetype table and the
// weighted sampling used to assign each new agent a behavior profile and an
// age-class draw.
package archetype

import (
	"fmt"
	"sort"

	"github.com/parksim/daysim/pkg/config"
	"github.com/parksim/daysim/pkg/models"
	"github.com/parksim/daysim/pkg/utils"
)

// Profile is one archetype's full behavior parameter bundle, copied out of
// config.Archetype so the rest of the simulation never holds a reference
// into the scenario's config tree.
type Profile struct {
	Name                 string
	StayTimePreference   int
	AllowRepeats         bool
	AttractionPreference float64
	WaitThreshold        int
	WaitDiscountBeta     float64
	PercentNoChildRides  float64
	PercentNoAdultRides  float64
	PercentNoPreference  float64
}

// Table is the static, immutable archetype table for one scenario, plus the
// weighted distribution used to assign archetypes to incoming agents.
type Table struct {
	names   []string
	weights []float64
	byName  map[string]Profile
}

// NewTable builds a Table from a scenario's archetype definitions and
// distribution. Names are sorted for a deterministic iteration order, which
// keeps the weighted-index draw reproducible across runs of the same seed.
func NewTable(archetypes map[string]config.Archetype, distribution map[string]int) (*Table, error) {
	t := &Table{byName: make(map[string]Profile, len(archetypes))}

	for name, a := range archetypes {
		t.byName[name] = Profile{
			Name:                 name,
			StayTimePreference:   a.StayTimePreference,
			AllowRepeats:         a.AllowRepeats,
			AttractionPreference: a.AttractionPreference,
			WaitThreshold:        a.WaitThreshold,
			WaitDiscountBeta:     a.WaitDiscountBeta,
			PercentNoChildRides:  a.PercentNoChildRides,
			PercentNoAdultRides:  a.PercentNoAdultRides,
			PercentNoPreference:  a.PercentNoPreference,
		}
	}

	names := make([]string, 0, len(distribution))
	for name := range distribution {
		names = append(names, name)
	}
	sort.Strings(names)

	weights := make([]float64, 0, len(names))
	for _, name := range names {
		if _, ok := t.byName[name]; !ok {
			return nil, fmt.Errorf("archetype distribution references unknown archetype %q", name)
		}
		weights = append(weights, float64(distribution[name]))
	}

	t.names = names
	t.weights = weights
	return t, nil
}

// Sample draws one archetype name using u (expected uniform in [0,1)) and
// returns its full profile.
func (t *Table) Sample(u float64) (Profile, error) {
	idx := utils.WeightedIndex(t.weights, u)
	if idx < 0 {
		return Profile{}, fmt.Errorf("archetype table has no weighted entries to sample from")
	}
	return t.byName[t.names[idx]], nil
}

// Profile looks up an archetype by name.
func (t *Table) Profile(name string) (Profile, bool) {
	p, ok := t.byName[name]
	return p, ok
}

// SampleAgeClass draws the agent's age-class restriction from an archetype's
// three age-class percents, using u (expected uniform in [0,1)).
func (p Profile) SampleAgeClass(u float64) models.AgentAgeClass {
	total := p.PercentNoChildRides + p.PercentNoAdultRides + p.PercentNoPreference
	if total <= 0 {
		return models.AgeClassNoPreference
	}
	weights := []float64{p.PercentNoChildRides, p.PercentNoAdultRides, p.PercentNoPreference}
	switch utils.WeightedIndex(weights, u) {
	case 0:
		return models.AgeClassNoChildRides
	case 1:
		return models.AgeClassNoAdultRides
	default:
		return models.AgeClassNoPreference
	}
}
