package archetype

import (
	"testing"

	"github.com/parksim/daysim/pkg/config"
	"github.com/parksim/daysim/pkg/models"
)

func sampleArchetypes() map[string]config.Archetype {
	return map[string]config.Archetype{
		"thrill_seeker": {
			StayTimePreference:   240,
			AllowRepeats:         true,
			AttractionPreference: 0.9,
			WaitThreshold:        60,
			WaitDiscountBeta:     0.1,
			PercentNoChildRides:  0.1,
			PercentNoAdultRides:  0.0,
			PercentNoPreference:  0.9,
		},
		"family": {
			StayTimePreference:   180,
			AllowRepeats:         false,
			AttractionPreference: 0.5,
			WaitThreshold:        30,
			WaitDiscountBeta:     0.3,
			PercentNoChildRides:  0.0,
			PercentNoAdultRides:  0.4,
			PercentNoPreference:  0.6,
		},
	}
}

func TestNewTableUnknownArchetype(t *testing.T) {
	_, err := NewTable(sampleArchetypes(), map[string]int{"ghost": 100})
	if err == nil {
		t.Fatal("expected error for unknown archetype in distribution")
	}
}

func TestSampleDeterministic(t *testing.T) {
	table, err := NewTable(sampleArchetypes(), map[string]int{"family": 30, "thrill_seeker": 70})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	// names sorted: ["family", "thrill_seeker"] weights [30, 70], cumulative [30,100]
	p, err := table.Sample(0.1) // 0.1*100=10 < 30 -> family
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if p.Name != "family" {
		t.Errorf("expected family at u=0.1, got %s", p.Name)
	}

	p, err = table.Sample(0.5) // 50 >= 30 -> thrill_seeker
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if p.Name != "thrill_seeker" {
		t.Errorf("expected thrill_seeker at u=0.5, got %s", p.Name)
	}
}

func TestProfileLookup(t *testing.T) {
	table, err := NewTable(sampleArchetypes(), map[string]int{"family": 100})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	p, ok := table.Profile("family")
	if !ok {
		t.Fatal("expected family profile to be found")
	}
	if p.StayTimePreference != 180 {
		t.Errorf("expected stay time preference 180, got %d", p.StayTimePreference)
	}
	if _, ok := table.Profile("nonexistent"); ok {
		t.Error("expected nonexistent profile lookup to fail")
	}
}

func TestSampleAgeClass(t *testing.T) {
	p := Profile{
		PercentNoChildRides: 0.1,
		PercentNoAdultRides: 0.4,
		PercentNoPreference: 0.5,
	}
	// weights [0.1, 0.4, 0.5], cumulative [0.1, 0.5, 1.0]
	if got := p.SampleAgeClass(0.05); got != models.AgeClassNoChildRides {
		t.Errorf("expected AgeClassNoChildRides at u=0.05, got %s", got)
	}
	if got := p.SampleAgeClass(0.3); got != models.AgeClassNoAdultRides {
		t.Errorf("expected AgeClassNoAdultRides at u=0.3, got %s", got)
	}
	if got := p.SampleAgeClass(0.9); got != models.AgeClassNoPreference {
		t.Errorf("expected AgeClassNoPreference at u=0.9, got %s", got)
	}
}

func TestSampleAgeClassZeroTotal(t *testing.T) {
	p := Profile{}
	if got := p.SampleAgeClass(0.5); got != models.AgeClassNoPreference {
		t.Errorf("expected AgeClassNoPreference fallback for zero-weight profile, got %s", got)
	}
}
