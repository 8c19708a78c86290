package activity

import (
	"testing"

	"github.com/parksim/daysim/pkg/config"
	"github.com/parksim/daysim/pkg/utils"
)

func sampleActivity() *Activity {
	return New(config.Activity{
		Name:       "Lakeside Picnic Area",
		ParkArea:   "garden_zone",
		Popularity: 3,
		MeanTime:   20,
	})
}

func TestAddToActivitySamplesPositiveDwell(t *testing.T) {
	a := sampleActivity()
	rng := utils.NewRandSource(1)
	dwell := a.AddToActivity(42, rng)
	if dwell < 1 {
		t.Fatalf("expected dwell >= 1, got %d", dwell)
	}
	if a.Population() != 1 {
		t.Fatalf("expected population 1 after entry, got %d", a.Population())
	}
}

func TestStepDecrementsAndYieldsOnZero(t *testing.T) {
	a := sampleActivity()
	a.dwelling[7] = 2

	done := a.Step()
	if len(done) != 0 {
		t.Fatalf("expected no agents done after first decrement, got %v", done)
	}
	if a.dwelling[7] != 1 {
		t.Fatalf("expected remaining dwell 1, got %d", a.dwelling[7])
	}

	done = a.Step()
	if len(done) != 1 || done[0] != 7 {
		t.Fatalf("expected agent 7 to finish dwelling, got %v", done)
	}
	if a.Population() != 0 {
		t.Fatalf("expected population 0 after dwell completes, got %d", a.Population())
	}
}

func TestForceExit(t *testing.T) {
	a := sampleActivity()
	a.dwelling[1] = 10

	if ok := a.ForceExit(1); !ok {
		t.Fatal("expected ForceExit to succeed for a dwelling agent")
	}
	if a.Population() != 0 {
		t.Fatalf("expected population 0 after force exit, got %d", a.Population())
	}
	if ok := a.ForceExit(1); ok {
		t.Fatal("expected ForceExit to fail for an agent no longer dwelling")
	}
}

func TestMultipleAgentsIndependentDwell(t *testing.T) {
	a := sampleActivity()
	a.dwelling[1] = 1
	a.dwelling[2] = 3

	done := a.Step()
	if len(done) != 1 || done[0] != 1 {
		t.Fatalf("expected only agent 1 to finish at first step, got %v", done)
	}
	if a.Population() != 1 {
		t.Fatalf("expected population 1 remaining, got %d", a.Population())
	}
}
