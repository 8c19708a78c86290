package arrival

import (
	"testing"

	"github.com/parksim/daysim/pkg/config"
)

func twoHourSeed() []config.ArrivalHour {
	return []config.ArrivalHour{
		{Label: "9am", Percent: 100},
		{Label: "10am", Percent: 0},
	}
}

func TestBuildScheduleParkClose(t *testing.T) {
	s, err := BuildSchedule(twoHourSeed(), 500, false, 42)
	if err != nil {
		t.Fatalf("BuildSchedule failed: %v", err)
	}
	if s.ParkClose() != 60 {
		t.Errorf("expected park close 60, got %d", s.ParkClose())
	}
}

func TestBuildScheduleClosingHourIsZero(t *testing.T) {
	s, err := BuildSchedule(twoHourSeed(), 500, false, 7)
	if err != nil {
		t.Fatalf("BuildSchedule failed: %v", err)
	}
	for m := 60; m < 120; m++ {
		if s.At(m) != 0 {
			t.Fatalf("expected zero arrivals at minute %d (closing hour), got %d", m, s.At(m))
		}
	}
}

func TestBuildSchedulePerfectArrivalsMatchesExactTotal(t *testing.T) {
	s, err := BuildSchedule(twoHourSeed(), 5000, true, 11)
	if err != nil {
		t.Fatalf("BuildSchedule failed: %v", err)
	}
	if s.Total() != 5000 {
		t.Errorf("expected total 5000, got %d", s.Total())
	}
}

func TestBuildScheduleReproducible(t *testing.T) {
	s1, _ := BuildSchedule(twoHourSeed(), 1000, false, 99)
	s2, _ := BuildSchedule(twoHourSeed(), 1000, false, 99)

	for m := 0; m < 60; m++ {
		if s1.At(m) != s2.At(m) {
			t.Fatalf("expected identical arrivals at minute %d for identical seed, got %d vs %d", m, s1.At(m), s2.At(m))
		}
	}
}

func TestBuildScheduleZeroArrivals(t *testing.T) {
	hours := []config.ArrivalHour{
		{Label: "9am", Percent: 0},
		{Label: "10am", Percent: 100},
		{Label: "11am", Percent: 0},
	}
	s, err := BuildSchedule(hours, 100, false, 3)
	if err != nil {
		t.Fatalf("BuildSchedule failed: %v", err)
	}
	for m := 0; m < 60; m++ {
		if s.At(m) != 0 {
			t.Fatalf("expected zero arrivals in the zero-percent first hour at minute %d, got %d", m, s.At(m))
		}
	}
}

func TestBuildScheduleEmptySeed(t *testing.T) {
	_, err := BuildSchedule(nil, 100, false, 1)
	if err == nil {
		t.Error("expected error for empty arrival seed")
	}
}
