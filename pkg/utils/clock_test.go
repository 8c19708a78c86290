package utils

import "testing"

func TestNewMinuteClock(t *testing.T) {
	c := NewMinuteClock(0)
	if c.Now() != 0 {
		t.Fatalf("expected clock to start at 0, got %d", c.Now())
	}
}

func TestMinuteClockAdvance(t *testing.T) {
	c := NewMinuteClock(10)
	c.Advance(1)
	if c.Now() != 11 {
		t.Errorf("expected 11, got %d", c.Now())
	}
}

func TestMinuteClockSet(t *testing.T) {
	c := NewMinuteClock(0)
	c.Set(480)
	if c.Now() != 480 {
		t.Errorf("expected 480, got %d", c.Now())
	}
}

func TestMinuteClockSinceUntil(t *testing.T) {
	c := NewMinuteClock(100)
	if got := c.Since(90); got != 10 {
		t.Errorf("Since(90) = %d, want 10", got)
	}
	if got := c.Until(150); got != 50 {
		t.Errorf("Until(150) = %d, want 50", got)
	}
}

func TestMinutesToNextBoundary(t *testing.T) {
	tests := []struct {
		minute, step, expected int
	}{
		{7, 5, 3},
		{10, 5, 5},
		{0, 5, 5},
		{12, 5, 3},
	}
	for _, tt := range tests {
		if got := MinutesToNextBoundary(tt.minute, tt.step); got != tt.expected {
			t.Errorf("MinutesToNextBoundary(%d, %d) = %d, want %d", tt.minute, tt.step, got, tt.expected)
		}
	}
}
