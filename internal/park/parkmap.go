package park

import "fmt"

// ParkMap resolves travel times between named park areas from the
// scenario's configured matrix. It satisfies internal/agent.ParkMap.
type ParkMap struct {
	distances map[string]map[string]int
}

// NewParkMap wraps a scenario's park-area distance matrix.
func NewParkMap(distances map[string]map[string]int) *ParkMap {
	return &ParkMap{distances: distances}
}

// TravelTime returns the one-way travel time in minutes from one area to
// another, including the same-area (intra-area walk) entry.
func (m *ParkMap) TravelTime(from, to string) (int, error) {
	row, ok := m.distances[from]
	if !ok {
		return 0, fmt.Errorf("park map has no entry for area %q", from)
	}
	minutes, ok := row[to]
	if !ok {
		return 0, fmt.Errorf("park map has no route from %q to %q", from, to)
	}
	return minutes, nil
}
