// Package tuning implements ScenarioTuner: a repeated-trial, hill-climbing
// search that adjusts one scenario knob across successive whole-day Park
// runs to minimize or maximize an objective computed from the resulting
// HistoryRecorder summary. It treats the simulation core as a black box,
// driving it one full day per trial and reporting the best scenario found
// plus the trial history.
package tuning

import (
	"context"
	"fmt"
	"sync"

	"github.com/parksim/daysim/pkg/config"
	"github.com/parksim/daysim/pkg/models"
)

// TrialRunner runs one whole-day simulation for a candidate scenario and
// returns its end-of-day metrics. Supplied by the caller so this package
// never imports the simulation core directly.
type TrialRunner func(scenario *config.Scenario) (*models.DayMetrics, error)

// Trial is one recorded step of the search: the iteration it was found at,
// its direction-adjusted score (the objective value, negated when
// maximizing, so lower is always better), and the scenario that produced it.
type Trial struct {
	Iteration int
	Score     float64
	Scenario  *config.Scenario
}

// Result is the outcome of a completed tuning run.
type Result struct {
	BestScenario      *config.Scenario
	BestScore         float64
	Iterations        int
	History           []Trial
	Converged         bool
	ConvergenceReason string
}

// Tuner runs the hill-climbing search described by one config.TuningSpec.
type Tuner struct {
	spec      config.TuningSpec
	objective Objective
	run       TrialRunner

	mu           sync.RWMutex
	bestScore    float64
	bestScenario *config.Scenario
	iteration    int
	history      []Trial
}

// NewTuner builds a Tuner from a validated TuningSpec, its resolved
// objective, and the trial runner the caller supplies.
func NewTuner(spec config.TuningSpec, objective Objective, run TrialRunner) *Tuner {
	trials := spec.Trials
	if trials <= 0 {
		trials = 1
	}
	spec.Trials = trials
	return &Tuner{spec: spec, objective: objective, run: run}
}

// Run performs the search starting from base, returning the best scenario
// found and the full trial history. ctx is checked once per iteration (each
// iteration is a batch of whole-day trial runs) so a long search can be
// cancelled between batches without leaving a trial half-run.
func (t *Tuner) Run(ctx context.Context, base *config.Scenario) (*Result, error) {
	if base == nil {
		return nil, fmt.Errorf("tuning: base scenario is required")
	}

	t.mu.Lock()
	t.bestScenario = cloneScenario(base)
	t.iteration = 0
	t.history = nil
	t.mu.Unlock()

	initialScore, err := t.score(base)
	if err != nil {
		return nil, fmt.Errorf("tuning: evaluating base scenario: %w", err)
	}

	t.mu.Lock()
	t.bestScore = initialScore
	t.history = append(t.history, Trial{Iteration: 0, Score: initialScore, Scenario: cloneScenario(base)})
	current := cloneScenario(base)
	currentScore := initialScore
	t.mu.Unlock()

	for iteration := 1; iteration <= t.spec.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return t.buildResult(false, "cancelled"), err
		}

		t.mu.Lock()
		t.iteration = iteration
		t.mu.Unlock()

		candidates, err := neighbors(current, t.spec.Parameter, t.spec.StepSize)
		if err != nil {
			return nil, fmt.Errorf("tuning: generating neighbors: %w", err)
		}
		if len(candidates) == 0 {
			return t.buildResult(true, "no valid neighbors"), nil
		}

		scored := t.scoreParallel(ctx, candidates)

		bestCandidate := -1
		bestCandidateScore := currentScore
		for i, s := range scored {
			if s.err != nil {
				continue
			}
			if s.score < bestCandidateScore {
				bestCandidateScore = s.score
				bestCandidate = i
			}
		}

		improved := bestCandidate >= 0
		if improved {
			current = candidates[bestCandidate]
			currentScore = bestCandidateScore

			t.mu.Lock()
			if currentScore < t.bestScore {
				t.bestScore = currentScore
				t.bestScenario = cloneScenario(current)
			}
			t.history = append(t.history, Trial{Iteration: iteration, Score: currentScore, Scenario: cloneScenario(current)})
			t.mu.Unlock()
		} else {
			t.mu.Lock()
			t.history = append(t.history, Trial{Iteration: iteration, Score: currentScore, Scenario: cloneScenario(current)})
			recent := t.history
			t.mu.Unlock()

			if iteration > 3 && noRecentImprovement(recent) {
				return t.buildResult(true, "no improvement in recent iterations"), nil
			}
		}
	}

	return t.buildResult(false, "max iterations reached"), nil
}

// noRecentImprovement reports whether the last three recorded trials show
// no strict score improvement over their predecessor.
func noRecentImprovement(history []Trial) bool {
	start := len(history) - 3
	if start < 1 {
		start = 1
	}
	for i := start; i < len(history); i++ {
		if history[i].Score < history[i-1].Score {
			return false
		}
	}
	return true
}

type scoredCandidate struct {
	score float64
	err   error
}

// scoreParallel evaluates every candidate scenario concurrently, bounded by
// spec.Trials workers, since each candidate owns an independent Park
// instance with its own RNG streams.
func (t *Tuner) scoreParallel(ctx context.Context, candidates []*config.Scenario) []scoredCandidate {
	results := make([]scoredCandidate, len(candidates))
	semaphore := make(chan struct{}, t.spec.Trials)
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(idx int, sc *config.Scenario) {
			defer wg.Done()
			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				results[idx] = scoredCandidate{err: ctx.Err()}
				return
			}

			score, err := t.score(sc)
			results[idx] = scoredCandidate{score: score, err: err}
		}(i, candidate)
	}

	wg.Wait()
	return results
}

// score runs one trial and applies the spec's minimize/maximize direction,
// so every comparison downstream is a plain minimization.
func (t *Tuner) score(scenario *config.Scenario) (float64, error) {
	metrics, err := t.run(scenario)
	if err != nil {
		return 0, err
	}
	value, err := t.objective.Evaluate(metrics)
	if err != nil {
		return 0, err
	}
	if !t.spec.Minimize {
		value = -value
	}
	return value, nil
}

func (t *Tuner) buildResult(converged bool, reason string) *Result {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &Result{
		BestScenario:      cloneScenario(t.bestScenario),
		BestScore:         t.bestScore,
		Iterations:        t.iteration,
		History:           t.history,
		Converged:         converged,
		ConvergenceReason: reason,
	}
}
