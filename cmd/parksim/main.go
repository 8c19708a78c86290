// Command parksim runs one simulated park day (or, with -tuning, a
// scenario-tuning search over one) from a scenario YAML file and writes the
// resulting metrics to stdout or a file as JSON. It is the only place in
// the module that logs a terminal error and exits non-zero.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/parksim/daysim/internal/park"
	"github.com/parksim/daysim/internal/report"
	"github.com/parksim/daysim/internal/tuning"
	"github.com/parksim/daysim/pkg/config"
	"github.com/parksim/daysim/pkg/logger"
	"github.com/parksim/daysim/pkg/models"
	"github.com/parksim/daysim/pkg/utils"
)

func main() {
	var scenarioPath string
	var configPath string
	var outPath string
	var logLevel string
	var seed int64
	var runTuning bool

	flag.StringVar(&scenarioPath, "scenario", "", "path to a scenario YAML file (required)")
	flag.StringVar(&configPath, "config", "", "path to an ambient config YAML file (optional; supplies tuning settings)")
	flag.StringVar(&outPath, "out", "", "file to write the JSON result to (default: stdout)")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Int64Var(&seed, "seed", 0, "override the scenario's random_seed (0 keeps the scenario's own value)")
	flag.BoolVar(&runTuning, "tuning", false, "run the scenario-tuning search described by -config instead of a single day")
	flag.Parse()

	logger.SetDefault(logger.New(logLevel, os.Stderr))

	if scenarioPath == "" {
		logger.Error("missing required flag", "flag", "-scenario")
		os.Exit(1)
	}

	scenario, err := config.LoadScenario(scenarioPath)
	if err != nil {
		logger.Error("failed to load scenario", "path", scenarioPath, "error", err)
		os.Exit(1)
	}
	if seed != 0 {
		scenario.Scalars.RandomSeed = seed
	}

	ctx := context.Background()

	if runTuning {
		if configPath == "" {
			logger.Error("missing required flag for -tuning", "flag", "-config")
			os.Exit(1)
		}
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		if cfg.Tuning == nil {
			logger.Error("config has no tuning section", "path", configPath)
			os.Exit(1)
		}
		if err := runTuningSearch(ctx, *cfg.Tuning, scenario, outPath); err != nil {
			logger.Error("tuning run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runSingleDay(ctx, scenario, outPath); err != nil {
		logger.Error("simulation run failed", "error", err)
		os.Exit(1)
	}
}

func runSingleDay(ctx context.Context, scenario *config.Scenario, outPath string) error {
	runID := utils.GenerateRunID()
	logger.Info("starting simulated day", "run_id", runID, "total_daily_agents", scenario.Scalars.TotalDailyAgents)

	p, err := park.New(scenario, runID)
	if err != nil {
		return fmt.Errorf("building park: %w", err)
	}
	if err := p.RunDay(ctx); err != nil {
		return fmt.Errorf("running day: %w", err)
	}

	arrived, left, distributed, redeemed := p.Totals()
	logger.Info("simulated day complete", "run_id", runID, "arrived", arrived, "left", left, "distributed_passes", distributed, "redeemed_passes", redeemed)

	run := report.BuildRun(p, runID, scenario.Scalars.RandomSeed)
	return writeJSON(run, outPath)
}

func runTuningSearch(ctx context.Context, spec config.TuningSpec, base *config.Scenario, outPath string) error {
	objective, err := tuning.NewObjective(spec.Objective)
	if err != nil {
		return err
	}

	runner := func(candidate *config.Scenario) (*models.DayMetrics, error) {
		p, err := park.New(candidate, utils.GenerateTrialID(0))
		if err != nil {
			return nil, err
		}
		if err := p.RunDay(ctx); err != nil {
			return nil, err
		}
		return report.BuildDayMetrics(p), nil
	}

	tuner := tuning.NewTuner(spec, objective, runner)
	logger.Info("starting tuning search", "objective", spec.Objective, "parameter", spec.Parameter, "max_iterations", spec.MaxIterations)

	result, err := tuner.Run(ctx, base)
	if err != nil {
		return fmt.Errorf("running tuning search: %w", err)
	}

	logger.Info("tuning search complete", "iterations", result.Iterations, "best_score", result.BestScore, "converged", result.Converged, "reason", result.ConvergenceReason)
	return writeJSON(result, outPath)
}

func writeJSON(v any, outPath string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	data = append(data, '\n')

	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
