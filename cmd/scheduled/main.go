// Command scheduled reads a job-shop scheduling problem as JSON,
// compiles and solves it, verifies the result, and writes the
// resulting schedule back out as JSON. A pareto run writes the
// frontier's recommended member, not the whole frontier.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/gitrdm/scheduled/internal/constraints"
	"github.com/gitrdm/scheduled/internal/extract"
	"github.com/gitrdm/scheduled/internal/objective"
	"github.com/gitrdm/scheduled/internal/report"
	"github.com/gitrdm/scheduled/internal/schedlog"
	"github.com/gitrdm/scheduled/internal/solve"
	"github.com/gitrdm/scheduled/internal/varbuild"
	"github.com/gitrdm/scheduled/internal/verify"
)

var (
	inputPath   string
	logLevel    string
	timeLimit   int
	nodeLimit   int
	workers     int
	strategy    string
	objectives  []string
	tolerance   float64
)

func main() {
	root := &cobra.Command{
		Use:   "scheduled",
		Short: "Compile and solve a job-shop scheduling problem",
		Long: `scheduled reads a problem document (machines, jobs, tasks, operators,
skills, and shifts) and produces an optimized schedule.

Input is a JSON document read from --input, or from stdin when --input
is omitted or "-".`,
		RunE: runSolve,
	}

	root.Flags().StringVar(&inputPath, "input", "-", "problem JSON file, or \"-\" for stdin")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warning, error")
	root.Flags().IntVar(&timeLimit, "time-limit", 30, "solver wall-clock budget in seconds (positive)")
	root.Flags().IntVar(&nodeLimit, "node-limit", 0, "solver search-node budget (0 = unlimited)")
	root.Flags().IntVar(&workers, "workers", 1, "parallel solver workers")
	root.Flags().StringVar(&strategy, "strategy", "lexicographic", "multi-objective strategy: lexicographic, weighted-sum, epsilon-constraint, pareto")
	root.Flags().StringSliceVar(&objectives, "objective", []string{"makespan"}, "objective(s) to optimize, in priority order: makespan, total-lateness, max-lateness")
	root.Flags().Float64Var(&tolerance, "tolerance", 0.01, "lexicographic relaxation tolerance")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scheduled:", err)
		os.Exit(1)
	}
}

func runSolve(cmd *cobra.Command, _ []string) error {
	log := schedlog.New(parseLogLevel(logLevel))
	if timeLimit <= 0 {
		return fmt.Errorf("--time-limit must be a positive number of seconds, got %d", timeLimit)
	}
	limit := time.Duration(timeLimit) * time.Second

	var in *os.File
	if inputPath == "" || inputPath == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	p, err := decodeProblem(in)
	if err != nil {
		return fmt.Errorf("load problem: %w", err)
	}

	horizon := computeHorizon(p)
	build, err := varbuild.New(p, horizon, latestStartFor(horizon))
	if err != nil {
		return fmt.Errorf("build variables: %w", err)
	}

	compiler := constraints.New(p, build, schedlog.Named(log, "compiler"))
	compiled, err := compiler.CompileAll()
	if err != nil {
		return fmt.Errorf("compile constraints: %w", err)
	}

	cfg, err := objectiveConfig()
	if err != nil {
		return err
	}

	source := &objective.VariableSource{
		Makespan:      compiled.Makespan.Var,
		TotalLateness: compiled.TotalLateness,
		MaxLateness:   compiled.MaxLateness.Var,
	}

	driver := solve.New(build.Model, source, schedlog.Named(log, "solve"))
	ctx, cancel := context.WithTimeout(cmd.Context(), limit+5*time.Second)
	defer cancel()

	start := time.Now()
	outcome, err := driver.Run(ctx, cfg, solve.Params{
		TimeLimit:       limit,
		NodeLimit:       nodeLimit,
		ParallelWorkers: workers,
	})
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	sched, err := extract.Extract(p, build, compiled, compiler.SetupBools(), outcome.Values)
	if err != nil {
		return fmt.Errorf("extract schedule: %w", err)
	}

	for _, v := range verify.CheckAll(p, sched) {
		log.Warn("invariant check failed", "invariant", v.Invariant, "message", v.Message)
	}

	status := report.StatusOptimal
	if !outcome.Feasible {
		status = report.StatusInfeasible
	}
	var objVal *int
	if v, ok := outcome.Objectives[cfg.Objectives[0].Kind]; ok {
		objVal = &v
	}
	sol, err := report.NewSolution("", status, sched, report.SolverStats{
		SolveTime:      elapsed,
		ObjectiveValue: objVal,
	})
	if err != nil {
		return fmt.Errorf("build solution report: %w", err)
	}

	if err := newStdoutSink(os.Stdout).WriteSolution(cmd.Context(), sol); err != nil {
		return fmt.Errorf("write solution: %w", err)
	}
	if status != report.StatusOptimal && status != report.StatusFeasible {
		os.Exit(1)
	}
	return nil
}

// parseLogLevel maps the CLI's documented level names to hclog's,
// accepting "warning" as an alias for hclog's "warn".
func parseLogLevel(s string) hclog.Level {
	if s == "warning" {
		s = "warn"
	}
	level := hclog.LevelFromString(s)
	if level == hclog.NoLevel {
		return hclog.Info
	}
	return level
}

func objectiveKindFromFlag(s string) (objective.Kind, error) {
	switch s {
	case "makespan":
		return objective.MinimizeMakespan, nil
	case "total-lateness":
		return objective.MinimizeTotalLateness, nil
	case "max-lateness":
		return objective.MinimizeMaximumLateness, nil
	default:
		return 0, fmt.Errorf("unknown objective %q", s)
	}
}

func objectiveConfig() (*objective.MultiObjectiveConfig, error) {
	var strat objective.Strategy
	switch strategy {
	case "lexicographic":
		strat = objective.Lexicographic
	case "weighted-sum":
		strat = objective.WeightedSum
	case "epsilon-constraint":
		strat = objective.EpsilonConstraint
	case "pareto":
		strat = objective.ParetoOptimal
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}

	weight := 1.0 / float64(len(objectives))
	wobjs := make([]objective.WeightedObjective, 0, len(objectives))
	for i, name := range objectives {
		kind, err := objectiveKindFromFlag(name)
		if err != nil {
			return nil, err
		}
		wobjs = append(wobjs, objective.WeightedObjective{
			Kind:     kind,
			Weight:   weight,
			Priority: i + 1,
		})
	}

	cfg := &objective.MultiObjectiveConfig{
		Strategy:   strat,
		Objectives: wobjs,
		Tolerance:  tolerance,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("objective config: %w", err)
	}
	return cfg, nil
}
