// Package main provides the CLI entry point for cmpbench, a wall-clock
// comparison tool for command-line programs such as interpreter builds.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weiihann/cmpbench/config"
	"github.com/weiihann/cmpbench/harness"
	"github.com/weiihann/cmpbench/report"
	"github.com/weiihann/cmpbench/workload"
)

func main() {
	logger := newLogger(os.Stderr)

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Error("cmpbench failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger logs text to terminals and JSON everywhere else.
func newLogger(f *os.File) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(f, opts))
	}

	return slog.New(slog.NewJSONHandler(f, opts))
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "cmpbench",
		Short: "Compare wall-clock time of command-line programs",
		Long: `Cmpbench runs several external programs against the same input
scripts, one process at a time, and reports per-command totals and speed
ratios against a baseline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newLinesCmd())
	root.AddCommand(newGenCmd(logger))

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath string
		overrides  config.Overrides
		skipBuild  bool
		showOutput bool
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Time every command against every input",
		Long: `Run each command against each input the configured number of
times, sequentially, and print per-command totals and speed ratios.

Commands come from a YAML suite file (--config) and/or --command flags of the
form "name=executable [args...]". The input path is appended to the
arguments unless an argument contains {input}. When no inputs are given a
synthetic arithmetic script is generated.`,
		Example: `  cmpbench run --config bench.yaml
  cmpbench run --command "python=python3" --command "rusty=./rusty" \
      --input tests/addition.py --iterations 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), logger, runOptions{
				configPath: configPath,
				overrides:  overrides,
				skipBuild:  skipBuild,
				showOutput: showOutput,
				outputJSON: outputJSON,
				stdout:     cmd.OutOrStdout(),
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "",
		"Path to a YAML suite file")
	flags.StringArrayVar(&overrides.Commands, "command", nil,
		`Command to measure, as "name=executable [args...]" (repeatable)`)
	flags.StringArrayVarP(&overrides.Inputs, "input", "i", nil,
		"Input file passed to every command (repeatable)")
	flags.IntVarP(&overrides.Iterations, "iterations", "n", 0,
		"Invocations per (command, input) pair (default 1)")
	flags.BoolVar(&overrides.Strict, "strict", false,
		"Abort on the first command that cannot be launched")
	flags.StringVar(&overrides.Timeout, "timeout", "",
		"Per-invocation timeout, e.g. 30s (default none)")
	flags.StringVar(&overrides.Baseline, "baseline", "",
		"Command whose total is the ratio numerator (default first)")
	flags.BoolVar(&skipBuild, "skip-build", false,
		"Skip build steps declared in the suite file")
	flags.BoolVar(&showOutput, "show-output", false,
		"Forward command stdout/stderr to stderr")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of tables")

	return cmd
}

type runOptions struct {
	configPath string
	overrides  config.Overrides
	skipBuild  bool
	showOutput bool
	outputJSON bool
	stdout     io.Writer
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	opts runOptions,
) error {
	// Step 1: Load the suite and apply flag overrides.
	suite := config.Default()

	if opts.configPath != "" {
		var err error

		suite, err = config.Load(opts.configPath)
		if err != nil {
			return err
		}
	}

	if err := suite.Apply(opts.overrides); err != nil {
		return err
	}

	// Step 2: Generate an input when none was named, once the rest of
	// the configuration is known to be valid.
	if len(suite.Inputs) == 0 {
		if err := suite.CheckCommands(); err != nil {
			return err
		}

		path, err := generateInput(ctx, logger, workload.DefaultConfig())
		if err != nil {
			return fmt.Errorf("generate input: %w", err)
		}

		defer os.Remove(path)

		suite.Inputs = append(suite.Inputs, path)
	}

	cfg, err := suite.Harness()
	if err != nil {
		return err
	}

	// Step 3: Build commands (unless --skip-build).
	if !opts.skipBuild {
		if err := harness.BuildAll(ctx, logger, cfg.Commands); err != nil {
			return err
		}
	}

	// Step 4: Measure.
	runner := harness.NewRunner(logger)
	if opts.showOutput {
		runner.Stdout = os.Stderr
		runner.Stderr = os.Stderr
	}

	result, runErr := runner.Run(ctx, cfg)
	if result == nil || (runErr != nil && len(result.Measurements) == 0) {
		return runErr
	}

	// Step 5: Report, including the partial report of a strict abort.
	if opts.outputJSON {
		err = report.GenerateJSON(opts.stdout, result)
	} else {
		err = report.Generate(opts.stdout, result)
	}

	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if runErr != nil {
		return runErr
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}

func generateInput(
	ctx context.Context,
	logger *slog.Logger,
	cfg workload.Config,
) (string, error) {
	tmpFile, err := os.CreateTemp("", "cmpbench-input-*.py")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	summary, err := workload.NewGenerator(cfg).Generate(tmpFile)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())

		return "", fmt.Errorf("generate: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("close input file: %w", err)
	}

	logger.InfoContext(ctx, "input generated",
		slog.String("path", tmpFile.Name()),
		slog.Int("lines", summary.Lines),
		slog.Int("loops", summary.Loops),
		slog.Int("loop_iterations", summary.LoopIterations),
	)

	return tmpFile.Name(), nil
}
