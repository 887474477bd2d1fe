package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiihann/cmpbench/workload"
)

func newGenCmd(logger *slog.Logger) *cobra.Command {
	var (
		cfg    = workload.DefaultConfig()
		output string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a deterministic arithmetic input script",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Seed == 0 {
				cfg.Seed = time.Now().UnixNano()
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			gen := workload.NewGenerator(cfg)

			var (
				summary workload.Summary
				err     error
			)

			if output == "" || output == "-" {
				summary, err = gen.Generate(cmd.OutOrStdout())
			} else {
				summary, err = writeInput(gen, output)
			}

			if err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "input generated",
				slog.String("output", output),
				slog.Int64("seed", cfg.Seed),
				slog.Int("lines", summary.Lines),
				slog.Int("loop_iterations", summary.LoopIterations),
			)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Variables, "variables", cfg.Variables,
		"Number of straight-line assignments")
	flags.IntVar(&cfg.Loops, "loops", cfg.Loops,
		"Number of accumulating for-loops")
	flags.IntVar(&cfg.MinLoopIters, "min-iters", cfg.MinLoopIters,
		"Minimum trip count per loop")
	flags.IntVar(&cfg.MaxLoopIters, "max-iters", cfg.MaxLoopIters,
		"Maximum trip count per loop")
	flags.StringVar(&cfg.Distribution, "distribution", cfg.Distribution,
		"Trip count distribution: uniform, power-law, exponential")
	flags.Int64Var(&cfg.Seed, "seed", 0,
		"Random seed (0 = use current time)")
	flags.StringVarP(&output, "output", "o", "",
		"Output file (default stdout)")

	return cmd
}

func writeInput(gen *workload.Generator, path string) (workload.Summary, error) {
	f, err := os.Create(path)
	if err != nil {
		return workload.Summary{}, fmt.Errorf("create %s: %w", path, err)
	}

	summary, err := gen.Generate(f)
	if err != nil {
		f.Close()

		return summary, err
	}

	if err := f.Close(); err != nil {
		return summary, fmt.Errorf("close %s: %w", path, err)
	}

	return summary, nil
}
