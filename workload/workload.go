// Package workload generates deterministic Python-style input scripts for
// interpreter benchmarks. Each script is a sequence of integer
// assignments and additions, a number of accumulating for-loops, and a
// final print, so any interpreter supporting that subset can run it.
package workload

import (
	"bufio"
	"fmt"
	"io"
	"math"
	mrand "math/rand"
)

// Summary contains statistics about the generated script.
type Summary struct {
	Lines          int
	Assignments    int
	Additions      int
	Loops          int
	LoopIterations int
}

// Config controls script generation parameters.
type Config struct {
	Variables    int
	Loops        int
	MinLoopIters int
	MaxLoopIters int
	Distribution string
	Seed         int64
}

// DefaultConfig returns the parameters used when a run names no inputs.
func DefaultConfig() Config {
	return Config{
		Variables:    200,
		Loops:        10,
		MinLoopIters: 100,
		MaxLoopIters: 10000,
		Distribution: "uniform",
	}
}

// Validate rejects negative counts.
func (cfg Config) Validate() error {
	switch {
	case cfg.Variables < 0:
		return fmt.Errorf("workload: variables must not be negative, got %d", cfg.Variables)
	case cfg.Loops < 0:
		return fmt.Errorf("workload: loops must not be negative, got %d", cfg.Loops)
	case cfg.MinLoopIters < 0:
		return fmt.Errorf("workload: min loop iterations must not be negative, got %d", cfg.MinLoopIters)
	case cfg.MaxLoopIters < cfg.MinLoopIters:
		return fmt.Errorf("workload: max loop iterations %d below min %d",
			cfg.MaxLoopIters, cfg.MinLoopIters)
	}

	return nil
}

// Generator produces deterministic scripts from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate writes a script to w and returns a Summary.
func (g *Generator) Generate(w io.Writer) (Summary, error) {
	var summary Summary

	if err := g.cfg.Validate(); err != nil {
		return summary, err
	}

	bw := bufio.NewWriter(w)

	emit := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
		summary.Lines++
	}

	emit("# generated by cmpbench, seed %d", g.cfg.Seed)

	// Straight-line assignments. The first two are literals, later ones
	// either literals or sums of two earlier variables.
	for i := 0; i < g.cfg.Variables; i++ {
		if i < 2 || g.rng.Intn(2) == 0 {
			emit("v%d = %d", i, g.rng.Intn(1000))
			summary.Assignments++

			continue
		}

		emit("v%d = v%d + v%d", i, g.rng.Intn(i), g.rng.Intn(i))
		summary.Assignments++
		summary.Additions++
	}

	emit("total = 0")
	summary.Assignments++

	trips := g.loopDistribution()

	for i, n := range trips {
		operand := fmt.Sprint(g.rng.Intn(100) + 1)
		if g.cfg.Variables > 0 {
			operand = fmt.Sprintf("v%d", g.rng.Intn(g.cfg.Variables))
		}

		emit("for i%d in range(%d):", i, n)
		emit("    total = total + %s", operand)

		summary.Loops++
		summary.LoopIterations += n
		summary.Additions += n
	}

	if g.cfg.Variables > 0 {
		emit("print(v%d)", g.cfg.Variables-1)
	}

	emit("print(total)")

	if err := bw.Flush(); err != nil {
		return summary, fmt.Errorf("write script: %w", err)
	}

	return summary, nil
}

// loopDistribution draws the trip count of every loop.
func (g *Generator) loopDistribution() []int {
	dist := make([]int, max(g.cfg.Loops, 0))
	lo := max(g.cfg.MinLoopIters, 0)
	hi := max(lo, g.cfg.MaxLoopIters)

	switch g.cfg.Distribution {
	case "power-law":
		alpha := 1.5
		for i := range dist {
			u := g.rng.Float64()
			trips := float64(max(lo, 1)) / math.Pow(1-u, 1/alpha)
			if trips > float64(hi) {
				trips = float64(hi)
			}
			dist[i] = max(lo, int(trips))
		}

	case "exponential":
		lambda := math.Log(2) / math.Max(float64(hi)/4, 1)
		for i := range dist {
			u := g.rng.Float64()
			trips := -math.Log(1-u) / lambda
			clamped := math.Max(float64(lo), math.Min(trips, float64(hi)))
			dist[i] = int(clamped)
		}

	default:
		// Uniform, also the fallback for unknown names.
		span := hi - lo + 1
		for i := range dist {
			dist[i] = lo + g.rng.Intn(span)
		}
	}

	return dist
}
