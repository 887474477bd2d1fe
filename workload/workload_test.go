package workload

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{
		Variables:    50,
		Loops:        5,
		MinLoopIters: 10,
		MaxLoopIters: 100,
		Distribution: "uniform",
		Seed:         42,
	}

	var buf1, buf2 bytes.Buffer

	gen1 := NewGenerator(cfg)
	sum1, err := gen1.Generate(&buf1)
	if err != nil {
		t.Fatalf("first generation failed: %v", err)
	}

	gen2 := NewGenerator(cfg)
	sum2, err := gen2.Generate(&buf2)
	if err != nil {
		t.Fatalf("second generation failed: %v", err)
	}

	if buf1.String() != buf2.String() {
		t.Error("scripts are not deterministic for same seed")
	}

	if sum1 != sum2 {
		t.Errorf("summaries differ: %+v vs %+v", sum1, sum2)
	}

	cfg.Seed = 43

	var buf3 bytes.Buffer
	if _, err := NewGenerator(cfg).Generate(&buf3); err != nil {
		t.Fatalf("third generation failed: %v", err)
	}

	if buf1.String() == buf3.String() {
		t.Error("different seeds produced identical scripts")
	}
}

func TestGenerateCounts(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantLines int
		wantLoops int
	}{
		{
			name: "basic",
			cfg: Config{
				Variables:    5,
				Loops:        3,
				MinLoopIters: 1,
				MaxLoopIters: 10,
				Seed:         1,
			},
			// header + 5 vars + total + 3*2 loop lines + 2 prints
			wantLines: 15,
			wantLoops: 3,
		},
		{
			name: "no loops",
			cfg: Config{
				Variables: 10,
				Seed:      2,
			},
			wantLines: 14,
			wantLoops: 0,
		},
		{
			name: "no variables",
			cfg: Config{
				Loops:        2,
				MinLoopIters: 5,
				MaxLoopIters: 5,
				Seed:         3,
			},
			wantLines: 7,
			wantLoops: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			gen := NewGenerator(tt.cfg)

			sum, err := gen.Generate(&buf)
			if err != nil {
				t.Fatalf("generation failed: %v", err)
			}

			if sum.Lines != tt.wantLines {
				t.Errorf("lines: got %d, want %d", sum.Lines, tt.wantLines)
			}
			if got := strings.Count(buf.String(), "\n"); got != tt.wantLines {
				t.Errorf("written lines: got %d, want %d", got, tt.wantLines)
			}
			if sum.Loops != tt.wantLoops {
				t.Errorf("loops: got %d, want %d", sum.Loops, tt.wantLoops)
			}
		})
	}
}

func TestGenerateRejectsNegativeCounts(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"negative loops", func(c *Config) { c.Loops = -1 }},
		{"negative variables", func(c *Config) { c.Variables = -3 }},
		{"negative min iterations", func(c *Config) { c.MinLoopIters = -1 }},
		{"max below min", func(c *Config) { c.MaxLoopIters = c.MinLoopIters - 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)

			var buf bytes.Buffer
			if _, err := NewGenerator(cfg).Generate(&buf); err == nil {
				t.Fatal("expected an error")
			}
			if buf.Len() != 0 {
				t.Errorf("wrote %d bytes for a rejected config", buf.Len())
			}
		})
	}
}

func TestLoopDistributionNegativeLoops(t *testing.T) {
	g := NewGenerator(Config{Loops: -1, MinLoopIters: 1, MaxLoopIters: 2})
	if got := g.loopDistribution(); len(got) != 0 {
		t.Errorf("loopDistribution = %v, want empty", got)
	}
}

var (
	literalRe  = regexp.MustCompile(`^v(\d+) = \d+$`)
	additionRe = regexp.MustCompile(`^v(\d+) = v(\d+) \+ v(\d+)$`)
	loopRe     = regexp.MustCompile(`^for i\d+ in range\((\d+)\):$`)
	bodyRe     = regexp.MustCompile(`^    total = total \+ (v\d+|\d+)$`)
	printRe    = regexp.MustCompile(`^print\((v\d+|total)\)$`)
)

func TestGenerateReferencesDefinedVariables(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7

	var buf bytes.Buffer
	sum, err := NewGenerator(cfg).Generate(&buf)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	lineNum := 0
	trips := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch {
		case lineNum == 1:
			if !strings.HasPrefix(line, "# generated by cmpbench") {
				t.Errorf("line 1: unexpected header %q", line)
			}
		case literalRe.MatchString(line):
		case additionRe.MatchString(line):
			m := additionRe.FindStringSubmatch(line)
			target, _ := strconv.Atoi(m[1])
			for _, ref := range m[2:] {
				n, _ := strconv.Atoi(ref)
				if n >= target {
					t.Errorf("line %d: v%d used before definition", lineNum, n)
				}
			}
		case line == "total = 0":
		case loopRe.MatchString(line):
			n, _ := strconv.Atoi(loopRe.FindStringSubmatch(line)[1])
			if n < cfg.MinLoopIters || n > cfg.MaxLoopIters {
				t.Errorf("line %d: trip count %d out of range", lineNum, n)
			}
			trips += n
		case bodyRe.MatchString(line):
		case printRe.MatchString(line):
		default:
			t.Errorf("line %d: unexpected statement %q", lineNum, line)
		}
	}

	if err := scanner.Err(); err != nil {
		t.Fatalf("scanner error: %v", err)
	}

	if trips != sum.LoopIterations {
		t.Errorf("loop iterations = %d, summary says %d", trips, sum.LoopIterations)
	}
}

func TestDistributions(t *testing.T) {
	for _, dist := range []string{"power-law", "exponential", "uniform", "bogus"} {
		t.Run(dist, func(t *testing.T) {
			cfg := Config{
				Loops:        100,
				MinLoopIters: 1,
				MaxLoopIters: 1000,
				Distribution: dist,
				Seed:         42,
			}

			gen := NewGenerator(cfg)
			trips := gen.loopDistribution()

			if len(trips) != 100 {
				t.Fatalf("got %d loops, want 100", len(trips))
			}

			for i, n := range trips {
				if n < cfg.MinLoopIters || n > cfg.MaxLoopIters {
					t.Errorf("loop %d: trip count %d out of [%d, %d]",
						i, n, cfg.MinLoopIters, cfg.MaxLoopIters)
				}
			}
		})
	}
}
