// Package report formats benchmark runs into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/weiihann/cmpbench/harness"
)

// Generate writes markdown tables for the given report.
func Generate(w io.Writer, r *harness.Report) error {
	if r == nil || len(r.Measurements) == 0 {
		return fmt.Errorf("no measurements to report")
	}

	// Header.
	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Iterations per input: %d", r.Iterations)
	if r.Strict {
		fmt.Fprint(w, " (strict)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	// Per-measurement rows.
	fmt.Fprintln(w, "| Command | Input | Runs | Total | Mean "+
		"| CPU | Peak Mem | Status |")
	fmt.Fprintln(w, "|---------|-------|------|-------|------"+
		"|-----|----------|--------|")

	for _, m := range r.Measurements {
		fmt.Fprintf(w, "| %s | %s | %d/%d | %s | %s | %s | %s | %s |\n",
			m.Command,
			m.Input,
			m.Completed,
			m.Iterations,
			formatDuration(m.Duration),
			formatDuration(m.Mean()),
			formatCPU(m.UserTime+m.SystemTime),
			formatBytes(m.PeakRSSBytes),
			formatStatus(m),
		)
	}

	fmt.Fprintln(w)

	// Totals.
	fmt.Fprintln(w, "| Command | Total | Failures |")
	fmt.Fprintln(w, "|---------|-------|----------|")

	for _, t := range r.Totals {
		fmt.Fprintf(w, "| %s | %s | %d |\n",
			t.Command, formatDuration(t.Duration), t.Failures)
	}

	if len(r.Ratios) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Baseline | Candidate | Speedup |")
		fmt.Fprintln(w, "|----------|-----------|---------|")

		for _, ratio := range r.Ratios {
			fmt.Fprintf(w, "| %s | %s | %s |\n",
				ratio.Baseline, ratio.Candidate, formatRatio(ratio))
		}
	}

	// Failure details.
	var failed []harness.Measurement
	for _, m := range r.Measurements {
		if m.Failed() && (m.Error != "" || m.Stderr != "") {
			failed = append(failed, m)
		}
	}

	if len(failed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Failures")
		fmt.Fprintln(w)

		for _, m := range failed {
			fmt.Fprintf(w, "- %s on %s: %s\n", m.Command, m.Input, m.Error)

			if tail := strings.TrimSpace(m.Stderr); tail != "" {
				for _, line := range strings.Split(tail, "\n") {
					fmt.Fprintf(w, "    %s\n", line)
				}
			}
		}
	}

	return nil
}

// GenerateJSON writes the report as JSON to w.
func GenerateJSON(w io.Writer, r *harness.Report) error {
	if r == nil {
		return fmt.Errorf("no report")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}

func formatStatus(m harness.Measurement) string {
	switch m.Status {
	case harness.StatusOK:
		return "ok"
	case harness.StatusExitError:
		if m.ExitCode != nil {
			return fmt.Sprintf("**exit %d** (%d/%d)",
				*m.ExitCode, m.NonZeroExits, m.Completed)
		}

		return "**exit error**"
	default:
		return "**" + strings.ReplaceAll(string(m.Status), "_", " ") + "**"
	}
}

func formatRatio(r harness.RatioEntry) string {
	if r.Undefined {
		return "undefined"
	}

	return fmt.Sprintf("%.2fx", r.Value)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func formatCPU(d time.Duration) string {
	if d == 0 {
		return "-"
	}

	return formatDuration(d)
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
