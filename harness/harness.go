package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// maxStderrTail caps the stderr kept on a failed measurement.
const maxStderrTail = 2048

// Runner executes a Config one process at a time.
type Runner struct {
	// Stdout and Stderr receive child output when set. Stdout is
	// discarded otherwise; Stderr is always tail-buffered.
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewRunner creates a Runner that discards child output.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{Logger: logger}
}

// invocation is the outcome of a single process execution.
type invocation struct {
	elapsed  time.Duration
	exitCode int
	launched bool
	timedOut bool
	err      error
	stderr   string
	usage    usage
}

// Run measures every command against every input, commands in the outer
// loop. A *ConfigError is returned before anything runs. LaunchErrors are
// recorded on their measurement unless cfg.Strict is set, in which case
// the partial report is returned together with the error. Cancelling ctx
// stops the run after the current pair and returns the partial report
// with ctx.Err().
func (r *Runner) Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		StartedAt:    time.Now().UTC(),
		Iterations:   cfg.Iterations,
		Strict:       cfg.Strict,
		Measurements: make([]Measurement, 0, len(cfg.Commands)*len(cfg.Inputs)),
	}

	r.Logger.InfoContext(ctx, "starting run",
		slog.Int("commands", len(cfg.Commands)),
		slog.Int("inputs", len(cfg.Inputs)),
		slog.Int("iterations", cfg.Iterations),
		slog.Bool("strict", cfg.Strict),
	)

	for _, c := range cfg.Commands {
		logger := r.Logger.With(slog.String("command", c.Name))

		for _, in := range cfg.Inputs {
			if err := ctx.Err(); err != nil {
				report.finish(cfg)

				return report, err
			}

			m, launchErr := r.measure(ctx, logger, c, in, cfg)
			report.Measurements = append(report.Measurements, m)

			if launchErr != nil && cfg.Strict {
				report.finish(cfg)

				return report, launchErr
			}
		}
	}

	report.finish(cfg)

	// A cancellation during the last pair surfaces as a launch or exit
	// failure; it must not read as a completed run.
	if err := ctx.Err(); err != nil {
		return report, err
	}

	r.Logger.InfoContext(ctx, "run complete",
		slog.Int("measurements", len(report.Measurements)),
	)

	return report, nil
}

func (r *Runner) measure(
	ctx context.Context,
	logger *slog.Logger,
	c Command,
	in Input,
	cfg Config,
) (Measurement, error) {
	m := Measurement{
		Command:    c.Name,
		Input:      in.Name,
		Iterations: cfg.Iterations,
		Status:     StatusOK,
	}

	for i := 0; i < cfg.Iterations; i++ {
		inv := r.invoke(ctx, c, in, cfg.Timeout)

		// A failed start is not a timed run; only completed
		// invocations contribute to Duration.
		if !inv.launched {
			launchErr := &LaunchError{Command: c.Name, Input: in.Name, Err: inv.err}
			m.Status = StatusLaunchError
			m.Error = launchErr.Error()

			logger.Warn("launch failed",
				slog.String("input", in.Name),
				slog.String("error", inv.err.Error()),
			)

			return m, launchErr
		}

		m.Duration += inv.elapsed
		m.Completed++
		m.UserTime += inv.usage.user
		m.SystemTime += inv.usage.system
		m.PeakRSSBytes = max(m.PeakRSSBytes, inv.usage.peakRSS)

		code := inv.exitCode
		m.ExitCode = &code

		switch {
		case inv.timedOut:
			m.Status = StatusTimeout
			m.Error = fmt.Sprintf("timed out after %s", cfg.Timeout)
			m.Stderr = inv.stderr
		case inv.exitCode != 0:
			m.NonZeroExits++
			if m.Status == StatusOK {
				m.Status = StatusExitError
			}
			if inv.err != nil {
				m.Error = inv.err.Error()
			}
			m.Stderr = inv.stderr
		}
	}

	logger.Info("measured",
		slog.String("input", in.Name),
		slog.Duration("elapsed", m.Duration),
		slog.String("status", string(m.Status)),
	)

	return m, nil
}

// invoke runs one process. The timestamps are taken immediately around
// the blocking start and wait and never leave this call.
func (r *Runner) invoke(
	ctx context.Context,
	c Command,
	in Input,
	timeout time.Duration,
) invocation {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Executable, c.Argv(in.Path)...)
	if timeout > 0 {
		// Grandchildren holding the stderr pipe must not outlive the kill.
		cmd.WaitDelay = time.Second
	}

	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	stderr := &tailBuffer{limit: maxStderrTail}
	cmd.Stdout = r.Stdout
	cmd.Stderr = stderr

	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, stderr)
	}

	before := childUsage()
	start := time.Now()

	if err := cmd.Start(); err != nil {
		return invocation{elapsed: time.Since(start), err: err}
	}

	err := cmd.Wait()
	elapsed := time.Since(start)

	inv := invocation{
		elapsed:  elapsed,
		launched: true,
		err:      err,
		stderr:   stderr.String(),
		usage:    childUsage().since(before, cmd.ProcessState),
	}

	if cmd.ProcessState != nil {
		inv.exitCode = cmd.ProcessState.ExitCode()
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		inv.timedOut = true
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) && inv.exitCode == 0 {
		// Wait failed without an exit status, e.g. an output copy error.
		inv.exitCode = -1
	}

	return inv
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) > t.limit {
		p = p[len(p)-t.limit:]
	}

	t.buf.Write(p)

	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}

	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}
