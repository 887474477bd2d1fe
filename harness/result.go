// Package harness times external commands against a shared set of inputs.
package harness

import "time"

// Status describes how a measurement ended.
type Status string

const (
	StatusOK          Status = "ok"
	StatusExitError   Status = "exit_error"
	StatusLaunchError Status = "launch_error"
	StatusTimeout     Status = "timeout"
)

// Measurement is the timed outcome of one (command, input) pair.
// Duration is the sum over all completed iterations.
type Measurement struct {
	Command      string        `json:"command"`
	Input        string        `json:"input"`
	Iterations   int           `json:"iterations"`
	Completed    int           `json:"completed"`
	Duration     time.Duration `json:"duration_ns"`
	Status       Status        `json:"status"`
	ExitCode     *int          `json:"exit_code,omitempty"`
	NonZeroExits int           `json:"non_zero_exits,omitempty"`
	Error        string        `json:"error,omitempty"`
	Stderr       string        `json:"stderr,omitempty"`
	UserTime     time.Duration `json:"user_time_ns,omitempty"`
	SystemTime   time.Duration `json:"system_time_ns,omitempty"`
	PeakRSSBytes uint64        `json:"peak_rss_bytes,omitempty"`
}

// Mean returns the average duration of a completed iteration.
func (m Measurement) Mean() time.Duration {
	if m.Completed == 0 {
		return 0
	}

	return m.Duration / time.Duration(m.Completed)
}

// Failed reports whether the measurement did not run to a clean exit.
func (m Measurement) Failed() bool {
	return m.Status != StatusOK
}

// Total aggregates all measurements of one command.
type Total struct {
	Command   string        `json:"command"`
	Duration  time.Duration `json:"duration_ns"`
	Completed int           `json:"completed"`
	Failures  int           `json:"failures"`
}

// RatioEntry is baseline total / candidate total. Undefined is set
// instead of Value when the candidate total is zero or either command
// never completed an invocation.
type RatioEntry struct {
	Baseline  string  `json:"baseline"`
	Candidate string  `json:"candidate"`
	Value     float64 `json:"value,omitempty"`
	Undefined bool    `json:"undefined,omitempty"`
}

// Report is the ordered result of one run.
type Report struct {
	StartedAt    time.Time     `json:"started_at"`
	Iterations   int           `json:"iterations"`
	Strict       bool          `json:"strict"`
	Measurements []Measurement `json:"measurements"`
	Totals       []Total       `json:"totals"`
	Ratios       []RatioEntry  `json:"ratios"`
}

// Lookup returns the measurement for a command and input name.
func (r *Report) Lookup(command, input string) (Measurement, bool) {
	for _, m := range r.Measurements {
		if m.Command == command && m.Input == input {
			return m, true
		}
	}

	return Measurement{}, false
}
