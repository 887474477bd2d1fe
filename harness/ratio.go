package harness

import (
	"fmt"
	"time"
)

// Ratio returns baseline.Duration / candidate.Duration. A value above 1
// means the candidate is faster. It fails with ErrUndefinedRatio when the
// candidate duration is zero.
func Ratio(baseline, candidate Measurement) (float64, error) {
	v, err := durationRatio(baseline.Duration, candidate.Duration)
	if err != nil {
		return 0, fmt.Errorf("%s/%s on %s: %w",
			baseline.Command, candidate.Command, candidate.Input, err)
	}

	return v, nil
}

func durationRatio(baseline, candidate time.Duration) (float64, error) {
	if candidate == 0 {
		return 0, ErrUndefinedRatio
	}

	return baseline.Seconds() / candidate.Seconds(), nil
}

// finish derives per-command totals and ratios against the baseline.
// Commands without any measurement (strict abort) are omitted.
func (r *Report) finish(cfg Config) {
	r.Totals = r.Totals[:0]
	index := make(map[string]int, len(cfg.Commands))

	for _, m := range r.Measurements {
		i, ok := index[m.Command]
		if !ok {
			i = len(r.Totals)
			index[m.Command] = i
			r.Totals = append(r.Totals, Total{Command: m.Command})
		}

		r.Totals[i].Duration += m.Duration
		r.Totals[i].Completed += m.Completed
		if m.Failed() {
			r.Totals[i].Failures++
		}
	}

	r.Ratios = r.Ratios[:0]

	bi, ok := index[cfg.baseline()]
	if !ok {
		return
	}

	base := r.Totals[bi]

	for _, t := range r.Totals {
		if t.Command == base.Command {
			continue
		}

		entry := RatioEntry{Baseline: base.Command, Candidate: t.Command}

		v, err := durationRatio(base.Duration, t.Duration)
		if err != nil || base.Completed == 0 || t.Completed == 0 {
			entry.Undefined = true
		} else {
			entry.Value = v
		}

		r.Ratios = append(r.Ratios, entry)
	}
}
