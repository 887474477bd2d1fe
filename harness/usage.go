package harness

import "time"

// usage is the resource accounting of one child process.
type usage struct {
	user    time.Duration
	system  time.Duration
	peakRSS uint64
}

// usageSnapshot is the cumulative CPU time of all waited-for children.
// Differences between two snapshots attribute CPU time to the single child
// waited for in between, which holds because invocations never overlap.
type usageSnapshot struct {
	user   time.Duration
	system time.Duration
	ok     bool
}

func cpuDelta(after, before time.Duration) time.Duration {
	if after < before {
		return 0
	}

	return after - before
}
