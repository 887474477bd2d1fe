//go:build !unix

package harness

import "os"

func childUsage() usageSnapshot {
	return usageSnapshot{}
}

// since falls back to the process state's own accounting.
func (s usageSnapshot) since(_ usageSnapshot, state *os.ProcessState) usage {
	if state == nil {
		return usage{}
	}

	return usage{user: state.UserTime(), system: state.SystemTime()}
}
