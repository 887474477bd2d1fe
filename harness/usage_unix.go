//go:build unix

package harness

import (
	"os"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func childUsage() usageSnapshot {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_CHILDREN, &ru); err != nil {
		return usageSnapshot{}
	}

	return usageSnapshot{
		user:   time.Duration(ru.Utime.Nano()),
		system: time.Duration(ru.Stime.Nano()),
		ok:     true,
	}
}

func (s usageSnapshot) since(before usageSnapshot, state *os.ProcessState) usage {
	var u usage

	if s.ok && before.ok {
		u.user = cpuDelta(s.user, before.user)
		u.system = cpuDelta(s.system, before.system)
	}

	if state == nil {
		return u
	}

	if ru, ok := state.SysUsage().(*syscall.Rusage); ok && ru.Maxrss > 0 {
		// Darwin reports bytes, everything else kilobytes.
		if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
			u.peakRSS = uint64(ru.Maxrss)
		} else {
			u.peakRSS = uint64(ru.Maxrss) * 1024
		}
	}

	return u
}
