// Package lockfile wraps advisory file locks and process probes for the
// platforms console scripts run on.
package lockfile

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrLockBusy is returned by the non-blocking lock calls when another open
// file description already holds a conflicting lock.
var ErrLockBusy = errors.New("lock already held by another process")

// ErrProcessNotRunning is returned by StartTime for a pid with no live process.
var ErrProcessNotRunning = errors.New("process not running")

// ProcessAlive reports whether a process with the given pid exists. A process
// owned by another user counts as alive. pid <= 0 is never alive.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false // 0 would address our own process group
	}
	return processAlive(pid)
}

// StartTime returns the start time of pid in whole seconds since the epoch.
func StartTime(pid int) (int64, error) {
	if !ProcessAlive(pid) {
		return 0, ErrProcessNotRunning
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return 0, ErrProcessNotRunning
		}
		return 0, fmt.Errorf("failed to inspect process %d: %w", pid, err)
	}
	ms, err := p.CreateTime()
	if err != nil {
		return 0, fmt.Errorf("failed to read start time of process %d: %w", pid, err)
	}
	return ms / 1000, nil
}
