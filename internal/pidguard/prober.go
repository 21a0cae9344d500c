package pidguard

import "github.com/steveyegge/console/internal/lockfile"

// Prober answers questions about other processes. Errors mean the answer
// could not be determined, for example for lack of permission.
type Prober interface {
	Alive(pid int) (bool, error)
	// StartTime returns the process start in epoch seconds.
	StartTime(pid int) (int64, error)
}

// SystemProber asks the operating system.
type SystemProber struct{}

func (SystemProber) Alive(pid int) (bool, error) {
	return lockfile.ProcessAlive(pid), nil
}

func (SystemProber) StartTime(pid int) (int64, error) {
	return lockfile.StartTime(pid)
}
