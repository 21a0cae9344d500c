//go:build unix

package lockfile

import (
	"errors"

	"golang.org/x/sys/unix"
)

// processAlive sends signal 0, which checks for existence without delivering
// anything. EPERM means the process exists but belongs to someone else.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
