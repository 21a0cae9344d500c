//go:build unix

package lockfile

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// FlockSharedNonBlock takes a shared lock without waiting. Shared holders
// coexist; an exclusive holder makes it fail with ErrLockBusy.
func FlockSharedNonBlock(f *os.File) error {
	return flock(f, unix.LOCK_SH|unix.LOCK_NB)
}

// FlockExclusiveNonBlock takes an exclusive lock without waiting. Any other
// holder makes it fail with ErrLockBusy.
func FlockExclusiveNonBlock(f *os.File) error {
	return flock(f, unix.LOCK_EX|unix.LOCK_NB)
}

// FlockUnlock drops whatever lock f holds.
func FlockUnlock(f *os.File) error {
	return flock(f, unix.LOCK_UN)
}

func flock(f *os.File, how int) error {
	err := unix.Flock(int(f.Fd()), how)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return ErrLockBusy
	}
	return err
}
