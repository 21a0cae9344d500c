//go:build windows

package lockfile

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// whole file: offset 0, length 2^64-1
const allBytes = 0xFFFFFFFF

// FlockSharedNonBlock takes a shared lock without waiting. Shared holders
// coexist; an exclusive holder makes it fail with ErrLockBusy.
func FlockSharedNonBlock(f *os.File) error {
	return flock(f, windows.LOCKFILE_FAIL_IMMEDIATELY)
}

// FlockExclusiveNonBlock takes an exclusive lock without waiting. Any other
// holder makes it fail with ErrLockBusy.
func FlockExclusiveNonBlock(f *os.File) error {
	return flock(f, windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY)
}

// FlockUnlock drops whatever lock f holds.
func FlockUnlock(f *os.File) error {
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, allBytes, allBytes, &windows.Overlapped{})
}

func flock(f *os.File, flags uint32) error {
	err := windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, allBytes, allBytes, &windows.Overlapped{})
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return ErrLockBusy
	}
	return err
}
