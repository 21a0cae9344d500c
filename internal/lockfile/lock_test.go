//go:build unix

package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openLock(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatalf("failed to open lock file: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFlockFunctions(t *testing.T) {
	t.Run("exclusive lock on unlocked file", func(t *testing.T) {
		f := openLock(t, filepath.Join(t.TempDir(), "test.lock"))
		if err := FlockExclusiveNonBlock(f); err != nil {
			t.Fatalf("FlockExclusiveNonBlock should succeed on unlocked file: %v", err)
		}
		if err := FlockUnlock(f); err != nil {
			t.Errorf("FlockUnlock failed: %v", err)
		}
	})

	t.Run("second exclusive lock is busy", func(t *testing.T) {
		lockPath := filepath.Join(t.TempDir(), "test.lock")
		f1 := openLock(t, lockPath)
		f2 := openLock(t, lockPath)

		if err := FlockExclusiveNonBlock(f1); err != nil {
			t.Fatalf("failed to acquire first lock: %v", err)
		}
		defer FlockUnlock(f1)

		if err := FlockExclusiveNonBlock(f2); !errors.Is(err, ErrLockBusy) {
			t.Errorf("expected ErrLockBusy, got %v", err)
		}
		if err := FlockSharedNonBlock(f2); !errors.Is(err, ErrLockBusy) {
			t.Errorf("expected ErrLockBusy for shared lock, got %v", err)
		}
	})

	t.Run("shared locks coexist", func(t *testing.T) {
		lockPath := filepath.Join(t.TempDir(), "test.lock")
		f1 := openLock(t, lockPath)
		f2 := openLock(t, lockPath)

		if err := FlockSharedNonBlock(f1); err != nil {
			t.Fatalf("first shared lock failed: %v", err)
		}
		defer FlockUnlock(f1)
		if err := FlockSharedNonBlock(f2); err != nil {
			t.Errorf("second shared lock failed: %v", err)
		}
		defer FlockUnlock(f2)
	})

	t.Run("lock is free after unlock", func(t *testing.T) {
		lockPath := filepath.Join(t.TempDir(), "test.lock")
		f1 := openLock(t, lockPath)
		f2 := openLock(t, lockPath)

		if err := FlockExclusiveNonBlock(f1); err != nil {
			t.Fatalf("failed to acquire lock: %v", err)
		}
		if err := FlockUnlock(f1); err != nil {
			t.Fatalf("FlockUnlock failed: %v", err)
		}
		if err := FlockExclusiveNonBlock(f2); err != nil {
			t.Errorf("lock should be free after unlock: %v", err)
		}
		FlockUnlock(f2)
	})
}

func TestProcessAlive(t *testing.T) {
	t.Run("current process is running", func(t *testing.T) {
		if !ProcessAlive(os.Getpid()) {
			t.Error("expected current process to be running")
		}
	})

	t.Run("non-existent process is not running", func(t *testing.T) {
		if ProcessAlive(999999999) {
			t.Error("expected non-existent process to not be running")
		}
	})

	t.Run("invalid pids", func(t *testing.T) {
		for _, pid := range []int{0, -1} {
			if ProcessAlive(pid) {
				t.Errorf("pid %d should never be alive", pid)
			}
		}
	})
}

func TestStartTime(t *testing.T) {
	start, err := StartTime(os.Getpid())
	if err != nil {
		t.Fatalf("StartTime failed: %v", err)
	}
	now := time.Now().Unix()
	if start <= 0 || start > now {
		t.Errorf("start time %d not in (0, %d]", start, now)
	}

	again, err := StartTime(os.Getpid())
	if err != nil || again != start {
		t.Errorf("start time not stable: %d then %d (%v)", start, again, err)
	}

	if _, err := StartTime(999999999); !errors.Is(err, ErrProcessNotRunning) {
		t.Errorf("expected ErrProcessNotRunning, got %v", err)
	}
}
