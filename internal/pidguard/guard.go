package pidguard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/steveyegge/console/internal/lockfile"
	"github.com/steveyegge/console/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const scopeName = "github.com/steveyegge/console/pidguard"

// DefaultMaxWait bounds how long Check waits for another process to finish
// its own check of the same lock file.
const DefaultMaxWait = 2 * time.Second

// ErrNoLockFile is returned by Inspect when the lock file does not exist.
var ErrNoLockFile = errors.New("lock file does not exist")

var errLockReplaced = errors.New("lock file replaced while locking")

// Options configures a Guard.
type Options struct {
	// Dir holds the lock file. Empty means os.TempDir().
	Dir string
	// Script is the invoking script's path or name.
	Script   string
	UniqueID string
	// PerArgs appends a hash of ArgsKey to the file name.
	PerArgs bool
	ArgsKey string
	// Prober defaults to SystemProber.
	Prober Prober
	// MaxWait bounds retries on a busy lock. Zero means DefaultMaxWait,
	// negative means a single attempt.
	MaxWait time.Duration
	Logger  *slog.Logger
}

// Guard checks and maintains one lock file on behalf of the current process.
type Guard struct {
	path    string
	self    Record
	prober  Prober
	maxWait time.Duration
	logger  *slog.Logger
	rec     *telemetry.Recorder

	holder    Record
	hasHolder bool
}

// New resolves the lock path and the current process's record.
func New(opts Options) (*Guard, error) {
	prober := opts.Prober
	if prober == nil {
		prober = SystemProber{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxWait := opts.MaxWait
	if maxWait == 0 {
		maxWait = DefaultMaxWait
	}

	script := opts.Script
	if script == "" {
		script = os.Args[0]
	}
	argsKey := ""
	if opts.PerArgs {
		argsKey = opts.ArgsKey
	}

	pid := os.Getpid()
	start, err := prober.StartTime(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to read own start time: %w", err)
	}

	return &Guard{
		path:    GeneratePidFilename(opts.Dir, script, opts.UniqueID, argsKey),
		self:    Record{PID: pid, StartTime: start},
		prober:  prober,
		maxWait: maxWait,
		logger:  logger,
		rec:     telemetry.NewRecorder(scopeName, "console.pidguard"),
	}, nil
}

// Path returns the lock file path.
func (g *Guard) Path() string {
	return g.path
}

// Self returns the record this process writes.
func (g *Guard) Self() Record {
	return g.self
}

// Holder returns the record found by the last Check. ok is false when no
// Check has run, the file was fresh, or its content was malformed.
func (g *Guard) Holder() (rec Record, ok bool) {
	return g.holder, g.hasHolder
}

// Check classifies the lock file and claims it when it is free or stale.
// The whole read-then-write runs under an exclusive advisory lock on the
// file. Lock contention outcomes are returned as a Status; only I/O failures
// produce an error, always with StatusNone.
func (g *Guard) Check(ctx context.Context) (Status, error) {
	ctx, op := g.rec.Start(ctx, "check", attribute.String("console.lock.path", g.path))
	status, err := g.check(ctx)
	op.End(err, attribute.String("console.lock.status", status.String()))
	return status, err
}

func (g *Guard) check(ctx context.Context) (Status, error) {
	g.holder, g.hasHolder = Record{}, false

	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return StatusNone, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := acquire(ctx, g.path, os.O_RDWR|os.O_CREATE, lockfile.FlockExclusiveNonBlock, g.maxWait)
	if errors.Is(err, lockfile.ErrLockBusy) {
		g.logger.Debug("lock file busy", "path", g.path, "waited", g.maxWait)
		return StatusOtherUnknown, nil
	}
	if err != nil {
		return StatusNone, err
	}
	defer release(f)

	content, err := io.ReadAll(f)
	if err != nil {
		return StatusNone, fmt.Errorf("failed to read lock file %s: %w", g.path, err)
	}
	if strings.TrimSpace(string(content)) == "" {
		if err := g.write(f); err != nil {
			return StatusNone, err
		}
		g.logger.Debug("created lock file", "path", g.path, "pid", g.self.PID)
		return StatusOK, nil
	}

	rec, err := ParseRecord(string(content))
	if err != nil {
		g.logger.Debug("unreadable lock file", "path", g.path, "error", err)
		return StatusOtherUnknown, nil
	}
	g.holder, g.hasHolder = rec, true

	status := classify(rec, g.self.PID, g.prober)
	switch {
	case status == StatusOtherNotRunning:
		if err := g.write(f); err != nil {
			return StatusNone, err
		}
		g.logger.Debug("recovered stale lock", "path", g.path, "stale_pid", rec.PID)
	case status == StatusOK && rec.StartTime != g.self.StartTime:
		if err := g.write(f); err != nil {
			return StatusNone, err
		}
	}
	return status, nil
}

// Clear removes the guard's own lock file, waiting up to the guard's MaxWait
// for a concurrent Check to finish with it.
func (g *Guard) Clear() error {
	_, err := clearLocked(context.Background(), g.path, g.maxWait, nil)
	return err
}

func (g *Guard) write(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate lock file %s: %w", g.path, err)
	}
	if _, err := f.WriteAt([]byte(g.self.String()), 0); err != nil {
		return fmt.Errorf("failed to write lock file %s: %w", g.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync lock file %s: %w", g.path, err)
	}
	return nil
}

// classify decides the status of rec as seen by process selfPID.
func classify(rec Record, selfPID int, prober Prober) Status {
	if rec.PID == selfPID {
		return StatusOK
	}
	alive, err := prober.Alive(rec.PID)
	if err != nil {
		return StatusOtherUnknown
	}
	if !alive {
		return StatusOtherNotRunning
	}
	start, err := prober.StartTime(rec.PID)
	switch {
	case errors.Is(err, lockfile.ErrProcessNotRunning):
		return StatusOtherNotRunning
	case err != nil:
		return StatusOtherUnknown
	case start != rec.StartTime:
		// pid recycled by an unrelated process
		return StatusOtherNotRunning
	default:
		return StatusOtherRunning
	}
}

// Clear removes a lock file. A missing file is not an error. The file is
// removed under the same exclusive lock Check holds, so a checker part-way
// through a takeover is never left writing to an unlinked file. A lock that
// stays busy for DefaultMaxWait yields an error wrapping lockfile.ErrLockBusy.
func Clear(path string) error {
	_, err := clearLocked(context.Background(), path, DefaultMaxWait, nil)
	return err
}

// ClearStale removes the lock file only when its holder is no longer
// running, classifying and removing under one exclusive lock. It returns the
// status it saw; StatusNone with a nil error means the file was absent.
func ClearStale(ctx context.Context, path string, prober Prober) (Status, error) {
	if prober == nil {
		prober = SystemProber{}
	}
	return clearLocked(ctx, path, DefaultMaxWait, func(content string) Status {
		rec, err := ParseRecord(content)
		if err != nil {
			return StatusOtherUnknown
		}
		return classify(rec, 0, prober)
	})
}

// clearLocked takes the exclusive lock on path and removes it. When decide is
// set, the file is removed only if decide returns StatusOtherNotRunning.
func clearLocked(ctx context.Context, path string, maxWait time.Duration, decide func(string) Status) (Status, error) {
	f, err := acquire(ctx, path, os.O_RDONLY, lockfile.FlockExclusiveNonBlock, maxWait)
	if errors.Is(err, ErrNoLockFile) {
		return StatusNone, nil
	}
	if err != nil {
		return StatusNone, fmt.Errorf("failed to remove lock file %s: %w", path, err)
	}

	status := StatusOtherNotRunning
	if decide != nil {
		content, err := io.ReadAll(f)
		if err != nil {
			release(f)
			return StatusNone, fmt.Errorf("failed to read lock file %s: %w", path, err)
		}
		if status = decide(string(content)); status != StatusOtherNotRunning {
			release(f)
			return status, nil
		}
	}

	if runtime.GOOS == "windows" {
		// an open file cannot be removed on windows
		release(f)
		return status, remove(path)
	}
	err = remove(path)
	release(f)
	return status, err
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file %s: %w", path, err)
	}
	return nil
}

// Inspect classifies a lock file from the outside without modifying it. A
// stale holder is reported as StatusOtherNotRunning but not taken over.
func Inspect(ctx context.Context, path string, prober Prober) (Status, Record, error) {
	if prober == nil {
		prober = SystemProber{}
	}

	f, err := acquire(ctx, path, os.O_RDONLY, lockfile.FlockSharedNonBlock, DefaultMaxWait)
	if errors.Is(err, lockfile.ErrLockBusy) {
		return StatusOtherUnknown, Record{}, nil
	}
	if err != nil {
		return StatusNone, Record{}, err
	}
	defer release(f)

	content, err := io.ReadAll(f)
	if err != nil {
		return StatusNone, Record{}, fmt.Errorf("failed to read lock file %s: %w", path, err)
	}
	rec, err := ParseRecord(string(content))
	if err != nil {
		return StatusOtherUnknown, Record{}, nil
	}
	// pid 0 is never ours, so a live holder is never reported as OK here.
	return classify(rec, 0, prober), rec, nil
}

// acquire opens path and takes a non-blocking lock on it, retrying while the
// lock is busy or the file was swapped underneath us.
func acquire(ctx context.Context, path string, flag int, lock func(*os.File) error, maxWait time.Duration) (*os.File, error) {
	var b backoff.BackOff = &backoff.StopBackOff{}
	if maxWait > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = 10 * time.Millisecond
		eb.MaxInterval = 250 * time.Millisecond
		eb.MaxElapsedTime = maxWait
		b = eb
	}

	var locked *os.File
	op := func() error {
		f, err := os.OpenFile(path, flag, 0o644)
		if errors.Is(err, fs.ErrNotExist) && flag&os.O_CREATE == 0 {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrNoLockFile, path))
		}
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to open lock file %s: %w", path, err))
		}
		if err := lock(f); err != nil {
			_ = f.Close()
			if errors.Is(err, lockfile.ErrLockBusy) {
				return err
			}
			return backoff.Permanent(fmt.Errorf("failed to lock %s: %w", path, err))
		}
		if !sameFile(f, path) {
			release(f)
			return errLockReplaced
		}
		locked = f
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if errors.Is(err, errLockReplaced) {
			// Still being swapped after the whole wait: treat like a busy lock.
			return nil, lockfile.ErrLockBusy
		}
		return nil, err
	}
	return locked, nil
}

// sameFile reports whether the open file is still the one at path. Another
// process may have removed or replaced it between our open and lock.
func sameFile(f *os.File, path string) bool {
	held, err := f.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(held, current)
}

func release(f *os.File) {
	_ = lockfile.FlockUnlock(f)
	_ = f.Close()
}
