package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/steveyegge/console/internal/config"
	"github.com/steveyegge/console/internal/lockfile"
	"github.com/steveyegge/console/internal/pidguard"
)

// TestMain keeps config discovery away from the developer's machine.
func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "pidlock-tests-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	oldWD, _ := os.Getwd()
	_ = os.Chdir(tmp)
	_ = os.Setenv("HOME", tmp)
	_ = os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg-config"))

	code := m.Run()

	config.ResetForTesting()
	_ = os.Chdir(oldWD)
	_ = os.RemoveAll(tmp)
	os.Exit(code)
}

func runPidlock(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verboseCount, quietFlag, pidDir = 0, false, ""
	statusExitCode, clearStaleOnly = false, false
	pathUniqueID, pathSpecFile = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func heldRecord(t *testing.T) string {
	t.Helper()
	start, err := lockfile.StartTime(os.Getpid())
	if err != nil {
		t.Fatalf("StartTime failed: %v", err)
	}
	return pidguard.Record{PID: os.Getpid(), StartTime: start}.String()
}

func TestVersion(t *testing.T) {
	out, err := runPidlock(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "pidlock version "+Version) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPath(t *testing.T) {
	dir := t.TempDir()

	out, err := runPidlock(t, "path", "--dir", dir, "/usr/local/bin/job.sh")
	if err != nil {
		t.Fatalf("path failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join(dir, "job.pid") {
		t.Errorf("path = %q", got)
	}

	out, err = runPidlock(t, "path", "--dir", dir, "--unique-id", "eu", "job")
	if err != nil {
		t.Fatalf("path failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join(dir, "job-eu.pid") {
		t.Errorf("path with unique id = %q", got)
	}
}

func TestPathWithSpec(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "job.yaml")
	writeFile(t, spec, "options:\n  name:\n    param: NAME\n    requirement: required\n")

	pathFor := func(args ...string) string {
		t.Helper()
		out, err := runPidlock(t, append([]string{"path", "--dir", dir, "--spec", spec, "job", "--"}, args...)...)
		if err != nil {
			t.Fatalf("path failed: %v", err)
		}
		return strings.TrimSpace(out)
	}

	ada := pathFor("--name=ada")
	want := pidguard.GeneratePidFilename(dir, "job", "", `{"name":["ada"]}`)
	if ada != want {
		t.Errorf("path = %q, want %q", ada, want)
	}
	if bob := pathFor("--name", "bob"); bob == ada {
		t.Error("different arguments should give different paths")
	}
	// Missing required options do not matter for the path.
	if none := pathFor(); none != filepath.Join(dir, "job.pid") {
		t.Errorf("path without arguments = %q", none)
	}

	if _, err := runPidlock(t, "path", "--dir", dir, "--spec", spec, "job", "--", "--bogus"); err == nil {
		t.Error("expected error for unknown script option")
	}
}

func TestStatus(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.pid")
	held := filepath.Join(dir, "held.pid")
	bad := filepath.Join(dir, "bad.pid")
	writeFile(t, stale, "999999999|1")
	writeFile(t, held, heldRecord(t))
	writeFile(t, bad, "???")

	out, err := runPidlock(t, "status", filepath.Join(dir, "*.pid"), filepath.Join(dir, "missing.pid"))
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{
		stale + ": stale (process 999999999 not running)",
		fmt.Sprintf("%s: held by running process %d", held, os.Getpid()),
		bad + ": PID_OTHER_UNKNOWN",
		filepath.Join(dir, "missing.pid") + ": no lock file",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "pid=") || strings.Contains(out, "SUMMARY") {
		t.Error("details should only show with -v")
	}

	out, err = runPidlock(t, "status", "-v", stale)
	if err != nil {
		t.Fatalf("status -v failed: %v", err)
	}
	if !strings.Contains(out, "pid=999999999 start=1") {
		t.Errorf("verbose output missing details:\n%s", out)
	}
	if !strings.Contains(out, "SUMMARY") || !strings.Contains(out, "0 held, 1 stale, 0 unknown, 0 missing") {
		t.Errorf("verbose output missing summary:\n%s", out)
	}

	if data, _ := os.ReadFile(stale); string(data) != "999999999|1" {
		t.Errorf("status must not modify lock files, got %q", data)
	}
}

func TestStatusExitCode(t *testing.T) {
	dir := t.TempDir()
	held := filepath.Join(dir, "held.pid")
	writeFile(t, held, heldRecord(t))

	_, err := runPidlock(t, "status", "--exit-code", "-q", held)
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.code != 3 {
		t.Errorf("expected exit code 3, got %v", err)
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.pid")
	held := filepath.Join(dir, "held.pid")
	writeFile(t, stale, "999999999|1")
	writeFile(t, held, heldRecord(t))

	if _, err := runPidlock(t, "clear", "--stale-only", filepath.Join(dir, "*.pid")); err != nil {
		t.Fatalf("clear --stale-only failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale lock should be removed")
	}
	if _, err := os.Stat(held); err != nil {
		t.Error("held lock should be kept")
	}

	out, err := runPidlock(t, "clear", held, filepath.Join(dir, "missing.pid"))
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := os.Stat(held); !os.IsNotExist(err) {
		t.Error("lock should be removed")
	}
	if !strings.Contains(out, "removed "+held) {
		t.Errorf("unexpected output:\n%s", out)
	}
}
