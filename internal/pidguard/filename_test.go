package pidguard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGeneratePidFilename(t *testing.T) {
	dir := t.TempDir()

	t.Run("base name from script", func(t *testing.T) {
		got := GeneratePidFilename(dir, "/usr/local/bin/nightly-sync.php", "", "")
		want := filepath.Join(dir, "nightly-sync.pid")
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("unique id appended", func(t *testing.T) {
		got := GeneratePidFilename(dir, "sync", "tenant 7", "")
		want := filepath.Join(dir, "sync-tenant_7.pid")
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("argument hash appended", func(t *testing.T) {
		got := filepath.Base(GeneratePidFilename(dir, "sync", "", `{"f":["a"]}`))
		if !strings.HasPrefix(got, "sync-") || !strings.HasSuffix(got, ".pid") {
			t.Fatalf("unexpected name %q", got)
		}
		hash := strings.TrimSuffix(strings.TrimPrefix(got, "sync-"), ".pid")
		if len(hash) != 16 {
			t.Errorf("hash %q should be 16 hex digits", hash)
		}
	})

	t.Run("default dir is temp dir", func(t *testing.T) {
		got := GeneratePidFilename("", "sync", "", "")
		if filepath.Dir(got) != filepath.Clean(os.TempDir()) {
			t.Errorf("got %q, want it under %q", got, os.TempDir())
		}
	})

	t.Run("degenerate script name", func(t *testing.T) {
		got := GeneratePidFilename(dir, "", "", "")
		if filepath.Base(got) != "console.pid" {
			t.Errorf("got %q", got)
		}
	})
}

func TestPerArgumentUniqueness(t *testing.T) {
	dir := t.TempDir()
	first := `{"name":["alice"]}`
	second := `{"name":["bob"]}`

	a := GeneratePidFilename(dir, "greet", "", first)
	b := GeneratePidFilename(dir, "greet", "", second)
	if a == b {
		t.Errorf("different arguments should give different paths, both %q", a)
	}
	if again := GeneratePidFilename(dir, "greet", "", first); again != a {
		t.Errorf("same arguments should give the same path: %q vs %q", a, again)
	}

	// Uniqueness disabled: callers pass an empty key.
	if GeneratePidFilename(dir, "greet", "", "") != GeneratePidFilename(dir, "greet", "", "") {
		t.Error("paths without argument key should match")
	}
}
