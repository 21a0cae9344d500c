package pidguard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// GeneratePidFilename derives the lock file path for a script. The base is
// the script's file name without directory or extension. A non-empty
// uniqueID is appended, then a hash of argsKey when argsKey is non-empty, so
// differently parameterized runs of one script get separate locks. An empty
// dir means os.TempDir().
func GeneratePidFilename(dir, script, uniqueID, argsKey string) string {
	if dir == "" {
		dir = os.TempDir()
	}

	base := filepath.Base(script)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = sanitize(base)
	if base == "" {
		base = "console"
	}

	name := base
	if id := sanitize(uniqueID); id != "" {
		name += "-" + id
	}
	if argsKey != "" {
		name += fmt.Sprintf("-%016x", xxhash.Sum64String(argsKey))
	}
	return filepath.Join(dir, name+".pid")
}

// sanitize keeps a name usable as a single path element.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "." || s == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
