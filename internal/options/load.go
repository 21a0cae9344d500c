package options

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// specFile is the on-disk shape of a specification set:
//
//	options:
//	  file:
//	    short: f
//	    param: FILE
//	    requirement: required
type specFile struct {
	Options map[string]Spec `yaml:"options" toml:"options"`
}

// LoadFile reads a raw specification map from a YAML (.yaml, .yml) or TOML
// (.toml) file. The result still has to go through Normalize.
func LoadFile(path string) (map[string]Spec, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is supplied by the script author
	if err != nil {
		return nil, fmt.Errorf("failed to read option file: %w", err)
	}

	var file specFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported option file type %q (want .yaml, .yml or .toml)", ext)
	}

	if file.Options == nil {
		return map[string]Spec{}, nil
	}
	return file.Options, nil
}
