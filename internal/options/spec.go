// Package options declares command-line option specifications, scans process
// arguments against them and validates the result.
//
// A specification set is built from a map of partial Specs by Normalize, which
// fills defaults and fixes the iteration order (alphabetical by name). That
// order is what the help text and the usage line are rendered in.
package options

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Requirement says whether an option has to be present on the command line.
type Requirement int

const (
	// RequirementUnset is the zero value; Normalize turns it into Optional.
	RequirementUnset Requirement = iota
	Optional
	Required
	// OneRequired options form a group of which at least one member must be
	// present. More than one is allowed.
	OneRequired
)

func (r Requirement) String() string {
	switch r {
	case RequirementUnset:
		return "unset"
	case Optional:
		return "optional"
	case Required:
		return "required"
	case OneRequired:
		return "one_required"
	default:
		return fmt.Sprintf("Requirement(%d)", int(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Requirement) MarshalText() ([]byte, error) {
	if r < RequirementUnset || r > OneRequired {
		return nil, fmt.Errorf("invalid requirement %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so spec files can say
// `requirement: one_required`.
func (r *Requirement) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "unset":
		*r = RequirementUnset
	case "optional":
		*r = Optional
	case "required":
		*r = Required
	case "one_required", "one-required", "onerequired":
		*r = OneRequired
	default:
		return fmt.Errorf("unknown requirement %q", string(text))
	}
	return nil
}

// DefaultParam is the label used when an option takes an optional value but
// declares no label for it.
const DefaultParam = "VALUE"

// Spec describes one option. Name is the map key it was declared under: a
// single character is a short option (-x), anything longer a long one (--name).
type Spec struct {
	Name          string      `yaml:"-" toml:"-"`
	Short         string      `yaml:"short,omitempty" toml:"short,omitempty"`
	Description   string      `yaml:"description,omitempty" toml:"description,omitempty"`
	Param         string      `yaml:"param,omitempty" toml:"param,omitempty"`
	ParamOptional bool        `yaml:"param_optional,omitempty" toml:"param_optional,omitempty"`
	Requirement   Requirement `yaml:"requirement,omitempty" toml:"requirement,omitempty"`
	// Group names the ONE_REQUIRED group the option belongs to. All options
	// with an empty Group share one implicit group.
	Group string `yaml:"group,omitempty" toml:"group,omitempty"`
}

// IsShort reports whether the option's own name is a short option.
func (s Spec) IsShort() bool {
	return utf8.RuneCountInString(s.Name) == 1
}

// TakesValue reports whether the option consumes a value.
func (s Spec) TakesValue() bool {
	return s.Param != ""
}

// ShortName returns the letter the option answers to as -x, if any.
func (s Spec) ShortName() string {
	if s.IsShort() {
		return s.Name
	}
	return s.Short
}

// Set is a normalized, alphabetically ordered collection of Specs.
type Set struct {
	specs   []Spec
	byName  map[string]int
	byShort map[string]int
}

// Builtins are the options every console script answers to.
func Builtins() map[string]Spec {
	return map[string]Spec{
		"help":    {Short: "h", Description: "Show this help text and exit"},
		"quiet":   {Short: "q", Description: "Suppress all output except errors"},
		"verbose": {Short: "v", Description: "Increase output verbosity (repeatable: -vv, -vvv)"},
	}
}

// Normalize trims, defaults and sorts a raw specification map. It fails with
// a *ConfigError when the map cannot describe a consistent command line.
func Normalize(raw map[string]Spec) (*Set, error) {
	set := &Set{
		specs:   make([]Spec, 0, len(raw)),
		byName:  make(map[string]int, len(raw)),
		byShort: make(map[string]int),
	}

	// Work in sorted raw-key order so error messages are deterministic.
	rawKeys := make([]string, 0, len(raw))
	for k := range raw {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	seen := make(map[string]string, len(raw))
	for _, rawKey := range rawKeys {
		spec, err := normalizeOne(rawKey, raw[rawKey])
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[spec.Name]; dup {
			return nil, &ConfigError{Name: spec.Name, Reason: fmt.Sprintf("declared twice (as %q and %q)", prev, rawKey)}
		}
		seen[spec.Name] = rawKey
		set.specs = append(set.specs, spec)
	}

	sort.Slice(set.specs, func(i, j int) bool { return set.specs[i].Name < set.specs[j].Name })

	for i, spec := range set.specs {
		set.byName[spec.Name] = i
		short := spec.ShortName()
		if short == "" {
			continue
		}
		if other, taken := set.byShort[short]; taken {
			return nil, &ConfigError{Name: spec.Name, Reason: fmt.Sprintf("short option -%s already used by %q", short, set.specs[other].Name)}
		}
		set.byShort[short] = i
	}

	return set, nil
}

func normalizeOne(rawKey string, spec Spec) (Spec, error) {
	name := strings.TrimSpace(rawKey)
	if name == "" {
		return Spec{}, &ConfigError{Name: rawKey, Reason: "empty option name"}
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 || strings.HasPrefix(name, "-") || strings.Contains(name, "=") {
		return Spec{}, &ConfigError{Name: name, Reason: "option names may not contain spaces, '=' or a leading dash"}
	}

	spec.Name = name
	spec.Short = strings.TrimSpace(spec.Short)
	spec.Description = strings.TrimSpace(spec.Description)
	spec.Param = strings.TrimSpace(spec.Param)
	spec.Group = strings.TrimSpace(spec.Group)

	if spec.IsShort() && !validShort(name) {
		return Spec{}, &ConfigError{Name: name, Reason: "short options must be a single ASCII letter or digit"}
	}
	if spec.Short != "" {
		if !validShort(spec.Short) {
			return Spec{}, &ConfigError{Name: name, Reason: fmt.Sprintf("short alias %q must be a single ASCII letter or digit", spec.Short)}
		}
		if spec.IsShort() {
			if spec.Short != name {
				return Spec{}, &ConfigError{Name: name, Reason: fmt.Sprintf("short option cannot have a different alias %q", spec.Short)}
			}
			spec.Short = ""
		}
	}

	switch spec.Requirement {
	case RequirementUnset:
		spec.Requirement = Optional
	case Optional, Required, OneRequired:
	default:
		return Spec{}, &ConfigError{Name: name, Reason: fmt.Sprintf("unknown requirement %d", int(spec.Requirement))}
	}

	if spec.ParamOptional && spec.Param == "" {
		spec.Param = DefaultParam
	}
	if spec.Requirement != OneRequired {
		spec.Group = ""
	}

	return spec, nil
}

func validShort(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// Len returns the number of options.
func (s *Set) Len() int {
	return len(s.specs)
}

// Names returns the option names in rendering order.
func (s *Set) Names() []string {
	names := make([]string, len(s.specs))
	for i, spec := range s.specs {
		names[i] = spec.Name
	}
	return names
}

// Specs returns a copy of the options in rendering order.
func (s *Set) Specs() []Spec {
	return append([]Spec(nil), s.specs...)
}

// Lookup finds an option by name or by short alias.
func (s *Set) Lookup(name string) (Spec, bool) {
	if i, ok := s.byName[name]; ok {
		return s.specs[i], true
	}
	if i, ok := s.byShort[name]; ok {
		return s.specs[i], true
	}
	return Spec{}, false
}

// Group is one ONE_REQUIRED group.
type Group struct {
	Name    string
	Members []Spec
}

// Groups returns the ONE_REQUIRED groups, ordered by their first member.
func (s *Set) Groups() []Group {
	var groups []Group
	index := make(map[string]int)
	for _, spec := range s.specs {
		if spec.Requirement != OneRequired {
			continue
		}
		i, ok := index[spec.Group]
		if !ok {
			i = len(groups)
			index[spec.Group] = i
			groups = append(groups, Group{Name: spec.Group})
		}
		groups[i].Members = append(groups[i].Members, spec)
	}
	return groups
}

// Merge returns a copy of base with extra added for every name base does not
// declare already.
func Merge(base, extra map[string]Spec) map[string]Spec {
	merged := make(map[string]Spec, len(base)+len(extra))
	declared := make(map[string]bool, len(base))
	for k, v := range base {
		merged[k] = v
		declared[strings.TrimSpace(k)] = true
	}
	for k, v := range extra {
		if !declared[strings.TrimSpace(k)] {
			merged[k] = v
		}
	}
	return merged
}
