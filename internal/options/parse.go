package options

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

// Scanner sentinels. pflag only treats a value as optional when NoOptDefVal
// is non-empty, so omitted values travel as these markers and are decoded in
// recorder.Set.
const (
	presentSentinel = "\x00present"
	emptySentinel   = "\x00empty"
)

// flagValue is what a value-less option records for each occurrence.
const flagValue = "true"

// Value is the parsed state of one option. The zero Value means the option
// was not given.
type Value struct {
	raw  []string
	flag bool
}

// Present reports whether the option appeared at least once.
func (v Value) Present() bool {
	return len(v.raw) > 0
}

// Count returns how many times the option appeared (-vvv counts 3).
func (v Value) Count() int {
	return len(v.raw)
}

// IsFlag reports whether the option was given and takes no value.
func (v Value) IsFlag() bool {
	return v.flag && v.Present()
}

// Bool is Present, for readability at call sites that treat options as switches.
func (v Value) Bool() bool {
	return v.Present()
}

// String returns the value of the last occurrence: "true" for a flag, "" for
// an omitted optional value or an absent option.
func (v Value) String() string {
	if !v.Present() {
		return ""
	}
	return v.raw[len(v.raw)-1]
}

// Strings returns every occurrence in command-line order.
func (v Value) Strings() []string {
	return append([]string(nil), v.raw...)
}

// Values holds the outcome of scanning one argument vector.
type Values struct {
	set    *Set
	values map[string]Value
	args   []string
}

// NewValues builds a Values directly from option name to occurrences. It is
// meant for callers that already hold parsed data, such as tests and the
// pidlock tool deriving a lock path.
func NewValues(set *Set, given map[string][]string) *Values {
	vals := &Values{set: set, values: make(map[string]Value, len(given))}
	for name, raw := range given {
		spec, ok := set.Lookup(name)
		if !ok || len(raw) == 0 {
			continue
		}
		vals.values[spec.Name] = Value{raw: append([]string(nil), raw...), flag: !spec.TakesValue()}
	}
	return vals
}

// Lookup returns the value of a declared option. declared is false when the
// set has no option by that name or short alias.
func (v *Values) Lookup(name string) (val Value, declared bool) {
	if v == nil || v.set == nil {
		return Value{}, false
	}
	spec, ok := v.set.Lookup(name)
	if !ok {
		return Value{}, false
	}
	return v.values[spec.Name], true
}

// Args returns the positional arguments left after scanning.
func (v *Values) Args() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.args...)
}

// Map returns the present options keyed by name.
func (v *Values) Map() map[string]Value {
	out := make(map[string]Value)
	if v == nil {
		return out
	}
	for k, val := range v.values {
		out[k] = val
	}
	return out
}

// Canonical encodes the present options as JSON with sorted keys. Two
// command lines that set the same options to the same values encode equally
// whatever order they were typed in.
func (v *Values) Canonical() string {
	if v == nil || len(v.values) == 0 {
		return ""
	}
	m := make(map[string][]string, len(v.values))
	for k, val := range v.values {
		m[k] = val.raw
	}
	// encoding/json sorts map keys.
	data, err := json.Marshal(m)
	if err != nil {
		// []string values cannot fail to marshal; fall back to a sorted join.
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, "%s=%s;", k, strings.Join(m[k], ","))
		}
		return b.String()
	}
	return string(data)
}

func (v *Values) present(name string) bool {
	if v == nil {
		return false
	}
	return v.values[name].Present()
}

// recorder is the pflag.Value behind every declared option. It keeps one
// entry per occurrence instead of overwriting.
type recorder struct {
	spec Spec
	vals *[]string
}

func (r *recorder) String() string {
	if r.vals == nil || len(*r.vals) == 0 {
		return ""
	}
	return (*r.vals)[len(*r.vals)-1]
}

func (r *recorder) Set(s string) error {
	switch {
	case !r.spec.TakesValue():
		if s != presentSentinel {
			return fmt.Errorf("option %s does not take a value", Display(r.spec.Name))
		}
		*r.vals = append(*r.vals, flagValue)
	case s == emptySentinel:
		*r.vals = append(*r.vals, "")
	default:
		*r.vals = append(*r.vals, s)
	}
	return nil
}

func (r *recorder) Type() string {
	if r.spec.TakesValue() {
		return strings.ToLower(r.spec.Param)
	}
	return ""
}

// Parse scans argv (without the program name) against set.
//
// Value-less options may be bundled (-vvv) and repeated; every occurrence is
// kept. Mandatory values are taken from "-xVALUE", "-x VALUE", "--name VALUE"
// or "--name=VALUE". Optional values must be attached: "--name=VALUE",
// "-xVALUE" or "-x=VALUE". Everything after "--" is positional.
func Parse(set *Set, argv []string) (*Values, error) {
	fs := pflag.NewFlagSet("options", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	occurrences := make(map[string]*[]string, set.Len())
	for _, spec := range set.specs {
		vals := &[]string{}
		occurrences[spec.Name] = vals
		flag := fs.VarPF(&recorder{spec: spec, vals: vals}, spec.Name, spec.ShortName(), spec.Description)
		switch {
		case !spec.TakesValue():
			flag.NoOptDefVal = presentSentinel
		case spec.ParamOptional:
			flag.NoOptDefVal = emptySentinel
		}
	}

	if err := fs.Parse(attachOptional(set, argv)); err != nil {
		return nil, &UsageError{Err: err}
	}

	values := &Values{
		set:    set,
		values: make(map[string]Value),
		args:   fs.Args(),
	}
	for _, spec := range set.specs {
		if raw := *occurrences[spec.Name]; len(raw) > 0 {
			values.values[spec.Name] = Value{raw: raw, flag: !spec.TakesValue()}
		}
	}
	return values, nil
}

// attachOptional rewrites "-xVALUE" to "-x=VALUE" for short options with an
// optional value, as getopt reads them. pflag would otherwise take the rest
// of the word as more bundled letters.
func attachOptional(set *Set, argv []string) []string {
	out := make([]string, 0, len(argv))
	skipValue := false
	for i, arg := range argv {
		switch {
		case skipValue:
			skipValue = false
		case arg == "--":
			return append(out, argv[i:]...)
		case strings.HasPrefix(arg, "--"):
			spec, ok := set.Lookup(arg[2:])
			skipValue = ok && !spec.IsShort() && spec.TakesValue() && !spec.ParamOptional
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			arg, skipValue = attachShort(set, arg)
		}
		out = append(out, arg)
	}
	return out
}

// attachShort handles one bundle of short letters. needsNext reports whether
// the bundle ends in a letter whose mandatory value is the next word.
func attachShort(set *Set, arg string) (rewritten string, needsNext bool) {
	letters := []rune(arg[1:])
	for i, r := range letters {
		spec, ok := set.Lookup(string(r))
		if !ok {
			return arg, false
		}
		if !spec.TakesValue() {
			continue
		}
		rest := string(letters[i+1:])
		switch {
		case !spec.ParamOptional:
			return arg, rest == ""
		case rest == "" || strings.HasPrefix(rest, "="):
			return arg, false
		default:
			return "-" + string(letters[:i+1]) + "=" + rest, false
		}
	}
	return arg, false
}

// ShortOpts renders the getopt-style short option descriptor: each letter
// followed by ":" for a mandatory value or "::" for an optional one.
func (s *Set) ShortOpts() string {
	var b strings.Builder
	for _, spec := range s.specs {
		short := spec.ShortName()
		if short == "" {
			continue
		}
		b.WriteString(short)
		b.WriteString(valueSuffix(spec))
	}
	return b.String()
}

// LongOpts renders the getopt-style long option descriptors.
func (s *Set) LongOpts() []string {
	var longs []string
	for _, spec := range s.specs {
		if spec.IsShort() {
			continue
		}
		longs = append(longs, spec.Name+valueSuffix(spec))
	}
	return longs
}

func valueSuffix(spec Spec) string {
	switch {
	case !spec.TakesValue():
		return ""
	case spec.ParamOptional:
		return "::"
	default:
		return ":"
	}
}
