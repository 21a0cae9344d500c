package options

// Validate checks the parsed values against the requirements of set. It
// returns a *ValidationError for the first violation found, walking options
// in name order: REQUIRED options first, then each ONE_REQUIRED group.
//
// Validate never terminates the process; rendering help and choosing an exit
// status is left to the caller.
func Validate(set *Set, values *Values) error {
	for _, spec := range set.specs {
		if spec.Requirement == Required && !values.present(spec.Name) {
			return &ValidationError{Kind: MissingRequired, Names: []string{spec.Name}}
		}
	}

	for _, group := range set.Groups() {
		satisfied := false
		names := make([]string, 0, len(group.Members))
		for _, member := range group.Members {
			names = append(names, member.Name)
			if values.present(member.Name) {
				satisfied = true
			}
		}
		if !satisfied {
			return &ValidationError{Kind: NoneOfGroup, Names: names}
		}
	}

	return nil
}
