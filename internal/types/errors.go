package types

import "fmt"

// MalformedDependencyError reports a dependency string that could not be
// split into name, operator and version.
type MalformedDependencyError struct {
	Raw    string
	Reason string
}

func (e *MalformedDependencyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed dependency %q", e.Raw)
	}
	return fmt.Sprintf("malformed dependency %q: %s", e.Raw, e.Reason)
}

// MissingEnvironmentValueError reports a required setting whose
// environment variable is unset.
type MissingEnvironmentValueError struct {
	Name string
}

func (e *MissingEnvironmentValueError) Error() string {
	return fmt.Sprintf("environment variable %s is not set", e.Name)
}
