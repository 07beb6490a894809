package policies

import (
	"sort"
	"strings"

	"mlflow-algorithmia/internal/shared"
)

// DefaultExcludedPackages are conda entries that describe the interpreter
// and installer rather than application dependencies.
var DefaultExcludedPackages = []string{"python", "pip"}

// ExclusionPolicy decides which conda packages are left out of the
// generated requirements. Names are compared after PEP 503 normalization.
type ExclusionPolicy struct {
	names map[string]struct{}
}

func NewExclusionPolicy(extra ...string) ExclusionPolicy {
	policy := ExclusionPolicy{names: map[string]struct{}{}}
	for _, name := range DefaultExcludedPackages {
		policy.names[name] = struct{}{}
	}
	for _, name := range extra {
		normalized := shared.NormalizePipName(name)
		if normalized == "" {
			continue
		}
		policy.names[normalized] = struct{}{}
	}
	return policy
}

func (p ExclusionPolicy) Excludes(name string) bool {
	base, _, _ := strings.Cut(name, "[")
	_, ok := p.names[shared.NormalizePipName(base)]
	return ok
}

// Names returns the excluded package names in sorted order.
func (p ExclusionPolicy) Names() []string {
	out := make([]string, 0, len(p.names))
	for name := range p.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
