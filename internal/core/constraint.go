package core

import (
	"fmt"
	"regexp"
	"strings"

	"mlflow-algorithmia/internal/types"
)

// opTokens is the ordered list of clause operators tried during parsing.
// Longer tokens must precede their prefixes ("===" before "==" before "=").
var opTokens = []types.ConstraintOp{
	types.ConstraintOpArbitrary,
	types.ConstraintOpCompat,
	types.ConstraintOpEq2,
	types.ConstraintOpNe,
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
	types.ConstraintOpEq,
}

var (
	namePattern          = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*(\[[A-Za-z0-9._,\s-]*\])?`)
	versionPattern       = regexp.MustCompile(`^[A-Za-z0-9.*+!_-]+$`)
	legacyVersionPattern = regexp.MustCompile(`^[^,;\s]+$`)
)

// ParseRequirement splits a raw requirement such as "pkg>=1.0,<2.0" into
// its name, version clauses and optional environment marker. Entries
// without a version constraint yield a requirement with no clauses.
func ParseRequirement(raw string) (types.Requirement, error) {
	return parseRequirement(raw, versionPattern)
}

// parseLegacyRequirement accepts any non-separator run as a version, so
// doubled operators like ">==2.0" survive as ">=" + "=2.0".
func parseLegacyRequirement(raw string) (types.Requirement, error) {
	return parseRequirement(raw, legacyVersionPattern)
}

func parseRequirement(raw string, versions *regexp.Regexp) (types.Requirement, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.Requirement{}, malformed(raw, "empty requirement")
	}
	spec, marker, hasMarker := strings.Cut(trimmed, ";")
	marker = strings.TrimSpace(marker)
	if hasMarker && marker == "" {
		return types.Requirement{}, malformed(raw, "empty environment marker")
	}
	spec = strings.TrimSpace(spec)
	name := namePattern.FindString(spec)
	if name == "" {
		return types.Requirement{}, malformed(raw, "missing package name")
	}
	req := types.Requirement{
		Name:   strings.TrimSpace(name),
		Marker: marker,
	}
	rest := strings.TrimSpace(spec[len(name):])
	if rest == "" {
		return req, nil
	}
	for _, part := range strings.Split(rest, ",") {
		clause, err := parseClause(raw, strings.TrimSpace(part), versions)
		if err != nil {
			return types.Requirement{}, err
		}
		req.Clauses = append(req.Clauses, clause)
	}
	return req, nil
}

func parseClause(raw string, clause string, versions *regexp.Regexp) (types.RequirementClause, error) {
	if clause == "" {
		return types.RequirementClause{}, malformed(raw, "empty version clause")
	}
	for _, op := range opTokens {
		if !strings.HasPrefix(clause, string(op)) {
			continue
		}
		version := strings.TrimSpace(clause[len(op):])
		if version == "" {
			return types.RequirementClause{}, malformed(raw, fmt.Sprintf("missing version after %q", op))
		}
		if !versions.MatchString(version) {
			return types.RequirementClause{}, malformed(raw, fmt.Sprintf("invalid version %q", version))
		}
		return types.RequirementClause{Op: op, Version: version}, nil
	}
	return types.RequirementClause{}, malformed(raw, fmt.Sprintf("unknown operator in %q", clause))
}

func malformed(raw string, reason string) error {
	return &types.MalformedDependencyError{Raw: raw, Reason: reason}
}
