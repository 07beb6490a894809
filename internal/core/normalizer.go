package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/rs/zerolog/log"

	"mlflow-algorithmia/internal/policies"
	"mlflow-algorithmia/internal/types"
)

// DependencyNormalizer turns a conda environment into pip requirement
// strings. It holds no state beyond its options and is safe to copy.
type DependencyNormalizer struct {
	Exclusions policies.ExclusionPolicy

	// Legacy reproduces the historical requirements.txt output: every "="
	// of a conda entry without "==" is doubled and clauses are sorted.
	Legacy bool

	// StrictVersions rejects clauses that are not valid PEP 440 specifiers.
	// Ignored in legacy mode.
	StrictVersions bool
}

type NormalizerOption func(*DependencyNormalizer)

func WithLegacyFormatting(enabled bool) NormalizerOption {
	return func(n *DependencyNormalizer) {
		n.Legacy = enabled
	}
}

func WithStrictVersions(enabled bool) NormalizerOption {
	return func(n *DependencyNormalizer) {
		n.StrictVersions = enabled
	}
}

func WithExclusions(policy policies.ExclusionPolicy) NormalizerOption {
	return func(n *DependencyNormalizer) {
		n.Exclusions = policy
	}
}

func NewDependencyNormalizer(opts ...NormalizerOption) DependencyNormalizer {
	n := DependencyNormalizer{Exclusions: policies.NewExclusionPolicy()}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// Normalize walks the dependency list in order. Conda entries are
// filtered through the exclusion policy, pip block entries never are.
// Duplicates are kept.
func (n DependencyNormalizer) Normalize(ctx context.Context, env types.CondaEnvironment) ([]types.Requirement, error) {
	var out []types.Requirement
	for _, dep := range env.Dependencies {
		switch entry := dep.(type) {
		case types.CondaConstraint:
			req, err := n.condaRequirement(string(entry))
			if err != nil {
				return nil, err
			}
			if n.Exclusions.Excludes(req.Name) {
				log.Ctx(ctx).Debug().Str("dependency", string(entry)).Msg("conda dependency excluded")
				continue
			}
			out = append(out, req)
		case types.PipBlock:
			for _, raw := range entry {
				req, err := n.pipRequirement(raw)
				if err != nil {
					return nil, err
				}
				out = append(out, req)
			}
		default:
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unsupported dependency entry %T", dep))
		}
	}
	log.Ctx(ctx).Debug().
		Str("environment", env.Name).
		Int("requirements", len(out)).
		Msg("conda dependencies normalized")
	return out, nil
}

// RequirementStrings is Normalize rendered to requirements.txt lines.
func (n DependencyNormalizer) RequirementStrings(ctx context.Context, env types.CondaEnvironment) ([]string, error) {
	reqs, err := n.Normalize(ctx, env)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(reqs))
	for _, req := range reqs {
		lines = append(lines, req.String())
	}
	return lines, nil
}

func (n DependencyNormalizer) condaRequirement(raw string) (types.Requirement, error) {
	if n.Legacy {
		rewritten := raw
		if !strings.Contains(rewritten, "==") {
			rewritten = strings.ReplaceAll(rewritten, "=", "==")
		}
		req, err := parseLegacyRequirement(rewritten)
		if err != nil {
			return types.Requirement{}, withRaw(err, raw)
		}
		sortClauses(req.Clauses)
		req.Source = types.DependencySourceConda
		return req, nil
	}
	req, err := ParseRequirement(raw)
	if err != nil {
		return types.Requirement{}, err
	}
	for i, clause := range req.Clauses {
		if clause.Op == types.ConstraintOpEq {
			req.Clauses[i].Op = types.ConstraintOpEq2
		}
	}
	if err := n.checkVersions(raw, req); err != nil {
		return types.Requirement{}, err
	}
	req.Source = types.DependencySourceConda
	return req, nil
}

func (n DependencyNormalizer) pipRequirement(raw string) (types.Requirement, error) {
	if n.Legacy {
		req, err := parseLegacyRequirement(raw)
		if err != nil {
			return types.Requirement{}, err
		}
		sortClauses(req.Clauses)
		req.Source = types.DependencySourcePip
		return req, nil
	}
	req, err := ParseRequirement(raw)
	if err != nil {
		return types.Requirement{}, err
	}
	if err := n.checkVersions(raw, req); err != nil {
		return types.Requirement{}, err
	}
	req.Source = types.DependencySourcePip
	return req, nil
}

func (n DependencyNormalizer) checkVersions(raw string, req types.Requirement) error {
	if !n.StrictVersions {
		return nil
	}
	for _, clause := range req.Clauses {
		if _, err := pep440.NewSpecifiers(clause.String()); err != nil {
			return &types.MalformedDependencyError{
				Raw:    raw,
				Reason: fmt.Sprintf("invalid PEP 440 specifier %q", clause.String()),
			}
		}
	}
	return nil
}

// sortClauses orders clauses by their rendered text, matching how the
// historical requirement parser printed specifier sets.
func sortClauses(clauses []types.RequirementClause) {
	sort.SliceStable(clauses, func(i, j int) bool {
		return clauses[i].String() < clauses[j].String()
	})
}

func withRaw(err error, raw string) error {
	var malformedErr *types.MalformedDependencyError
	if errors.As(err, &malformedErr) {
		return &types.MalformedDependencyError{Raw: raw, Reason: malformedErr.Reason}
	}
	return err
}
