package types

import "strings"

// RequirementClause is a single "operator version" pair of a requirement.
type RequirementClause struct {
	Op      ConstraintOp
	Version string
}

func (c RequirementClause) String() string {
	return string(c.Op) + c.Version
}

// Requirement is a pip-installable dependency: a package name, zero or
// more version clauses and an optional environment marker.
type Requirement struct {
	Name    string
	Clauses []RequirementClause
	Marker  string
	Source  DependencySource
}

// Op returns the operator of the first clause, or ConstraintOpNone when
// the requirement is unconstrained.
func (r Requirement) Op() ConstraintOp {
	if len(r.Clauses) == 0 {
		return ConstraintOpNone
	}
	return r.Clauses[0].Op
}

// Version returns the version of the first clause.
func (r Requirement) Version() string {
	if len(r.Clauses) == 0 {
		return ""
	}
	return r.Clauses[0].Version
}

// String renders the requirement as "name", "name<op><version>" or, for
// multiple clauses, "name<op1><v1>,<op2><v2>" in clause order.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	for i, clause := range r.Clauses {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(clause.String())
	}
	if r.Marker != "" {
		b.WriteString("; ")
		b.WriteString(r.Marker)
	}
	return b.String()
}
