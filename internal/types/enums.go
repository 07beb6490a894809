package types

// DependencySource records which part of a conda environment an entry
// came from.
type DependencySource string

const (
	DependencySourceConda DependencySource = "conda"
	DependencySourcePip   DependencySource = "pip"
)

type ConstraintOp string

const (
	ConstraintOpNone      ConstraintOp = ""
	ConstraintOpEq        ConstraintOp = "="
	ConstraintOpEq2       ConstraintOp = "=="
	ConstraintOpArbitrary ConstraintOp = "==="
	ConstraintOpNe        ConstraintOp = "!="
	ConstraintOpCompat    ConstraintOp = "~="
	ConstraintOpGte       ConstraintOp = ">="
	ConstraintOpLte       ConstraintOp = "<="
	ConstraintOpGt        ConstraintOp = ">"
	ConstraintOpLt        ConstraintOp = "<"
)

const FlavorAlgorithmia = "Algorithmia"
