package ports

// OutputPort writes normalized requirements for use outside a deployment.
type OutputPort interface {
	WriteRequirements(path string, requirements []string) error
}
