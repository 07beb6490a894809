package types

const DefaultCondaEnvFile = "conda.yaml"

// CondaEnvFile returns the conda environment file name declared by the
// python_function flavor, falling back to conda.yaml. Both the old string
// form ("env: conda.yaml") and the newer mapping form
// ("env: {conda: conda.yaml}") are understood.
func (m MLModel) CondaEnvFile() string {
	flavor, ok := m.Flavors["python_function"].(map[string]any)
	if !ok {
		return DefaultCondaEnvFile
	}
	switch env := flavor["env"].(type) {
	case string:
		if env != "" {
			return env
		}
	case map[string]any:
		if conda, ok := env["conda"].(string); ok && conda != "" {
			return conda
		}
	}
	return DefaultCondaEnvFile
}
