package types

// MLModel holds the fields of an MLflow MLmodel file that deployments use.
type MLModel struct {
	RunID          string         `yaml:"run_id"`
	ArtifactPath   string         `yaml:"artifact_path,omitempty"`
	UTCTimeCreated string         `yaml:"utc_time_created,omitempty"`
	Flavors        map[string]any `yaml:"flavors,omitempty"`
}

// BundleName is the archive base name used for a run, without extension.
func (m MLModel) BundleName() string {
	return "model-" + m.RunID
}
