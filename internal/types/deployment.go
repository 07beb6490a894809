package types

// AlgorithmDetails is the descriptive part of an algorithm on the
// serving platform.
type AlgorithmDetails struct {
	Label   string `json:"label"`
	Summary string `json:"summary,omitempty"`
	Tagline string `json:"tagline,omitempty"`
}

// AlgorithmSettings is the runtime configuration requested when an
// algorithm is created.
type AlgorithmSettings struct {
	PackageSet       string `json:"package_set"`
	SourceVisibility string `json:"source_visibility"`
	License          string `json:"license"`
	NetworkAccess    string `json:"network_access"`
	PipelineEnabled  bool   `json:"pipeline_enabled"`
}

type Deployment struct {
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	URL      string `json:"url,omitempty"`
	Flavor   string `json:"flavor,omitempty"`
	Version  string `json:"version,omitempty"`
}

type Build struct {
	BuildID    string `json:"build_id"`
	CommitSHA  string `json:"commit_sha"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// SourceValues are the values rendered into the algorithm source files.
type SourceValues struct {
	AlgorithmName string
	BundleFile    string
	RunID         string
	Dependencies  []string
}
