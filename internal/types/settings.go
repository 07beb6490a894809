package types

import "time"

// Settings is the process configuration for talking to the serving
// platform. It is resolved once at startup and passed by value.
type Settings struct {
	APIKey             string
	Username           string
	APIEndpoint        string
	GitEndpoint        string
	Tagline            string
	Summary            string
	TmpDir             string
	HTTPTimeout        time.Duration
	LegacyRequirements bool
	StrictVersions     bool
	ExcludePackages    []string
	Algorithm          AlgorithmSettings
}

// DefaultAlgorithmSettings mirrors what the platform expects for a
// python model-serving algorithm.
func DefaultAlgorithmSettings() AlgorithmSettings {
	return AlgorithmSettings{
		PackageSet:       "python37",
		SourceVisibility: "closed",
		License:          "apl",
		NetworkAccess:    "full",
		PipelineEnabled:  true,
	}
}

// AlgorithmPath is "<username>/<name>".
func (s Settings) AlgorithmPath(name string) string {
	return s.Username + "/" + name
}

// DataDir is the hosted-data directory that holds a deployment's bundles.
func (s Settings) DataDir(name string) string {
	return "data://" + s.AlgorithmPath(name)
}
