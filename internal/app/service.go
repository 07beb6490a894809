package app

import (
	"time"

	"github.com/spf13/afero"

	"mlflow-algorithmia/internal/adapters"
	"mlflow-algorithmia/internal/core"
	"mlflow-algorithmia/internal/policies"
	"mlflow-algorithmia/internal/ports"
	"mlflow-algorithmia/internal/types"
)

type Service struct {
	Settings   types.Settings
	Fs         afero.Fs
	Models     ports.ModelMetadataPort
	CondaEnvs  ports.CondaEnvPort
	Bundler    ports.BundlePort
	Platform   ports.PlatformPort
	SourceRepo ports.SourceRepoPort
	Renderer   ports.SourceRendererPort
	Output     ports.OutputPort
	Clock      func() time.Time
}

// NewService wires the production adapters. The platform client is built
// once here and shared by every operation of the service.
func NewService(settings types.Settings) Service {
	fs := afero.NewOsFs()
	return Service{
		Settings:   settings,
		Fs:         fs,
		Models:     adapters.NewModelFileAdapter(fs),
		CondaEnvs:  adapters.NewCondaFileAdapter(fs),
		Bundler:    adapters.NewTarGzBundleAdapter(fs),
		Platform:   adapters.NewAlgorithmiaClient(settings),
		SourceRepo: adapters.NewGitRepoAdapter(settings),
		Renderer:   adapters.NewSourceRendererAdapter(fs),
		Output:     adapters.NewOutputFileAdapter(fs),
		Clock:      time.Now,
	}
}

func (s Service) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

// settingsFor returns the service settings with per-deployment config
// applied. The service's own settings are never modified.
func (s Service) settingsFor(config map[string]string) (types.Settings, error) {
	if len(config) == 0 {
		return s.Settings, nil
	}
	return adapters.ApplyOverrides(s.Settings, config)
}

func normalizerFor(settings types.Settings) core.DependencyNormalizer {
	return core.NewDependencyNormalizer(
		core.WithLegacyFormatting(settings.LegacyRequirements),
		core.WithStrictVersions(settings.StrictVersions),
		core.WithExclusions(policies.NewExclusionPolicy(settings.ExcludePackages...)),
	)
}
