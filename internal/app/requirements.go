package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"mlflow-algorithmia/internal/adapters"
	"mlflow-algorithmia/internal/ports"
	"mlflow-algorithmia/internal/types"
)

// Requirements runs the dependency normalizer on its own, either on an
// explicit conda file or on the environment referenced by a model
// directory. It needs no platform credentials.
func (s Service) Requirements(ctx context.Context, req RequirementsRequest) (RequirementsResult, error) {
	settings, err := s.settingsFor(req.Config)
	if err != nil {
		return RequirementsResult{}, err
	}
	envPath := strings.TrimSpace(req.EnvFile)
	if envPath == "" {
		modelDir, err := localModelDir(req.ModelURI)
		if err != nil {
			return RequirementsResult{}, err
		}
		envPath = s.condaEnvPath(modelDir)
	}
	env, err := s.CondaEnvs.Load(envPath)
	if err != nil {
		return RequirementsResult{}, err
	}
	requirements, err := normalizerFor(settings).RequirementStrings(ctx, env)
	if err != nil {
		return RequirementsResult{}, err
	}
	result := RequirementsResult{
		Name:         env.Name,
		Channels:     env.Channels,
		Requirements: requirements,
	}
	if output := strings.TrimSpace(req.Output); output != "" {
		if err := s.output().WriteRequirements(output, requirements); err != nil {
			return RequirementsResult{}, err
		}
		log.Ctx(ctx).Info().Str("path", output).Int("count", len(requirements)).Msg("requirements written")
		result.Output = output
	}
	return result, nil
}

func (s Service) output() ports.OutputPort {
	if s.Output == nil {
		return adapters.NewOutputFileAdapter(s.fs())
	}
	return s.Output
}

// condaEnvPath prefers the environment file named by the MLmodel file and
// falls back to conda.yaml when the model has no readable metadata.
func (s Service) condaEnvPath(modelDir string) string {
	if s.Models != nil {
		if model, err := s.Models.ReadMetadata(modelDir); err == nil {
			return filepath.Join(modelDir, model.CondaEnvFile())
		}
	}
	return filepath.Join(modelDir, types.DefaultCondaEnvFile)
}
