package app

import (
	"context"
	"path/filepath"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"mlflow-algorithmia/internal/types"
)

const commitMessagePrefix = "Update - MLflow run_id: "

// CreateDeployment creates the algorithm on the platform and then runs a
// full update with the same request.
func (s Service) CreateDeployment(ctx context.Context, req DeployRequest) (DeployResult, error) {
	name, err := deploymentName(req.Name)
	if err != nil {
		return DeployResult{}, err
	}
	settings, err := s.settingsFor(req.Config)
	if err != nil {
		return DeployResult{}, err
	}
	logger := log.Ctx(ctx).With().Str("deployment", name).Logger()
	logger.Info().Msg("creating algorithm")
	details := types.AlgorithmDetails{
		Label:   name,
		Summary: settings.Summary,
		Tagline: settings.Tagline,
	}
	if err := s.Platform.CreateAlgorithm(ctx, name, details, settings.Algorithm); err != nil {
		return DeployResult{}, err
	}
	logger.Info().Msg("algorithm created")
	return s.UpdateDeployment(ctx, req)
}

// UpdateDeployment uploads a new bundle of the model, regenerates the
// algorithm source and pushes it so the platform builds a new version.
func (s Service) UpdateDeployment(ctx context.Context, req DeployRequest) (DeployResult, error) {
	name, err := deploymentName(req.Name)
	if err != nil {
		return DeployResult{}, err
	}
	modelDir, err := localModelDir(req.ModelURI)
	if err != nil {
		return DeployResult{}, err
	}
	settings, err := s.settingsFor(req.Config)
	if err != nil {
		return DeployResult{}, err
	}
	start := s.now()
	logger := log.Ctx(ctx).With().Str("deployment", name).Logger()

	model, err := s.Models.ReadMetadata(modelDir)
	if err != nil {
		return DeployResult{}, err
	}
	assert.NotEmpty(ctx, model.RunID, "run_id must be set")

	if err := s.fs().MkdirAll(settings.TmpDir, 0o750); err != nil {
		return DeployResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create temp directory " + settings.TmpDir).
			WithCause(err)
	}

	logger.Info().Str("run_id", model.RunID).Msg("creating model bundle")
	bundlePath, err := s.Bundler.CreateBundle(ctx, modelDir, settings.TmpDir, model.BundleName())
	if err != nil {
		return DeployResult{}, err
	}
	logger.Info().Msg("uploading model bundle")
	remoteBundle, err := s.uploadBundle(ctx, settings, name, bundlePath)
	if err != nil {
		return DeployResult{}, err
	}
	logger.Info().Str("bundle", remoteBundle).Msg("model bundle uploaded")

	logger.Info().Str("dir", settings.TmpDir).Msg("fetching algorithm source")
	repoPath, err := s.SourceRepo.CloneOrPull(ctx, name, settings.TmpDir)
	if err != nil {
		return DeployResult{}, err
	}
	env, err := s.CondaEnvs.Load(filepath.Join(modelDir, model.CondaEnvFile()))
	if err != nil {
		return DeployResult{}, err
	}
	requirements, err := normalizerFor(settings).RequirementStrings(ctx, env)
	if err != nil {
		return DeployResult{}, err
	}
	written, err := s.Renderer.RenderSource(repoPath, types.SourceValues{
		AlgorithmName: name,
		BundleFile:    remoteBundle,
		RunID:         model.RunID,
		Dependencies:  requirements,
	})
	if err != nil {
		return DeployResult{}, err
	}
	logger.Debug().Strs("files", written).Msg("algorithm source rendered")

	logger.Info().Msg("updating algorithm source and building model")
	message := commitMessagePrefix + model.RunID
	commit, err := s.SourceRepo.CommitAndPush(ctx, repoPath, message)
	if err != nil {
		return DeployResult{}, err
	}
	logger.Info().Str("commit", commit).Msg("algorithm repo updated: " + message)

	builds, err := s.Platform.ListBuilds(ctx, name)
	if err != nil {
		return DeployResult{}, err
	}
	if len(builds) == 0 {
		return DeployResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no builds found for algorithm " + settings.AlgorithmPath(name))
	}
	version := builds[0].CommitSHA
	logger.Info().
		Str("version", version).
		Dur("elapsed", s.now().Sub(start)).
		Msg("new model version ready")
	return DeployResult{Name: name, Flavor: types.FlavorAlgorithmia, Version: version}, nil
}

// uploadBundle stores the bundle under data://<user>/<name>/, creating the
// directory on first use, and returns the remote path.
func (s Service) uploadBundle(ctx context.Context, settings types.Settings, name string, bundlePath string) (string, error) {
	dataDir := settings.DataDir(name)
	exists, err := s.Platform.DirExists(ctx, dataDir)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := s.Platform.CreateDir(ctx, dataDir); err != nil {
			return "", err
		}
	}
	remote := dataDir + "/" + filepath.Base(bundlePath)
	if err := s.Platform.PutFile(ctx, remote, bundlePath); err != nil {
		return "", err
	}
	return remote, nil
}
