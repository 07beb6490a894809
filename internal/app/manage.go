package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"mlflow-algorithmia/internal/types"
)

const (
	listDeploymentsHint = "To see Algorithmia deployments go to the Algorithmia homepage"
	runLocalHint        = "Use `mlflow models serve` to run this model locally"
	targetHelpText      = "Deploy MLflow models to Algorithmia"
)

// DeleteDeployment removes the local temp directory and then the
// algorithm itself.
func (s Service) DeleteDeployment(ctx context.Context, req DeleteRequest) error {
	name, err := deploymentName(req.Name)
	if err != nil {
		return err
	}
	logger := log.Ctx(ctx).With().Str("deployment", name).Logger()
	if tmpDir := strings.TrimSpace(s.Settings.TmpDir); tmpDir != "" {
		exists, err := afero.DirExists(s.fs(), tmpDir)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to inspect temp directory").
				WithCause(err)
		}
		if exists {
			if err := s.fs().RemoveAll(tmpDir); err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to remove temp directory " + tmpDir).
					WithCause(err)
			}
			logger.Debug().Str("dir", tmpDir).Msg("temp directory removed")
		}
	}
	logger.Info().Msg("deleting deployment")
	if err := s.Platform.DeleteAlgorithm(ctx, name); err != nil {
		return err
	}
	logger.Info().Msg("deployment deleted")
	return nil
}

func (s Service) GetDeployment(ctx context.Context, req GetRequest) (types.Deployment, error) {
	name, err := deploymentName(req.Name)
	if err != nil {
		return types.Deployment{}, err
	}
	return s.Platform.GetAlgorithm(ctx, name)
}

// ListDeployments has no platform listing to call; it points the user at
// the web console instead.
func (s Service) ListDeployments(_ context.Context) string {
	return listDeploymentsHint
}

// Predict sends a JSON document, normally a pandas DataFrame in "split"
// orientation, to the deployed algorithm and returns its result.
func (s Service) Predict(ctx context.Context, req PredictRequest) (PredictResult, error) {
	name, err := deploymentName(req.Name)
	if err != nil {
		return PredictResult{}, err
	}
	if len(strings.TrimSpace(string(req.Input))) == 0 || !json.Valid(req.Input) {
		return PredictResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("prediction input must be a JSON document")
	}
	result, err := s.Platform.Pipe(ctx, name, req.Input)
	if err != nil {
		return PredictResult{}, err
	}
	return PredictResult{Result: result}, nil
}

func (s Service) RunLocal(ctx context.Context, req RunLocalRequest) error {
	log.Ctx(ctx).Info().Str("deployment", req.Name).Msg(runLocalHint)
	return nil
}

func (s Service) TargetHelp() string {
	return targetHelpText
}
