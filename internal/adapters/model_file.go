package adapters

import (
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"mlflow-algorithmia/internal/ports"
	"mlflow-algorithmia/internal/types"
)

const mlmodelFile = "MLmodel"

type ModelFileAdapter struct {
	Fs afero.Fs
}

func NewModelFileAdapter(fs afero.Fs) ModelFileAdapter {
	return ModelFileAdapter{Fs: fs}
}

func (a ModelFileAdapter) ReadMetadata(modelDir string) (types.MLModel, error) {
	path := filepath.Join(modelDir, mlmodelFile)
	data, err := afero.ReadFile(a.Fs, path)
	if err != nil {
		return types.MLModel{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("MLmodel file not found in " + modelDir).
			WithCause(err)
	}
	var model types.MLModel
	if err := yaml.Unmarshal(data, &model); err != nil {
		return types.MLModel{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse MLmodel yaml").
			WithCause(err)
	}
	if strings.TrimSpace(model.RunID) == "" {
		return types.MLModel{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("MLmodel run_id is empty")
	}
	return model, nil
}

var _ ports.ModelMetadataPort = ModelFileAdapter{}
