package adapters

import (
	"errors"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"mlflow-algorithmia/internal/ports"
	"mlflow-algorithmia/internal/types"
)

type CondaFileAdapter struct {
	Fs afero.Fs
}

func NewCondaFileAdapter(fs afero.Fs) CondaFileAdapter {
	return CondaFileAdapter{Fs: fs}
}

func (a CondaFileAdapter) Load(path string) (types.CondaEnvironment, error) {
	data, err := afero.ReadFile(a.Fs, path)
	if err != nil {
		return types.CondaEnvironment{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("conda environment file not found").
			WithCause(err)
	}
	return a.Parse(data)
}

func (a CondaFileAdapter) Parse(data []byte) (types.CondaEnvironment, error) {
	var env types.CondaEnvironment
	if err := yaml.Unmarshal(data, &env); err != nil {
		var malformed *types.MalformedDependencyError
		if errors.As(err, &malformed) {
			return types.CondaEnvironment{}, malformed
		}
		return types.CondaEnvironment{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse conda environment yaml").
			WithCause(err)
	}
	if env.Channels == nil {
		env.Channels = []string{}
	}
	return env, nil
}

var _ ports.CondaEnvPort = CondaFileAdapter{}
