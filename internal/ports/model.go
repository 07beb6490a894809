package ports

import (
	"context"

	"mlflow-algorithmia/internal/types"
)

type ModelMetadataPort interface {
	ReadMetadata(modelDir string) (types.MLModel, error)
}

type CondaEnvPort interface {
	Load(path string) (types.CondaEnvironment, error)
	Parse(data []byte) (types.CondaEnvironment, error)
}

// BundlePort packages a model directory into a single archive and returns
// the archive path.
type BundlePort interface {
	CreateBundle(ctx context.Context, modelDir string, destDir string, name string) (string, error)
}
