package ports

import (
	"context"
	"encoding/json"

	"mlflow-algorithmia/internal/types"
)

// PlatformPort is the subset of the model-serving platform API that
// deployments use. Data paths use the "data://<user>/<collection>" form.
type PlatformPort interface {
	CreateAlgorithm(ctx context.Context, name string, details types.AlgorithmDetails, settings types.AlgorithmSettings) error
	GetAlgorithm(ctx context.Context, name string) (types.Deployment, error)
	DeleteAlgorithm(ctx context.Context, name string) error
	ListBuilds(ctx context.Context, name string) ([]types.Build, error)
	DirExists(ctx context.Context, dataDir string) (bool, error)
	CreateDir(ctx context.Context, dataDir string) error
	PutFile(ctx context.Context, remotePath string, localPath string) error
	Pipe(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error)
}
