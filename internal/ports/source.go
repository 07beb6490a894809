package ports

import (
	"context"

	"mlflow-algorithmia/internal/types"
)

type SourceRepoPort interface {
	// CloneOrPull makes the algorithm repository available under dir and
	// returns its path.
	CloneOrPull(ctx context.Context, name string, dir string) (string, error)
	// CommitAndPush stages every change, commits and pushes to origin. It
	// returns the new commit hash.
	CommitAndPush(ctx context.Context, repoPath string, message string) (string, error)
}

type SourceRendererPort interface {
	RenderSource(repoPath string, values types.SourceValues) ([]string, error)
}
