package app

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"mlflow-algorithmia/internal/adapters"
	"mlflow-algorithmia/internal/types"
)

// stubPlatform satisfies ports.PlatformPort and records every call as a
// short "method arg" string.
type stubPlatform struct {
	calls      []string
	createErr  error
	deleteErr  error
	dirExists  bool
	builds     []types.Build
	deployment types.Deployment
	details    types.AlgorithmDetails
	settings   types.AlgorithmSettings
	pipeResult json.RawMessage
	pipeInput  json.RawMessage
}

func (p *stubPlatform) CreateAlgorithm(_ context.Context, name string, details types.AlgorithmDetails, settings types.AlgorithmSettings) error {
	p.calls = append(p.calls, "create "+name)
	p.details = details
	p.settings = settings
	return p.createErr
}

func (p *stubPlatform) GetAlgorithm(_ context.Context, name string) (types.Deployment, error) {
	p.calls = append(p.calls, "get "+name)
	return p.deployment, nil
}

func (p *stubPlatform) DeleteAlgorithm(_ context.Context, name string) error {
	p.calls = append(p.calls, "delete "+name)
	return p.deleteErr
}

func (p *stubPlatform) ListBuilds(_ context.Context, name string) ([]types.Build, error) {
	p.calls = append(p.calls, "builds "+name)
	return p.builds, nil
}

func (p *stubPlatform) DirExists(_ context.Context, dataDir string) (bool, error) {
	p.calls = append(p.calls, "exists "+dataDir)
	return p.dirExists, nil
}

func (p *stubPlatform) CreateDir(_ context.Context, dataDir string) error {
	p.calls = append(p.calls, "mkdir "+dataDir)
	return nil
}

func (p *stubPlatform) PutFile(_ context.Context, remotePath string, localPath string) error {
	p.calls = append(p.calls, "put "+remotePath+" "+localPath)
	return nil
}

func (p *stubPlatform) Pipe(_ context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	p.calls = append(p.calls, "pipe "+name)
	p.pipeInput = input
	return p.pipeResult, nil
}

// stubSourceRepo satisfies ports.SourceRepoPort without touching git.
type stubSourceRepo struct {
	calls []string
}

func (r *stubSourceRepo) CloneOrPull(_ context.Context, name string, dir string) (string, error) {
	r.calls = append(r.calls, "clone "+name)
	return filepath.Join(dir, name), nil
}

func (r *stubSourceRepo) CommitAndPush(_ context.Context, repoPath string, message string) (string, error) {
	r.calls = append(r.calls, "push "+message)
	return "0123abcd", nil
}

const (
	testRunID   = "8b2b3f4e1c7a4d2e"
	testMLmodel = "artifact_path: model\nrun_id: " + testRunID + "\nflavors:\n  python_function:\n    env: conda.yaml\n"
	testConda   = `name: mlflow-env
channels:
  - defaults
dependencies:
  - python=3.8.2
  - scikit-learn=0.23.2
  - tensorflow>=2.0
  - pytorch>1.0,<2.0
  - pip:
    - mlflow
    - cloudpickle==1.6.0
`
)

func newTestService(fs afero.Fs, platform *stubPlatform, repo *stubSourceRepo) Service {
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return Service{
		Settings: types.Settings{
			APIKey:    "simKEY",
			Username:  "alice",
			Tagline:   "Mlflow deployment",
			Summary:   "Mlflow deployment",
			TmpDir:    "/tmp/algorithmia",
			Algorithm: types.DefaultAlgorithmSettings(),
		},
		Fs:         fs,
		Models:     adapters.NewModelFileAdapter(fs),
		CondaEnvs:  adapters.NewCondaFileAdapter(fs),
		Bundler:    adapters.NewTarGzBundleAdapter(fs),
		Platform:   platform,
		SourceRepo: repo,
		Renderer:   adapters.NewSourceRendererAdapter(fs),
		Clock:      func() time.Time { return clock },
	}
}

func writeTestModel(fs afero.Fs, dir string) error {
	if err := afero.WriteFile(fs, filepath.Join(dir, "MLmodel"), []byte(testMLmodel), 0o644); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, "conda.yaml"), []byte(testConda), 0o644); err != nil {
		return err
	}
	return afero.WriteFile(fs, filepath.Join(dir, "model.pkl"), []byte("pickle"), 0o644)
}
