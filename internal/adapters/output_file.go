package adapters

import (
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"

	"mlflow-algorithmia/internal/ports"
)

type OutputFileAdapter struct {
	Fs afero.Fs
}

func NewOutputFileAdapter(fs afero.Fs) OutputFileAdapter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return OutputFileAdapter{Fs: fs}
}

// WriteRequirements writes one requirement per line, creating the parent
// directory when needed. An empty list produces an empty file.
func (a OutputFileAdapter) WriteRequirements(path string, requirements []string) error {
	if err := a.ensureParent(path); err != nil {
		return err
	}
	content := strings.Join(requirements, "\n")
	if content != "" {
		content += "\n"
	}
	if err := afero.WriteFile(a.Fs, path, []byte(content), 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write requirements file").
			WithCause(err)
	}
	return nil
}

func (a OutputFileAdapter) ensureParent(path string) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is empty")
	}
	if err := a.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return nil
}

var _ ports.OutputPort = OutputFileAdapter{}
