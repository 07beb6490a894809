package adapters

import (
	"bytes"
	"embed"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"

	"mlflow-algorithmia/internal/ports"
	"mlflow-algorithmia/internal/types"
)

//go:embed templates/*.tmpl
var sourceTemplates embed.FS

type sourceFile struct {
	template string
	target   func(values types.SourceValues) string
}

// sourceFiles lists the rendered files in write order.
var sourceFiles = []sourceFile{
	{template: "gitignore_repo.tmpl", target: fixedTarget(".gitignore")},
	{template: "requirements.txt.tmpl", target: fixedTarget("requirements.txt")},
	{template: "entrypoint.py.tmpl", target: func(values types.SourceValues) string {
		return filepath.Join("src", values.AlgorithmName+".py")
	}},
	{template: "algorithmia_utils.py.tmpl", target: fixedTarget(filepath.Join("src", "algorithmia_utils.py"))},
	{template: "mlflow_wrapper.py.tmpl", target: fixedTarget(filepath.Join("src", "mlflow_wrapper.py"))},
	{template: "gitignore_all.tmpl", target: fixedTarget(filepath.Join("models", ".gitignore"))},
}

func fixedTarget(path string) func(types.SourceValues) string {
	return func(types.SourceValues) string { return path }
}

type SourceRendererAdapter struct {
	Fs afero.Fs
}

func NewSourceRendererAdapter(fs afero.Fs) SourceRendererAdapter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return SourceRendererAdapter{Fs: fs}
}

// RenderSource writes the algorithm source tree into repoPath and returns
// the written paths relative to it.
func (a SourceRendererAdapter) RenderSource(repoPath string, values types.SourceValues) ([]string, error) {
	if strings.TrimSpace(values.AlgorithmName) == "" || strings.ContainsAny(values.AlgorithmName, `/\`) {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid algorithm name: " + values.AlgorithmName)
	}
	written := make([]string, 0, len(sourceFiles))
	for _, file := range sourceFiles {
		content, err := renderTemplate(file.template, values)
		if err != nil {
			return nil, err
		}
		rel := file.target(values)
		path := filepath.Join(repoPath, rel)
		if err := a.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, renderWriteError(rel, err)
		}
		if err := afero.WriteFile(a.Fs, path, content, 0o644); err != nil {
			return nil, renderWriteError(rel, err)
		}
		written = append(written, rel)
	}
	return written, nil
}

func renderTemplate(name string, values types.SourceValues) ([]byte, error) {
	raw, err := sourceTemplates.ReadFile("templates/" + name)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("missing source template " + name).
			WithCause(err)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(string(raw))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse source template " + name).
			WithCause(err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to render source template " + name).
			WithCause(err)
	}
	if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func renderWriteError(rel string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to write " + rel).
		WithCause(err)
}

var _ ports.SourceRendererPort = SourceRendererAdapter{}
