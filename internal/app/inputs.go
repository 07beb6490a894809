package app

import (
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

var deploymentNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// deploymentName validates an algorithm name. The platform only accepts
// names made of letters, digits and underscores that start with a letter.
func deploymentName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("deployment name is required")
	}
	if !deploymentNamePattern.MatchString(name) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid deployment name " + name + ": use letters, digits and underscores, starting with a letter")
	}
	return name, nil
}

// localModelDir resolves a model URI to a local directory. Only plain
// paths and file:// URIs are supported.
func localModelDir(modelURI string) (string, error) {
	uri := strings.TrimSpace(modelURI)
	if uri == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("model uri is required")
	}
	if rest, ok := strings.CutPrefix(uri, "file://"); ok {
		return rest, nil
	}
	if scheme, _, ok := strings.Cut(uri, ":/"); ok && !strings.ContainsAny(scheme, `/\.`) && len(scheme) > 1 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported model uri " + uri + ": download the model and pass its local directory")
	}
	return uri, nil
}
