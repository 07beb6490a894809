package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePipName(t *testing.T) {
	tests := map[string]string{
		"numpy":            "numpy",
		"Scikit_Learn":     "scikit-learn",
		"zope.interface":   "zope-interface",
		"  PyYAML ":        "pyyaml",
		"ruamel.yaml.clib": "ruamel-yaml-clib",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePipName(in), "input %q", in)
	}
}

func TestHTTPStatusErrorWithBody(t *testing.T) {
	err := HTTPStatusErrorWithBody(404, "https://api.algorithmia.com/v1/algorithms/alice/wine", `{"error":{"message":"not found"}}`)
	assert.EqualError(t, err, `status=404 url=https://api.algorithmia.com/v1/algorithms/alice/wine response={"error":{"message":"not found"}}`)
}
