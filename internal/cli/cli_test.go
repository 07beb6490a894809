package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlflow-algorithmia/internal/types"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{
		"create", "update", "delete", "get",
		"list", "predict", "requirements", "run-local", "target-help",
	}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, root.PersistentFlags().Lookup("env-file"))
}

func TestDeployCommandFlags(t *testing.T) {
	for _, cmd := range []*cobra.Command{newCreateCommand(), newUpdateCommand()} {
		for _, name := range []string{"name", "model-uri", "flavor", "deployment-config"} {
			assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s on %s", name, cmd.Name())
		}
		assert.NotNil(t, cmd.Flags().ShorthandLookup("C"))
		assert.NotNil(t, cmd.Flags().ShorthandLookup("m"))
	}
}

func TestPredictCommandFlags(t *testing.T) {
	cmd := newPredictCommand()
	for _, name := range []string{"name", "input-path", "output-path"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestRequirementsCommandFlags(t *testing.T) {
	cmd := newRequirementsCommand()
	for _, name := range []string{"model-uri", "conda-file", "deployment-config", "output", "json"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

// ---------- Command execution tests ----------

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRequirementsCommand(t *testing.T) {
	dir := t.TempDir()
	conda := "name: env\ndependencies:\n  - python=3.8\n  - scikit-learn=0.23.2\n  - pip:\n    - mlflow\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conda.yaml"), []byte(conda), 0o644))

	out, err := executeRoot(t, "requirements", "-m", dir)
	require.NoError(t, err)
	assert.Equal(t, "scikit-learn==0.23.2\nmlflow\n", out)

	target := filepath.Join(t.TempDir(), "requirements.txt")
	_, err = executeRoot(t, "requirements", "--conda-file", filepath.Join(dir, "conda.yaml"), "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "scikit-learn==0.23.2\nmlflow\n", string(data))

	out, err = executeRoot(t, "requirements", "-m", dir, "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"env","channels":[],"requirements":["scikit-learn==0.23.2","mlflow"]}`, out)
}

func TestRequirementsCommandMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conda.yaml"), []byte("dependencies:\n  - 'numpy>>1'\n"), 0o644))

	_, err := executeRoot(t, "requirements", "-m", dir)
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeForError(err))
}

func TestStaticCommands(t *testing.T) {
	out, err := executeRoot(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "To see Algorithmia deployments go to the Algorithmia homepage\n", out)

	out, err = executeRoot(t, "target-help")
	require.NoError(t, err)
	assert.Equal(t, "Deploy MLflow models to Algorithmia\n", out)
}

func TestPlatformCommandsRequireCredentials(t *testing.T) {
	t.Setenv("ALGORITHMIA_API_KEY", "")
	t.Setenv("ALGORITHMIA_USERNAME", "")

	_, err := executeRoot(t, "get", "--name", "wine")
	var missing *types.MissingEnvironmentValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ALGORITHMIA_API_KEY", missing.Name)
	assert.Equal(t, 2, exitCodeForError(err))
}

func TestDeployCommandRejectsBadConfig(t *testing.T) {
	_, err := executeRoot(t, "update", "--name", "wine", "-m", t.TempDir(), "-C", "no-equals-sign")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStringKeepsFlagDefault(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("model-uri", "", "test flag")
	assert.Equal(t, "./model", resolveString(cmd, "./model", "unset_test_key", "model-uri"))
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")
}

func TestFlagChangedAfterSet(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

func TestParseDeploymentConfig(t *testing.T) {
	got, err := parseDeploymentConfig([]string{"tagline=Wine model", "summary = a=b ", "tagline=Override"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tagline": "Override", "summary": "a=b"}, got)

	got, err = parseDeploymentConfig(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"tagline", "=value"} {
		_, err = parseDeploymentConfig([]string{bad})
		require.Error(t, err)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	}
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name: "already exists",
			err: errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg("algorithm already exists"),
			expected: 2,
		},
		{
			name:     "malformed dependency",
			err:      &types.MalformedDependencyError{Raw: "numpy>>1"},
			expected: 2,
		},
		{
			name:     "missing environment value",
			err:      &types.MissingEnvironmentValueError{Name: "ALGORITHMIA_USERNAME"},
			expected: 2,
		},
		{
			name: "permission denied",
			err: errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("authorization required"),
			expected: 3,
		},
		{
			name: "failed precondition",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("build still running"),
			expected: 4,
		},
		{
			name: "not found",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("algorithm not found"),
			expected: 5,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "errbuilder with msg",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("something broke"),
			expected: "something broke",
		},
		{
			name:     "typed error",
			err:      &types.MissingEnvironmentValueError{Name: "ALGORITHMIA_API_KEY"},
			expected: "environment variable ALGORITHMIA_API_KEY is not set",
		},
		{
			name:     "plain error",
			err:      assert.AnError,
			expected: assert.AnError.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
