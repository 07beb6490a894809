package adapters

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	"github.com/go-git/go-git/v5/plumbing/transport/server"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"mlflow-algorithmia/internal/types"
)

var testSignature = &object.Signature{Name: "seed", Email: "seed@example.com", When: time.Unix(1600000000, 0)}

// useInProcessGitServer serves file:// remotes from the test process so no
// git binary is needed.
func useInProcessGitServer(t *testing.T) {
	t.Helper()
	previous := client.Protocols["file"]
	client.InstallProtocol("file", server.NewClient(server.DefaultLoader))
	t.Cleanup(func() { client.InstallProtocol("file", previous) })
}

// newAlgorithmRemote creates the bare repository the platform would host
// for user/name under base, optionally seeded with one commit.
func newAlgorithmRemote(t *testing.T, base string, user string, name string, seed bool) string {
	t.Helper()
	remotePath := filepath.Join(base, "git", user, name+".git")
	_, err := git.PlainInit(remotePath, true)
	require.NoError(t, err)
	if !seed {
		return remotePath
	}

	seedPath := filepath.Join(t.TempDir(), "seed")
	repo, err := git.PlainInit(seedPath, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(seedPath, "README.md"), []byte("# "+name+"\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("Initial commit", &git.CommitOptions{Author: testSignature})
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remotePath}})
	require.NoError(t, err)
	require.NoError(t, repo.Push(&git.PushOptions{RemoteName: "origin"}))
	return remotePath
}

func newTestGitAdapter(base string) GitRepoAdapter {
	adapter := NewGitRepoAdapter(types.Settings{
		Username:    "alice",
		APIKey:      "simKEY",
		GitEndpoint: "file://" + base,
	})
	adapter.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return adapter
}

func TestGitRepoAdapterRepoURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{name: "host only", endpoint: "git.algorithmia.com", want: "https://git.algorithmia.com/git/alice/wine.git"},
		{name: "trailing slash", endpoint: "git.algorithmia.com/", want: "https://git.algorithmia.com/git/alice/wine.git"},
		{name: "explicit scheme", endpoint: "http://localhost:8080", want: "http://localhost:8080/git/alice/wine.git"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewGitRepoAdapter(types.Settings{Username: "alice", GitEndpoint: tt.endpoint})
			if diff := cmp.Diff(tt.want, adapter.RepoURL("wine")); diff != "" {
				t.Fatalf("unexpected repo url (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGitRepoAdapterAuth(t *testing.T) {
	adapter := NewGitRepoAdapter(types.Settings{Username: "alice", APIKey: "simKEY"})
	require.NotNil(t, adapter.auth("https://git.algorithmia.com/git/alice/wine.git"))
	require.Nil(t, adapter.auth("file:///tmp/git/alice/wine.git"))
}

func TestGitRepoAdapterCloneCommitPush(t *testing.T) {
	useInProcessGitServer(t)
	base := t.TempDir()
	remotePath := newAlgorithmRemote(t, base, "alice", "wine", true)
	adapter := newTestGitAdapter(base)
	work := t.TempDir()

	repoPath, err := adapter.CloneOrPull(t.Context(), "wine", work)
	require.NoError(t, err)
	if diff := cmp.Diff(filepath.Join(work, "wine"), repoPath); diff != "" {
		t.Fatalf("unexpected repo path (-want +got):\n%s", diff)
	}
	_, err = os.Stat(filepath.Join(repoPath, "README.md"))
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(repoPath, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "src", "wine.py"), []byte("def apply(input):\n    return input\n"), 0o644))

	sha, err := adapter.CommitAndPush(t.Context(), repoPath, "Update - MLflow run_id: abc")
	require.NoError(t, err)

	remote, err := git.PlainOpen(remotePath)
	require.NoError(t, err)
	head, err := remote.Head()
	require.NoError(t, err)
	if diff := cmp.Diff(sha, head.Hash().String()); diff != "" {
		t.Fatalf("unexpected remote head (-want +got):\n%s", diff)
	}
	commit, err := remote.CommitObject(head.Hash())
	require.NoError(t, err)
	if diff := cmp.Diff("Update - MLflow run_id: abc", commit.Message); diff != "" {
		t.Fatalf("unexpected commit message (-want +got):\n%s", diff)
	}
	_, err = commit.File("src/wine.py")
	require.NoError(t, err)

	// A second update without changes still produces a commit.
	again, err := adapter.CommitAndPush(t.Context(), repoPath, "Update - MLflow run_id: def")
	require.NoError(t, err)
	require.NotEqual(t, sha, again)
}

func TestGitRepoAdapterPullsExistingCheckout(t *testing.T) {
	useInProcessGitServer(t)
	base := t.TempDir()
	newAlgorithmRemote(t, base, "alice", "wine", true)
	adapter := newTestGitAdapter(base)

	first := t.TempDir()
	firstPath, err := adapter.CloneOrPull(t.Context(), "wine", first)
	require.NoError(t, err)

	_, err = adapter.CloneOrPull(t.Context(), "wine", first)
	require.NoError(t, err)

	second := t.TempDir()
	secondPath, err := adapter.CloneOrPull(t.Context(), "wine", second)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(secondPath, "requirements.txt"), []byte("mlflow\n"), 0o644))
	_, err = adapter.CommitAndPush(t.Context(), secondPath, "Update - MLflow run_id: abc")
	require.NoError(t, err)

	_, err = adapter.CloneOrPull(t.Context(), "wine", first)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(firstPath, "requirements.txt"))
	require.NoError(t, err)
	if diff := cmp.Diff("mlflow\n", string(data)); diff != "" {
		t.Fatalf("unexpected pulled file (-want +got):\n%s", diff)
	}
}

func TestGitRepoAdapterEmptyRemote(t *testing.T) {
	useInProcessGitServer(t)
	base := t.TempDir()
	remotePath := newAlgorithmRemote(t, base, "alice", "fresh", false)
	adapter := newTestGitAdapter(base)

	repoPath, err := adapter.CloneOrPull(t.Context(), "fresh", t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "requirements.txt"), []byte("mlflow\n"), 0o644))

	sha, err := adapter.CommitAndPush(t.Context(), repoPath, "Update - MLflow run_id: abc")
	require.NoError(t, err)

	remote, err := git.PlainOpen(remotePath)
	require.NoError(t, err)
	head, err := remote.Head()
	require.NoError(t, err)
	if diff := cmp.Diff(sha, head.Hash().String()); diff != "" {
		t.Fatalf("unexpected remote head (-want +got):\n%s", diff)
	}
}
