package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog/log"

	"mlflow-algorithmia/internal/ports"
	"mlflow-algorithmia/internal/types"
)

const (
	defaultRemoteName  = "origin"
	defaultAuthorName  = "mlflow-algorithmia"
	defaultAuthorEmail = "mlflow-algorithmia@users.noreply.algorithmia.com"
)

// GitRepoAdapter manages the local checkout of an algorithm's source
// repository on the platform git server.
type GitRepoAdapter struct {
	Settings    types.Settings
	AuthorName  string
	AuthorEmail string
	Now         func() time.Time
}

func NewGitRepoAdapter(settings types.Settings) GitRepoAdapter {
	return GitRepoAdapter{
		Settings:    settings,
		AuthorName:  defaultAuthorName,
		AuthorEmail: defaultAuthorEmail,
		Now:         time.Now,
	}
}

// RepoURL is the clone URL of the algorithm. A git endpoint that already
// carries a scheme is used as the base URL verbatim.
func (a GitRepoAdapter) RepoURL(name string) string {
	base := strings.TrimRight(a.Settings.GitEndpoint, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return base + "/git/" + a.Settings.Username + "/" + name + ".git"
}

func (a GitRepoAdapter) CloneOrPull(ctx context.Context, name string, dir string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("algorithm name is required")
	}
	repoPath := filepath.Join(dir, name)
	url := a.RepoURL(name)
	logger := log.Ctx(ctx).With().Str("repo", repoPath).Logger()

	if _, err := os.Stat(filepath.Join(repoPath, git.GitDirName)); err == nil {
		repo, err := git.PlainOpen(repoPath)
		if err != nil {
			return "", gitError("failed to open algorithm repository", err)
		}
		wt, err := repo.Worktree()
		if err != nil {
			return "", gitError("failed to open algorithm worktree", err)
		}
		err = wt.PullContext(ctx, &git.PullOptions{RemoteName: defaultRemoteName, Auth: a.auth(url)})
		switch {
		case err == nil:
			logger.Debug().Msg("algorithm repository pulled")
		case errors.Is(err, git.NoErrAlreadyUpToDate), errors.Is(err, transport.ErrEmptyRemoteRepository):
			logger.Debug().Msg("algorithm repository already up to date")
		default:
			return "", gitError("failed to pull algorithm repository", err)
		}
		return repoPath, nil
	}

	_, err := git.PlainCloneContext(ctx, repoPath, false, &git.CloneOptions{
		URL:        url,
		RemoteName: defaultRemoteName,
		Auth:       a.auth(url),
	})
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return repoPath, a.initEmpty(repoPath, url)
	}
	if err != nil {
		return "", gitError("failed to clone algorithm repository", err)
	}
	logger.Debug().Str("url", url).Msg("algorithm repository cloned")
	return repoPath, nil
}

// initEmpty prepares a local repository for a remote without any commits.
func (a GitRepoAdapter) initEmpty(repoPath string, url string) error {
	if err := os.RemoveAll(repoPath); err != nil {
		return gitError("failed to reset algorithm repository", err)
	}
	repo, err := git.PlainInit(repoPath, false)
	if err != nil {
		return gitError("failed to init algorithm repository", err)
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: defaultRemoteName, URLs: []string{url}})
	if err != nil {
		return gitError("failed to configure algorithm remote", err)
	}
	return nil
}

func (a GitRepoAdapter) CommitAndPush(ctx context.Context, repoPath string, message string) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", gitError("failed to open algorithm repository", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", gitError("failed to open algorithm worktree", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", gitError("failed to stage algorithm sources", err)
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	// Every update commits, even without changes, so the platform starts a build.
	hash, err := wt.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  a.AuthorName,
			Email: a.AuthorEmail,
			When:  now(),
		},
	})
	if err != nil {
		return "", gitError("failed to commit algorithm sources", err)
	}
	remote, err := repo.Remote(defaultRemoteName)
	if err != nil {
		return "", gitError("algorithm repository has no origin remote", err)
	}
	var url string
	if urls := remote.Config().URLs; len(urls) > 0 {
		url = urls[0]
	}
	err = repo.PushContext(ctx, &git.PushOptions{RemoteName: defaultRemoteName, Auth: a.auth(url)})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", gitError("failed to push algorithm sources", err)
	}
	log.Ctx(ctx).Debug().Str("commit", hash.String()).Msg("algorithm sources pushed")
	return hash.String(), nil
}

// auth returns basic credentials for http remotes and nothing otherwise.
func (a GitRepoAdapter) auth(url string) transport.AuthMethod {
	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		return &githttp.BasicAuth{Username: a.Settings.Username, Password: a.Settings.APIKey}
	}
	return nil
}

func gitError(msg string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(err)
}

var _ ports.SourceRepoPort = GitRepoAdapter{}
