package vcs

import (
	"context"

	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/model"
)

// Adapter defines the repository facts gitopen reads from a working tree.
// Git CLI is the default adapter; go-git reads the repository in process.
type Adapter interface {
	Name() string
	IsRepo(ctx context.Context, dir string) (bool, error)
	Remotes(ctx context.Context, dir string) ([]model.Remote, error)
	RemoteURL(ctx context.Context, dir, remote string) (string, error)
	CurrentBranch(ctx context.Context, dir string) (string, error)
	DefaultBranch(ctx context.Context, dir, remote, fallback string) (string, error)
}

// GitAdapter implements Adapter using the git CLI via gitx.
type GitAdapter struct {
	Runner gitx.Runner
}

func NewGitAdapter(runner gitx.Runner) *GitAdapter {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &GitAdapter{Runner: runner}
}

func (g *GitAdapter) Name() string { return "git" }

func (g *GitAdapter) IsRepo(ctx context.Context, dir string) (bool, error) {
	return gitx.IsRepo(ctx, g.Runner, dir)
}

func (g *GitAdapter) Remotes(ctx context.Context, dir string) ([]model.Remote, error) {
	return gitx.Remotes(ctx, g.Runner, dir)
}

func (g *GitAdapter) RemoteURL(ctx context.Context, dir, remote string) (string, error) {
	return gitx.RemoteURL(ctx, g.Runner, dir, remote)
}

func (g *GitAdapter) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return gitx.CurrentBranch(ctx, g.Runner, dir)
}

func (g *GitAdapter) DefaultBranch(ctx context.Context, dir, remote, fallback string) (string, error) {
	return gitx.DefaultBranch(ctx, g.Runner, dir, remote, fallback)
}
