package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/model"
)

// GoGitAdapter implements Adapter by reading the repository with go-git.
// It never spawns a git process and never touches the network.
type GoGitAdapter struct{}

func NewGoGitAdapter() *GoGitAdapter {
	return &GoGitAdapter{}
}

func (g *GoGitAdapter) Name() string { return "go-git" }

func (g *GoGitAdapter) open(ctx context.Context, dir string) (*git.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) || errors.Is(err, os.ErrNotExist) {
		return nil, gitx.ErrNotARepository
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return repo, nil
}

func (g *GoGitAdapter) IsRepo(ctx context.Context, dir string) (bool, error) {
	repo, err := g.open(ctx, dir)
	if errors.Is(err, gitx.ErrNotARepository) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := repo.Worktree(); err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return false, nil
		}
		return false, fmt.Errorf("open worktree: %w", err)
	}
	return true, nil
}

func (g *GoGitAdapter) Remotes(ctx context.Context, dir string) ([]model.Remote, error) {
	repo, err := g.open(ctx, dir)
	if err != nil {
		return nil, err
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	out := make([]model.Remote, 0, len(remotes))
	for _, r := range remotes {
		cfg := r.Config()
		if len(cfg.URLs) == 0 {
			continue
		}
		out = append(out, model.Remote{Name: cfg.Name, URL: cfg.URLs[0]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (g *GoGitAdapter) RemoteURL(ctx context.Context, dir, name string) (string, error) {
	repo, err := g.open(ctx, dir)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		remotes, err := repo.Remotes()
		if err != nil {
			return "", fmt.Errorf("list remotes: %w", err)
		}
		names := make([]string, 0, len(remotes))
		for _, r := range remotes {
			names = append(names, r.Config().Name)
		}
		name = gitx.PrimaryRemote(names)
		if name == "" {
			return "", gitx.ErrNoRemote
		}
	}
	r, err := repo.Remote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return "", fmt.Errorf("%w: remote %q", gitx.ErrNoRemote, name)
	}
	if err != nil {
		return "", fmt.Errorf("read remote %q: %w", name, err)
	}
	urls := r.Config().URLs
	if len(urls) == 0 || strings.TrimSpace(urls[0]) == "" {
		return "", fmt.Errorf("%w: remote %q", gitx.ErrNoRemote, name)
	}
	return strings.TrimSpace(urls[0]), nil
}

func (g *GoGitAdapter) CurrentBranch(ctx context.Context, dir string) (string, error) {
	repo, err := g.open(ctx, dir)
	if err != nil {
		return "", err
	}
	// Unresolved so an unborn branch still reports its name.
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", gitx.ErrDetachedHead
	}
	return head.Target().Short(), nil
}

func (g *GoGitAdapter) DefaultBranch(ctx context.Context, dir, remote, fallback string) (string, error) {
	if strings.TrimSpace(fallback) == "" {
		fallback = gitx.DefaultFallbackBranch
	}
	if strings.TrimSpace(remote) == "" {
		remote = "origin"
	}
	repo, err := g.open(ctx, dir)
	if err != nil {
		return "", err
	}
	ref, err := repo.Reference(plumbing.NewRemoteHEADReferenceName(remote), false)
	if err == nil && ref.Type() == plumbing.SymbolicReference {
		if branch := gitx.ParseRemoteHead(ref.Target().Short(), remote); branch != "" {
			return branch, nil
		}
	}
	for _, candidate := range []string{"main", "master"} {
		if _, err := repo.Reference(plumbing.NewBranchReferenceName(candidate), false); err == nil {
			return candidate, nil
		}
	}
	return fallback, nil
}
