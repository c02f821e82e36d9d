// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/skaphos/gitopen/internal/model"
)

// DefaultFallbackBranch is used when no default branch can be determined.
const DefaultFallbackBranch = "main"

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns
	// trimmed stdout. Failures are reported as *CommandError.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return "", &CommandError{
			Command: commandLabel(bin, args),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// commandLabel names the git subcommand without its arguments so error
// text never carries refs or URLs.
func commandLabel(bin string, args []string) string {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		return bin + " " + arg
	}
	return bin
}

// IsRepo checks whether the given path is inside a git working tree.
// It returns an error only when git could not be run at all; "not a
// repository" answers false.
func IsRepo(ctx context.Context, r Runner, dir string) (bool, error) {
	out, err := r.Run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		if IsNotARepository(err) {
			return false, nil
		}
		return false, withOp("check repository", err)
	}
	return strings.TrimSpace(out) == "true", nil
}

// Remotes returns all configured remotes for the repo.
func Remotes(ctx context.Context, r Runner, dir string) ([]model.Remote, error) {
	out, err := r.Run(ctx, dir, "remote")
	if err != nil {
		if IsNotARepository(err) {
			return nil, ErrNotARepository
		}
		return nil, withOp("list remotes", err)
	}
	var remotes []model.Remote
	for _, name := range ParseRemoteNames(out) {
		url, err := r.Run(ctx, dir, "remote", "get-url", name)
		if err != nil {
			continue
		}
		remotes = append(remotes, model.Remote{
			Name: name,
			URL:  strings.TrimSpace(url),
		})
	}
	return remotes, nil
}

// RemoteURL returns the raw URL of the named remote. An empty name picks
// the primary remote.
func RemoteURL(ctx context.Context, r Runner, dir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		remotes, err := Remotes(ctx, r, dir)
		if err != nil {
			return "", err
		}
		names := make([]string, 0, len(remotes))
		for _, remote := range remotes {
			names = append(names, remote.Name)
		}
		name = PrimaryRemote(names)
		if name == "" {
			return "", ErrNoRemote
		}
	}
	out, err := r.Run(ctx, dir, "config", "--get", "remote."+name+".url")
	if err != nil {
		if IsNotARepository(err) {
			return "", ErrNotARepository
		}
		// git config --get exits 1 for unset keys.
		return "", fmt.Errorf("%w: remote %q: %w", ErrNoRemote, name, withOp("read remote url", err))
	}
	url := strings.TrimSpace(out)
	if url == "" {
		return "", fmt.Errorf("%w: remote %q", ErrNoRemote, name)
	}
	return url, nil
}

// CurrentBranch returns the checked-out branch name.
func CurrentBranch(ctx context.Context, r Runner, dir string) (string, error) {
	out, err := r.Run(ctx, dir, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		if IsNotARepository(err) {
			return "", ErrNotARepository
		}
		if isLaunchFailure(err) {
			return "", withOp("read current branch", err)
		}
		return "", ErrDetachedHead
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", ErrDetachedHead
	}
	return branch, nil
}

// DefaultBranch returns the branch the remote treats as primary. It reads
// refs/remotes/<remote>/HEAD, then probes local "main" and "master", and
// finally returns fallback (or "main" when fallback is empty). It never
// touches the network.
func DefaultBranch(ctx context.Context, r Runner, dir, remote, fallback string) (string, error) {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallbackBranch
	}
	if strings.TrimSpace(remote) == "" {
		remote = "origin"
	}
	out, err := r.Run(ctx, dir, "symbolic-ref", "--quiet", "--short", "refs/remotes/"+remote+"/HEAD")
	if err == nil {
		if branch := ParseRemoteHead(out, remote); branch != "" {
			return branch, nil
		}
	} else if IsNotARepository(err) {
		return "", ErrNotARepository
	} else if isLaunchFailure(err) {
		return "", withOp("read default branch", err)
	}
	for _, candidate := range []string{"main", "master"} {
		if _, err := r.Run(ctx, dir, "rev-parse", "--verify", "--quiet", "refs/heads/"+candidate); err == nil {
			return candidate, nil
		}
	}
	return fallback, nil
}

// isLaunchFailure reports errors where git never produced an answer: the
// binary is missing or the context ended.
func isLaunchFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var execErr *exec.Error
	return errors.As(err, &execErr)
}
