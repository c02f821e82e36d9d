// Package discovery walks a workspace root to find candidate git
// repositories.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/model"
	"github.com/skaphos/gitopen/internal/vcs"
)

// Result represents a discovered repository working tree.
type Result struct {
	Path          string // absolute path to the work tree root
	PrimaryRemote string // primary remote name, empty when none
	RemoteURL     string // raw URL of the primary remote
	Remotes       []model.Remote
}

// Options configures the discovery scan.
type Options struct {
	Roots   []string
	Exclude []string // glob patterns to skip
	// MaxDepth limits how many directory levels below a root are visited.
	// Zero means unlimited.
	MaxDepth       int
	FollowSymlinks bool
	Adapter        vcs.Adapter
}

// Scan walks all roots and returns discovered repos in walk order.
// .git directories, excluded paths and the inside of found work trees
// are never descended into.
func Scan(ctx context.Context, opts Options) ([]Result, error) {
	if opts.Adapter == nil {
		opts.Adapter = vcs.NewGitAdapter(nil)
	}
	w := &walker{
		ctx:     ctx,
		opts:    opts,
		seen:    map[string]struct{}{},
		gitdirs: map[string]struct{}{},
	}
	for _, root := range opts.Roots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		if err := w.walk(abs); err != nil {
			return nil, err
		}
	}
	return w.found, nil
}

// Paths returns the work tree paths of results in scan order.
func Paths(results []Result) []string {
	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	return paths
}

// MatchesExclude checks whether a path matches any of the given exclude
// glob patterns.
func MatchesExclude(path string, patterns []string) bool {
	target := filepath.ToSlash(path)
	for _, pattern := range patterns {
		// Malformed patterns never match.
		if ok, err := doublestar.Match(filepath.ToSlash(pattern), target); err == nil && ok {
			return true
		}
	}
	return false
}

type walker struct {
	ctx  context.Context
	opts Options
	// seen holds resolved roots so symlink cycles terminate.
	seen map[string]struct{}
	// gitdirs are linked work tree git directories found so far.
	gitdirs map[string]struct{}
	found   []Result
}

func (w *walker) walk(root string) error {
	key := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		key = resolved
	}
	if _, dup := w.seen[key]; dup {
		return nil
	}
	w.seen[key] = struct{}{}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			return w.follow(path)
		}
		if !entry.IsDir() {
			return nil
		}
		return w.visit(root, path, entry.Name())
	})
}

func (w *walker) visit(root, dir, name string) error {
	if _, linked := w.gitdirs[dir]; linked || name == ".git" {
		return fs.SkipDir
	}
	if MatchesExclude(dir, w.opts.Exclude) {
		return fs.SkipDir
	}
	if isRepo, gitdir := detectRepo(dir); isRepo {
		if gitdir != "" {
			w.gitdirs[gitdir] = struct{}{}
		}
		res, err := buildResult(w.ctx, w.opts.Adapter, dir)
		if err != nil {
			return err
		}
		w.found = append(w.found, res)
		return fs.SkipDir
	}
	if limit := w.opts.MaxDepth; limit > 0 && depth(root, dir) >= limit {
		return fs.SkipDir
	}
	return nil
}

// follow descends into a symlinked directory when enabled. Broken links
// and links to files are ignored.
func (w *walker) follow(link string) error {
	if !w.opts.FollowSymlinks {
		return nil
	}
	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		return nil
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return nil
	}
	return w.walk(target)
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// detectRepo reports whether dir is a work tree root, and for linked
// work trees the git directory named by the .git file.
func detectRepo(dir string) (bool, string) {
	dotgit := filepath.Join(dir, ".git")
	info, err := os.Stat(dotgit)
	switch {
	case err != nil:
		return false, ""
	case info.IsDir():
		return true, ""
	case !info.Mode().IsRegular():
		return false, ""
	}
	gitdir, ok := gitdirFromFile(dotgit)
	if !ok {
		return false, ""
	}
	return true, gitdir
}

// gitdirFromFile parses a "gitdir: <path>" pointer file. Relative
// targets resolve against the file's directory.
func gitdirFromFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	target, found := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
	target = strings.TrimSpace(target)
	if !found || target == "" {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), true
}

func buildResult(ctx context.Context, adapter vcs.Adapter, dir string) (Result, error) {
	remotes, err := adapter.Remotes(ctx, dir)
	if err != nil {
		return Result{}, fmt.Errorf("read remotes for %s: %w", dir, err)
	}
	var remoteNames []string
	for _, r := range remotes {
		remoteNames = append(remoteNames, r.Name)
	}
	primary := gitx.PrimaryRemote(remoteNames)
	var remoteURL string
	for _, r := range remotes {
		if r.Name == primary {
			remoteURL = r.URL
			break
		}
	}
	return Result{
		Path:          dir,
		PrimaryRemote: primary,
		RemoteURL:     remoteURL,
		Remotes:       remotes,
	}, nil
}
