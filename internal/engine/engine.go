// Package engine composes the fact source, resolver, URL builder, and
// selection history into the operations every gitopen command shares.
package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/history"
	"github.com/skaphos/gitopen/internal/model"
	"github.com/skaphos/gitopen/internal/remote"
	"github.com/skaphos/gitopen/internal/vcs"
	"github.com/skaphos/gitopen/internal/weburl"
)

// Prompter asks the user to pick one of options. It returns
// cliio.ErrNoSelection when the user declines.
type Prompter interface {
	Choose(prompt string, options []string, defaultIndex int) (int, error)
}

// DiscoveryOptions configures the workspace walk used when the workspace
// root is not itself a repository.
type DiscoveryOptions struct {
	Exclude  []string
	MaxDepth int
}

// Options configures an Engine.
type Options struct {
	// Adapter is used for repository discovery; it should be the adapter
	// wrapped by Source.
	Adapter   vcs.Adapter
	Source    *vcs.CachingSource
	Domains   remote.Domains
	History   *history.Store
	Discovery DiscoveryOptions
	Prompter  Prompter
	Logger    *slog.Logger
}

// Engine is the shared helper behind every gitopen command.
type Engine struct {
	adapter   vcs.Adapter
	source    *vcs.CachingSource
	domains   remote.Domains
	history   *history.Store
	discovery DiscoveryOptions
	prompter  Prompter
	log       *slog.Logger
}

// New creates an Engine. Nil collaborators get working defaults: the git
// CLI adapter, the built-in domain table, and an in-memory history.
func New(opts Options) *Engine {
	if opts.Adapter == nil {
		opts.Adapter = vcs.NewGitAdapter(nil)
	}
	if opts.Source == nil {
		opts.Source = vcs.NewCachingSource(opts.Adapter, vcs.SourceOptions{})
	}
	if opts.Domains == nil {
		opts.Domains = remote.DefaultDomains()
	}
	if opts.History == nil {
		opts.History = history.NewStore(nil, history.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		adapter:   opts.Adapter,
		source:    opts.Source,
		domains:   opts.Domains,
		history:   opts.History,
		discovery: opts.Discovery,
		prompter:  opts.Prompter,
		log:       opts.Logger,
	}
}

// Domains returns the provider domain table in use.
func (e *Engine) Domains() remote.Domains { return e.domains }

// History returns the selection history store.
func (e *Engine) History() *history.Store { return e.history }

// ResolveRemoteInfo reads the remote URL for path and resolves it against
// the domain table. Results are cached per path.
func (e *Engine) ResolveRemoteInfo(ctx context.Context, path string) (model.RemoteInfo, error) {
	info, err := e.source.ResolveRemoteInfo(ctx, path, func(rawURL string) (model.RemoteInfo, error) {
		return remote.Resolve(rawURL, e.domains)
	})
	if err != nil {
		return model.RemoteInfo{}, err
	}
	e.log.Debug("resolved remote", "path", path, "provider", info.Provider, "owner", info.Owner, "repo", info.Repo, "base_url", info.BaseURL)
	return info, nil
}

// TargetOptions overrides the branches used by the create action.
type TargetOptions struct {
	SourceBranch string
	TargetBranch string
}

// Target is a resolved URL for one action.
type Target struct {
	Action       weburl.Action    `json:"action" yaml:"action"`
	URL          string           `json:"url" yaml:"url"`
	Remote       model.RemoteInfo `json:"remote" yaml:"remote"`
	SourceBranch string           `json:"source_branch,omitempty" yaml:"source_branch,omitempty"`
	TargetBranch string           `json:"target_branch,omitempty" yaml:"target_branch,omitempty"`
	// Unmapped marks a repo link built for a host outside the domain table.
	Unmapped bool `json:"unmapped,omitempty" yaml:"unmapped,omitempty"`
}

// Target builds the URL for action in the repository at path.
//
// The repo action still produces base/owner/repo for unknown providers and
// sets Unmapped; every other action fails with
// *weburl.UnsupportedProviderError.
func (e *Engine) Target(ctx context.Context, path string, action weburl.Action, opts TargetOptions) (Target, error) {
	if action.NeedsBranches() {
		return e.createTarget(ctx, path, opts)
	}
	info, err := e.ResolveRemoteInfo(ctx, path)
	if err != nil {
		return Target{}, err
	}
	target := Target{Action: action, Remote: info}
	url, err := weburl.Build(action, info, "", "")
	var unsupported *weburl.UnsupportedProviderError
	if action == weburl.ActionRepo && errors.As(err, &unsupported) {
		e.log.Debug("host not in provider table, using plain repo link", "base_url", info.BaseURL)
		target.URL = info.BaseURL + "/" + info.Path()
		target.Unmapped = true
		return target, nil
	}
	if err != nil {
		return Target{}, err
	}
	target.URL = url
	return target, nil
}

func (e *Engine) createTarget(ctx context.Context, path string, opts TargetOptions) (Target, error) {
	var (
		info           model.RemoteInfo
		source, target = opts.SourceBranch, opts.TargetBranch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = e.ResolveRemoteInfo(gctx, path)
		return err
	})
	if source == "" {
		g.Go(func() error {
			var err error
			source, err = e.source.CurrentBranch(gctx, path)
			return err
		})
	}
	if target == "" {
		g.Go(func() error {
			var err error
			target, err = e.source.DefaultBranch(gctx, path)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Target{}, err
	}
	e.log.Debug("merge request branches", "source", source, "target", target)
	url, err := weburl.BuildCreateMergeRequestURL(info, source, target)
	if err != nil {
		return Target{}, err
	}
	return Target{
		Action:       weburl.ActionCreateMergeRequest,
		URL:          url,
		Remote:       info,
		SourceBranch: source,
		TargetBranch: target,
	}, nil
}

// Details gathers the facts shown by "gitopen info". A detached HEAD
// leaves CurrentBranch empty instead of failing.
func (e *Engine) Details(ctx context.Context, path string) (model.RepoDetails, error) {
	details := model.RepoDetails{Path: path, RemoteName: e.source.RemoteName()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := e.source.RemoteURL(gctx, path)
		if err != nil {
			return err
		}
		details.RemoteURL = url
		info, err := e.ResolveRemoteInfo(gctx, path)
		if err != nil {
			return err
		}
		details.Remote = info
		return nil
	})
	g.Go(func() error {
		branch, err := e.source.CurrentBranch(gctx, path)
		if errors.Is(err, gitx.ErrDetachedHead) {
			return nil
		}
		details.CurrentBranch = branch
		return err
	})
	g.Go(func() error {
		branch, err := e.source.DefaultBranch(gctx, path)
		details.DefaultBranch = branch
		return err
	})
	if err := g.Wait(); err != nil {
		return model.RepoDetails{}, err
	}
	return details, nil
}
