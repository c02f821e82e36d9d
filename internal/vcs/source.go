package vcs

import (
	"context"
	"strings"
	"time"

	"github.com/skaphos/gitopen/internal/factcache"
	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/model"
)

// Source answers the repository questions gitopen needs for one path.
// The remote name and fallback branch are fixed when the Source is built.
type Source interface {
	IsRepo(ctx context.Context, path string) (bool, error)
	RemoteURL(ctx context.Context, path string) (string, error)
	CurrentBranch(ctx context.Context, path string) (string, error)
	DefaultBranch(ctx context.Context, path string) (string, error)
}

// TTLs holds the freshness window for each cached fact kind.
type TTLs struct {
	RemoteURL     time.Duration
	RemoteInfo    time.Duration
	CurrentBranch time.Duration
	DefaultBranch time.Duration
}

// DefaultTTLs returns the built-in cache windows.
func DefaultTTLs() TTLs {
	return TTLs{
		RemoteURL:     60 * time.Second,
		RemoteInfo:    60 * time.Second,
		CurrentBranch: 30 * time.Second,
		DefaultBranch: 5 * time.Minute,
	}
}

// SourceOptions configures a CachingSource.
type SourceOptions struct {
	// RemoteName is the remote to read; empty picks the primary remote.
	RemoteName string
	// FallbackBranch is returned when no default branch can be found.
	FallbackBranch string
	TTLs           TTLs
	// Now is the cache clock; nil uses time.Now.
	Now func() time.Time
}

// CachingSource wraps an Adapter with per-fact caches keyed by path.
// Failures are never cached.
type CachingSource struct {
	adapter  Adapter
	remote   string
	fallback string

	remoteURLs      *factcache.Cache[string]
	remoteInfos     *factcache.Cache[model.RemoteInfo]
	currentBranches *factcache.Cache[string]
	defaultBranches *factcache.Cache[string]
}

// NewCachingSource builds a Source over adapter. Zero TTLs take defaults.
func NewCachingSource(adapter Adapter, opts SourceOptions) *CachingSource {
	defaults := DefaultTTLs()
	ttls := opts.TTLs
	if ttls.RemoteURL <= 0 {
		ttls.RemoteURL = defaults.RemoteURL
	}
	if ttls.RemoteInfo <= 0 {
		ttls.RemoteInfo = defaults.RemoteInfo
	}
	if ttls.CurrentBranch <= 0 {
		ttls.CurrentBranch = defaults.CurrentBranch
	}
	if ttls.DefaultBranch <= 0 {
		ttls.DefaultBranch = defaults.DefaultBranch
	}
	fallback := strings.TrimSpace(opts.FallbackBranch)
	if fallback == "" {
		fallback = gitx.DefaultFallbackBranch
	}
	return &CachingSource{
		adapter:         adapter,
		remote:          strings.TrimSpace(opts.RemoteName),
		fallback:        fallback,
		remoteURLs:      factcache.New[string](ttls.RemoteURL, opts.Now),
		remoteInfos:     factcache.New[model.RemoteInfo](ttls.RemoteInfo, opts.Now),
		currentBranches: factcache.New[string](ttls.CurrentBranch, opts.Now),
		defaultBranches: factcache.New[string](ttls.DefaultBranch, opts.Now),
	}
}

// RemoteName is the configured remote; empty means the primary remote.
func (s *CachingSource) RemoteName() string { return s.remote }

// AdapterName reports the wrapped adapter's name.
func (s *CachingSource) AdapterName() string { return s.adapter.Name() }

func (s *CachingSource) IsRepo(ctx context.Context, path string) (bool, error) {
	return s.adapter.IsRepo(ctx, path)
}

func (s *CachingSource) RemoteURL(ctx context.Context, path string) (string, error) {
	return s.remoteURLs.GetOrLoad(path, func() (string, error) {
		return s.adapter.RemoteURL(ctx, path, s.remote)
	})
}

func (s *CachingSource) CurrentBranch(ctx context.Context, path string) (string, error) {
	return s.currentBranches.GetOrLoad(path, func() (string, error) {
		return s.adapter.CurrentBranch(ctx, path)
	})
}

func (s *CachingSource) DefaultBranch(ctx context.Context, path string) (string, error) {
	return s.defaultBranches.GetOrLoad(path, func() (string, error) {
		return s.adapter.DefaultBranch(ctx, path, s.remoteFor(ctx, path), s.fallback)
	})
}

// remoteFor returns the configured remote, else the primary remote of
// path so default branch lookups read the same remote as RemoteURL.
func (s *CachingSource) remoteFor(ctx context.Context, path string) string {
	if s.remote != "" {
		return s.remote
	}
	remotes, err := s.adapter.Remotes(ctx, path)
	if err != nil {
		return "origin"
	}
	names := make([]string, 0, len(remotes))
	for _, r := range remotes {
		names = append(names, r.Name)
	}
	if primary := gitx.PrimaryRemote(names); primary != "" {
		return primary
	}
	return "origin"
}

// ResolveRemoteInfo reads the remote URL for path and caches the result of
// resolve for it.
func (s *CachingSource) ResolveRemoteInfo(ctx context.Context, path string, resolve func(rawURL string) (model.RemoteInfo, error)) (model.RemoteInfo, error) {
	return s.remoteInfos.GetOrLoad(path, func() (model.RemoteInfo, error) {
		rawURL, err := s.RemoteURL(ctx, path)
		if err != nil {
			return model.RemoteInfo{}, err
		}
		return resolve(rawURL)
	})
}

// Invalidate drops every cached fact for path.
func (s *CachingSource) Invalidate(path string) {
	s.remoteURLs.Delete(path)
	s.remoteInfos.Delete(path)
	s.currentBranches.Delete(path)
	s.defaultBranches.Delete(path)
}
