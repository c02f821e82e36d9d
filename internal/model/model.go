// Package model defines the core data types shared across gitopen.
package model

import (
	"fmt"
	"strings"
)

// Provider identifies a git hosting platform whose URL conventions
// determine link shapes.
type Provider string

const (
	ProviderGitHub    Provider = "github"
	ProviderGitLab    Provider = "gitlab"
	ProviderBitbucket Provider = "bitbucket"
	ProviderAzure     Provider = "azure"
	ProviderUnknown   Provider = "unknown"
)

// KnownProviders lists every provider with URL templates, in display order.
func KnownProviders() []Provider {
	return []Provider{ProviderGitHub, ProviderGitLab, ProviderBitbucket, ProviderAzure}
}

// ParseProvider validates a provider tag from user input.
func ParseProvider(raw string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case ProviderGitHub, ProviderGitLab, ProviderBitbucket, ProviderAzure:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported provider %q (expected github, gitlab, bitbucket, or azure)", raw)
	}
}

// DisplayName returns the human-facing platform name.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderGitHub:
		return "GitHub"
	case ProviderGitLab:
		return "GitLab"
	case ProviderBitbucket:
		return "Bitbucket"
	case ProviderAzure:
		return "Azure DevOps"
	default:
		return "unknown"
	}
}

// Remote represents a single git remote.
type Remote struct {
	// Name is the configured remote name (for example, "origin").
	Name string `json:"name" yaml:"name"`
	// URL is the remote fetch URL.
	URL string `json:"url" yaml:"url"`
}

// RemoteInfo is the structured form of a repository's remote URL.
// Values are derived from a raw remote URL and the provider domain table.
type RemoteInfo struct {
	// Provider is the hosting platform classified from the host.
	Provider Provider `json:"provider" yaml:"provider"`
	// Owner is the namespace path before the repo name. It may contain
	// "/" for nested groups.
	Owner string `json:"owner" yaml:"owner"`
	// Repo is the repository name without a ".git" suffix.
	Repo string `json:"repo" yaml:"repo"`
	// BaseURL is scheme://host of the hosting web UI.
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// Path returns owner/repo.
func (r RemoteInfo) Path() string {
	return r.Owner + "/" + r.Repo
}

// Host returns the host portion of BaseURL.
func (r RemoteInfo) Host() string {
	if i := strings.Index(r.BaseURL, "://"); i >= 0 {
		return r.BaseURL[i+3:]
	}
	return r.BaseURL
}

// RepoDetails bundles the facts shown by "gitopen info".
type RepoDetails struct {
	Path          string     `json:"path" yaml:"path"`
	RemoteName    string     `json:"remote_name" yaml:"remote_name"`
	RemoteURL     string     `json:"remote_url" yaml:"remote_url"`
	Remote        RemoteInfo `json:"remote" yaml:"remote"`
	CurrentBranch string     `json:"current_branch" yaml:"current_branch"`
	DefaultBranch string     `json:"default_branch" yaml:"default_branch"`
}
