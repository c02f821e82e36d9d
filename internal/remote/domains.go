// SPDX-License-Identifier: MIT
package remote

import (
	"sort"
	"strings"

	"github.com/skaphos/gitopen/internal/model"
)

// Domains maps a host (exact) or parent domain (suffix) to a provider.
// An empty table is valid; unmatched hosts classify as unknown.
type Domains map[string]model.Provider

// DefaultDomains returns a fresh copy of the built-in provider table.
func DefaultDomains() Domains {
	return Domains{
		"github.com":    model.ProviderGitHub,
		"gitlab.com":    model.ProviderGitLab,
		"bitbucket.org": model.ProviderBitbucket,
	}
}

// MergeDomains layers overrides on top of base. Keys are compared
// case-insensitively; override entries win.
func MergeDomains(base, overrides Domains) Domains {
	out := make(Domains, len(base)+len(overrides))
	for host, provider := range base {
		out[normalizeHost(host)] = provider
	}
	for host, provider := range overrides {
		out[normalizeHost(host)] = provider
	}
	return out
}

// Classify returns the provider for host. An exact key wins over suffix
// keys; among suffix keys the longest (most specific) wins.
func (d Domains) Classify(host string) model.Provider {
	host = normalizeHost(host)
	if host == "" || len(d) == 0 {
		return model.ProviderUnknown
	}
	var (
		best    model.Provider
		bestLen int
	)
	for key, provider := range d {
		key = normalizeHost(key)
		if key == "" {
			continue
		}
		if key == host {
			return provider
		}
		if strings.HasSuffix(host, "."+key) && len(key) > bestLen {
			best = provider
			bestLen = len(key)
		}
	}
	if bestLen == 0 {
		return model.ProviderUnknown
	}
	return best
}

// Hosts returns the table keys in sorted order.
func (d Domains) Hosts() []string {
	hosts := make([]string, 0, len(d))
	for host := range d {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// SuggestProvider guesses a provider from well-known words in the host of
// baseURL. It returns ProviderUnknown when nothing looks familiar.
func SuggestProvider(baseURL string) model.Provider {
	host := strings.ToLower(baseURL)
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	switch {
	case strings.Contains(host, "gitlab"):
		return model.ProviderGitLab
	case strings.Contains(host, "github"):
		return model.ProviderGitHub
	case strings.Contains(host, "bitbucket"):
		return model.ProviderBitbucket
	case strings.Contains(host, "azure"), strings.Contains(host, "visualstudio"):
		return model.ProviderAzure
	default:
		return model.ProviderUnknown
	}
}

func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}
