// SPDX-License-Identifier: MIT
// Package remote turns raw git remote URLs into structured provider
// information.
package remote

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/model"
)

// ErrMalformedRemoteURL marks remote URLs without a host or without both
// an owner and a repository segment.
var ErrMalformedRemoteURL = errors.New("malformed remote URL")

// transportSchemes are git transports without a web UI; they map to https.
var transportSchemes = map[string]struct{}{
	"ssh":     {},
	"git":     {},
	"git+ssh": {},
	"ssh+git": {},
}

// Resolve parses rawURL and classifies its host against domains.
//
// Rules:
//   - Trim whitespace and a single trailing ".git" (also before a trailing "/")
//   - Rewrite user@host:path to https://host/path
//   - Drop userinfo; lowercase the host
//   - ssh/git transports become https without their port
//   - The last path segment is the repo; everything before it is the owner
//
// Examples:
//
//	git@github.com:octocat/Hello-World.git → github octocat/Hello-World https://github.com
//	https://gitlab.example.com/group/sub/project.git → owner "group/sub", repo "project"
func Resolve(rawURL string, domains Domains) (model.RemoteInfo, error) {
	cleaned := strings.TrimSpace(rawURL)
	suffixTrimmed := strings.HasSuffix(cleaned, ".git")
	cleaned = strings.TrimSuffix(cleaned, ".git")
	if cleaned == "" {
		return model.RemoteInfo{}, fmt.Errorf("%w: empty URL", ErrMalformedRemoteURL)
	}
	if host, path, ok := gitx.SplitSCP(cleaned); ok {
		cleaned = "https://" + host + "/" + strings.TrimPrefix(path, "/")
	}

	parsed, err := url.Parse(cleaned)
	if err != nil {
		return model.RemoteInfo{}, fmt.Errorf("%w: %q: %w", ErrMalformedRemoteURL, redact(rawURL), err)
	}
	hostname := strings.ToLower(parsed.Hostname())
	if hostname == "" {
		return model.RemoteInfo{}, fmt.Errorf("%w: %q has no host", ErrMalformedRemoteURL, redact(rawURL))
	}

	// Escaped form keeps %2F inside a single segment.
	segments := splitSegments(parsed.EscapedPath())
	if len(segments) < 2 {
		return model.RemoteInfo{}, fmt.Errorf("%w: %q needs an owner and a repository", ErrMalformedRemoteURL, redact(rawURL))
	}
	repo := segments[len(segments)-1]
	if !suffixTrimmed {
		// "Repo.git/" only loses its suffix once the slash is gone.
		repo = strings.TrimSuffix(repo, ".git")
	}
	owner := strings.Join(segments[:len(segments)-1], "/")
	if repo == "" {
		return model.RemoteInfo{}, fmt.Errorf("%w: %q has an empty repository name", ErrMalformedRemoteURL, redact(rawURL))
	}

	return model.RemoteInfo{
		Provider: domains.Classify(hostname),
		Owner:    owner,
		Repo:     repo,
		BaseURL:  baseURL(parsed, hostname),
	}, nil
}

func baseURL(parsed *url.URL, hostname string) string {
	scheme := strings.ToLower(parsed.Scheme)
	if _, ok := transportSchemes[scheme]; ok || scheme == "" {
		return "https://" + hostname
	}
	if port := parsed.Port(); port != "" {
		return scheme + "://" + hostname + ":" + port
	}
	return scheme + "://" + hostname
}

func splitSegments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// redact drops credentials from a URL before it is put in an error.
func redact(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.User == nil {
		return strings.TrimSpace(rawURL)
	}
	if _, hasPassword := parsed.User.Password(); hasPassword {
		parsed.User = url.UserPassword(parsed.User.Username(), "xxxxx")
	}
	return parsed.String()
}
