// SPDX-License-Identifier: MIT
package vcs

import (
	"fmt"
	"strings"

	"github.com/skaphos/gitopen/internal/gitx"
)

// Adapter names accepted by --adapter and defaults.adapter.
const (
	AdapterGit   = "git"
	AdapterGoGit = "go-git"
)

// ParseAdapterSelection normalizes an --adapter value. Empty selects git.
func ParseAdapterSelection(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "":
		return AdapterGit, nil
	case AdapterGit, AdapterGoGit:
		return name, nil
	case "gogit":
		return AdapterGoGit, nil
	default:
		return "", fmt.Errorf("unsupported adapter %q (supported: git,go-git)", raw)
	}
}

// NewAdapterForSelection builds the adapter for an --adapter value.
// runner is only used by the git adapter; nil means the git binary.
func NewAdapterForSelection(raw string, runner gitx.Runner) (Adapter, error) {
	name, err := ParseAdapterSelection(raw)
	if err != nil {
		return nil, err
	}
	if name == AdapterGoGit {
		return NewGoGitAdapter(), nil
	}
	return NewGitAdapter(runner), nil
}
