package gitx

import (
	"sort"
	"strings"
)

// SplitSCP splits an scp-like remote ("user@host:path") into host and
// path. It reports false for URLs with a scheme or without a user part.
//
// Examples:
//
//	git@github.com:Org/Repo.git  → ("github.com", "Org/Repo.git", true)
//	https://github.com/Org/Repo  → ("", "", false)
func SplitSCP(rawURL string) (host, path string, ok bool) {
	if strings.Contains(rawURL, "://") {
		return "", "", false
	}
	at := strings.Index(rawURL, "@")
	colon := strings.Index(rawURL, ":")
	if at < 0 || colon < 0 || at > colon {
		return "", "", false
	}
	host = rawURL[at+1 : colon]
	path = rawURL[colon+1:]
	if host == "" {
		return "", "", false
	}
	return host, path, true
}

// PrimaryRemote selects the preferred remote from a list.
// Prefers "origin", falls back to first alphabetically.
func PrimaryRemote(remoteNames []string) string {
	if len(remoteNames) == 0 {
		return ""
	}
	for _, name := range remoteNames {
		if name == "origin" {
			return "origin"
		}
	}
	sorted := make([]string, len(remoteNames))
	copy(sorted, remoteNames)
	sort.Strings(sorted)
	return sorted[0]
}
