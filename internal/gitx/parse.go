package gitx

import "strings"

// ParseRemoteNames parses the newline-separated output of `git remote`.
func ParseRemoteNames(output string) []string {
	if strings.TrimSpace(output) == "" {
		return nil
	}
	var names []string
	for _, line := range strings.Split(output, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// ParseRemoteHead parses the output of:
//
//	git symbolic-ref --short refs/remotes/<remote>/HEAD
//
// and returns the branch name without the remote prefix. Full ref names
// ("refs/remotes/origin/main") are accepted too.
func ParseRemoteHead(output, remote string) string {
	ref := strings.TrimSpace(output)
	if ref == "" {
		return ""
	}
	ref = strings.TrimPrefix(ref, "refs/remotes/")
	if remote != "" {
		ref = strings.TrimPrefix(ref, remote+"/")
	}
	if ref == "HEAD" {
		return ""
	}
	return ref
}
