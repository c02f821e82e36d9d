package sortutil

import (
	"sort"
)

// OrderCandidates returns candidates with ranked suggestions first, in
// suggestion order, followed by the rest sorted by path. Suggestions that
// are not candidates are dropped; duplicates collapse.
func OrderCandidates(candidates, suggestions []string) []string {
	remaining := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		remaining[c] = struct{}{}
	}
	out := make([]string, 0, len(remaining))
	for _, s := range suggestions {
		if _, ok := remaining[s]; !ok {
			continue
		}
		out = append(out, s)
		delete(remaining, s)
	}
	rest := make([]string, 0, len(remaining))
	for c := range remaining {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// IndexOf returns the position of value in values, or -1.
func IndexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return -1
}
