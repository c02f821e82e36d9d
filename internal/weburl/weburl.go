// Package weburl builds provider web UI links from resolved remote info.
// Templates are fixed per provider; branch names are inserted verbatim.
package weburl

import (
	"fmt"
	"strings"

	"github.com/skaphos/gitopen/internal/model"
)

// UnsupportedProviderError is returned for remotes whose host is not in
// the provider domain table. BaseURL lets callers offer a domain mapping.
type UnsupportedProviderError struct {
	BaseURL string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported git provider for %s", e.BaseURL)
}

// Action names one of the pages gitopen can open.
type Action string

const (
	ActionRepo               Action = "repo"
	ActionMergeRequests      Action = "merge-requests"
	ActionCreateMergeRequest Action = "create-merge-request"
	ActionPipelines          Action = "pipelines"
)

// Actions lists every action in menu order.
func Actions() []Action {
	return []Action{ActionRepo, ActionMergeRequests, ActionCreateMergeRequest, ActionPipelines}
}

// Description is the one-line menu text for an action.
func (a Action) Description() string {
	switch a {
	case ActionRepo:
		return "Open the remote repository"
	case ActionMergeRequests:
		return "Open merge requests/pull requests"
	case ActionCreateMergeRequest:
		return "Create a merge request/pull request"
	case ActionPipelines:
		return "Open pipelines/actions"
	default:
		return string(a)
	}
}

// ParseAction accepts action names and their common aliases.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "repo", "home":
		return ActionRepo, nil
	case "merge-requests", "mrs", "prs", "pulls":
		return ActionMergeRequests, nil
	case "create-merge-request", "mr", "pr", "new-mr", "new-pr":
		return ActionCreateMergeRequest, nil
	case "pipelines", "ci", "actions":
		return ActionPipelines, nil
	default:
		return "", fmt.Errorf("unsupported action %q (expected repo, merge-requests, create-merge-request, or pipelines)", raw)
	}
}

// NeedsBranches reports whether the action takes source/target branches.
func (a Action) NeedsBranches() bool {
	return a == ActionCreateMergeRequest
}

// Build dispatches to the builder for action. source and target are only
// used by ActionCreateMergeRequest.
func Build(action Action, info model.RemoteInfo, source, target string) (string, error) {
	switch action {
	case ActionRepo:
		return BuildRepoURL(info)
	case ActionMergeRequests:
		return BuildMergeRequestsURL(info)
	case ActionCreateMergeRequest:
		return BuildCreateMergeRequestURL(info, source, target)
	case ActionPipelines:
		return BuildPipelinesURL(info)
	default:
		return "", fmt.Errorf("unsupported action %q", action)
	}
}

// BuildRepoURL returns the repository home page.
func BuildRepoURL(info model.RemoteInfo) (string, error) {
	switch info.Provider {
	case model.ProviderGitHub, model.ProviderGitLab, model.ProviderBitbucket, model.ProviderAzure:
		return repoRoot(info), nil
	default:
		return "", unsupported(info)
	}
}

// BuildMergeRequestsURL returns the merge/pull request list page.
func BuildMergeRequestsURL(info model.RemoteInfo) (string, error) {
	root := repoRoot(info)
	switch info.Provider {
	case model.ProviderGitHub:
		return root + "/pulls", nil
	case model.ProviderGitLab:
		return root + "/-/merge_requests", nil
	case model.ProviderBitbucket:
		return root + "/pull-requests", nil
	case model.ProviderAzure:
		return root + "/pullrequests", nil
	default:
		return "", unsupported(info)
	}
}

// BuildCreateMergeRequestURL returns the compose view for merging source
// into target.
func BuildCreateMergeRequestURL(info model.RemoteInfo, source, target string) (string, error) {
	root := repoRoot(info)
	switch info.Provider {
	case model.ProviderGitHub:
		return root + "/compare/" + target + "..." + source + "?expand=1", nil
	case model.ProviderGitLab:
		return root + "/-/merge_requests/new?merge_request[source_branch]=" + source + "&merge_request[target_branch]=" + target, nil
	case model.ProviderBitbucket:
		return root + "/pull-requests/new?source=" + source + "&dest=" + target, nil
	case model.ProviderAzure:
		return root + "/pullrequestcreate?sourceRef=" + source + "&targetRef=" + target, nil
	default:
		return "", unsupported(info)
	}
}

// BuildPipelinesURL returns the CI/pipelines page.
func BuildPipelinesURL(info model.RemoteInfo) (string, error) {
	root := repoRoot(info)
	switch info.Provider {
	case model.ProviderGitHub:
		return root + "/actions", nil
	case model.ProviderGitLab:
		return root + "/-/pipelines", nil
	case model.ProviderBitbucket:
		return root + "/pipelines", nil
	case model.ProviderAzure:
		return root + "/_build", nil
	default:
		return "", unsupported(info)
	}
}

func repoRoot(info model.RemoteInfo) string {
	return info.BaseURL + "/" + info.Owner + "/" + info.Repo
}

func unsupported(info model.RemoteInfo) error {
	return &UnsupportedProviderError{BaseURL: info.BaseURL}
}
