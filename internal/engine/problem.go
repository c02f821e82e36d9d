package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skaphos/gitopen/internal/cliio"
	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/model"
	"github.com/skaphos/gitopen/internal/remote"
	"github.com/skaphos/gitopen/internal/weburl"
)

// ProblemKind groups errors by what the user can do about them.
type ProblemKind string

const (
	ProblemNone                ProblemKind = ""
	ProblemNotARepository      ProblemKind = "not_a_repository"
	ProblemNoRemote            ProblemKind = "no_remote"
	ProblemMalformedRemoteURL  ProblemKind = "malformed_remote_url"
	ProblemUnsupportedProvider ProblemKind = "unsupported_provider"
	ProblemNoSelection         ProblemKind = "no_selection"
	ProblemSelectionRequired   ProblemKind = "selection_required"
	ProblemDetachedHead        ProblemKind = "detached_head"
	ProblemTimeout             ProblemKind = "timeout"
	ProblemGit                 ProblemKind = "git"
	ProblemUnknown             ProblemKind = "unknown"
)

// Problem is a user-facing description of an error.
type Problem struct {
	Kind    ProblemKind
	Message string
	// Hint is an optional next step, such as a command to run.
	Hint string
}

// Silent reports whether the problem should end the command without a
// message. Declined prompts are not failures.
func (p Problem) Silent() bool {
	return p.Kind == ProblemNoSelection
}

// Classify maps err to a Problem.
func Classify(err error) Problem {
	if err == nil {
		return Problem{Kind: ProblemNone}
	}

	var unsupported *weburl.UnsupportedProviderError
	var cmdErr *gitx.CommandError
	switch {
	case errors.Is(err, cliio.ErrNoSelection):
		return Problem{Kind: ProblemNoSelection, Message: "no selection made"}
	case errors.As(err, &unsupported):
		return unsupportedProblem(unsupported.BaseURL)
	case errors.Is(err, remote.ErrMalformedRemoteURL):
		return Problem{
			Kind:    ProblemMalformedRemoteURL,
			Message: "Could not parse the remote URL: " + err.Error(),
			Hint:    "check the URL with: git remote -v",
		}
	case errors.Is(err, ErrSelectionRequired):
		return Problem{Kind: ProblemSelectionRequired, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Problem{
			Kind:    ProblemTimeout,
			Message: "git did not answer in time",
			Hint:    "raise defaults.timeout_seconds in the gitopen config",
		}
	case errors.Is(err, gitx.ErrNotARepository):
		return Problem{
			Kind:    ProblemNotARepository,
			Message: "Not a git repository",
			Hint:    "run git init, or pass --workspace pointing at a repository",
		}
	case errors.Is(err, gitx.ErrNoRemote):
		return Problem{
			Kind:    ProblemNoRemote,
			Message: "No remote repository configured",
			Hint:    "add one with: git remote add origin <url>",
		}
	case errors.Is(err, gitx.ErrDetachedHead):
		return Problem{
			Kind:    ProblemDetachedHead,
			Message: "HEAD is detached; no current branch to open a merge request from",
			Hint:    "check out a branch or pass --source",
		}
	case errors.As(err, &cmdErr):
		msg := "Git error: " + cmdErr.Error()
		if class := gitx.ClassifyError(err); class != "unknown" {
			msg = fmt.Sprintf("Git error (%s): %s", class, cmdErr.Error())
		}
		return Problem{Kind: ProblemGit, Message: msg}
	default:
		return Problem{Kind: ProblemUnknown, Message: err.Error()}
	}
}

func unsupportedProblem(baseURL string) Problem {
	info := model.RemoteInfo{BaseURL: baseURL}
	host := info.Host()
	msg := "Unknown Git provider: " + host
	choice := providerChoices()
	if suggested := remote.SuggestProvider(baseURL); suggested != model.ProviderUnknown {
		msg += fmt.Sprintf(" (Looks like %s)", suggested.DisplayName())
		choice = string(suggested)
	}
	return Problem{
		Kind:    ProblemUnsupportedProvider,
		Message: msg,
		Hint:    fmt.Sprintf("map the host with: gitopen domains set %s %s", hostname(host), choice),
	}
}

func providerChoices() string {
	known := model.KnownProviders()
	names := make([]string, len(known))
	for i, p := range known {
		names[i] = string(p)
	}
	return "<" + strings.Join(names, "|") + ">"
}

// hostname drops a port from host.
func hostname(host string) string {
	for i := len(host) - 1; i >= 0; i-- {
		switch host[i] {
		case ':':
			return host[:i]
		case ']':
			return host
		}
	}
	return host
}
