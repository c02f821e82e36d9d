package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/skaphos/gitopen/internal/discovery"
	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/sortutil"
)

// ErrSelectionRequired is returned when a workspace holds several
// repositories, no prompter is available, and history has no pick.
var ErrSelectionRequired = errors.New("multiple repositories found")

// Selection is the repository chosen for a command.
type Selection struct {
	Path string
	// Workspace is the history key the selection was recorded under.
	Workspace string
	// Candidates lists every repository considered, in menu order.
	Candidates []string
	// Recorded reports whether history changed and should be saved.
	Recorded bool
}

// SelectRepo picks the repository a command acts on. A workspace that is
// itself inside a repository is used as is. Otherwise the workspace is
// scanned; a single candidate is used without asking, and several are
// offered through the prompter ranked by history with the last selection
// preselected. Prompted picks are recorded in history.
func (e *Engine) SelectRepo(ctx context.Context, workspace string) (Selection, error) {
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return Selection{}, err
	}
	sel := Selection{Workspace: abs}

	ok, err := e.source.IsRepo(ctx, abs)
	if err != nil {
		return Selection{}, err
	}
	if ok {
		sel.Path = abs
		sel.Candidates = []string{abs}
		return sel, nil
	}

	results, err := discovery.Scan(ctx, discovery.Options{
		Roots:    []string{abs},
		Exclude:  e.discovery.Exclude,
		MaxDepth: e.discovery.MaxDepth,
		Adapter:  e.adapter,
	})
	if err != nil {
		return Selection{}, err
	}
	candidates := sortutil.OrderCandidates(discovery.Paths(results), e.history.Suggestions(abs))
	sel.Candidates = candidates
	e.log.Debug("discovered repositories", "workspace", abs, "count", len(candidates))

	switch len(candidates) {
	case 0:
		return Selection{}, fmt.Errorf("%w: no repositories under %s", gitx.ErrNotARepository, abs)
	case 1:
		sel.Path = candidates[0]
		return sel, nil
	}

	defaultIndex := -1
	if last, ok := e.history.LastSelected(abs); ok {
		defaultIndex = sortutil.IndexOf(candidates, last)
	}
	if e.prompter == nil {
		if defaultIndex < 0 {
			return Selection{}, fmt.Errorf("%w under %s; run interactively or pass --workspace", ErrSelectionRequired, abs)
		}
		sel.Path = candidates[defaultIndex]
		return sel, nil
	}

	choice, err := e.prompter.Choose("Select a repository:", relativeLabels(abs, candidates), defaultIndex)
	if err != nil {
		return Selection{}, err
	}
	sel.Path = candidates[choice]
	e.history.RecordSelection(abs, sel.Path)
	sel.Recorded = true
	return sel, nil
}

func relativeLabels(root string, paths []string) []string {
	labels := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		labels[i] = filepath.ToSlash(rel)
	}
	return labels
}
