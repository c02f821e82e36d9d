package gitopen

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitopen/internal/cliio"
	"github.com/skaphos/gitopen/internal/config"
	"github.com/skaphos/gitopen/internal/history"
	"github.com/skaphos/gitopen/internal/tableutil"
	"github.com/skaphos/gitopen/internal/termstyle"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and clear recently selected repositories",
	Long:  "When a workspace holds several repositories, gitopen remembers which one you pick and offers it first next time. History is kept per workspace.",
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List selection history for the workspace",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := getStringFlag(cmd, "format")
		setColorOutputMode(cmd, format)
		store, _, err := loadHistoryForCommand(cmd)
		if err != nil {
			return err
		}
		workspaces, err := historyWorkspaces(cmd, store)
		if err != nil {
			return err
		}
		rows := historyRows(store, workspaces)
		handled, err := writeStructured(cmd, format, rows)
		if err != nil || handled {
			return err
		}
		return writeHistoryTable(cmd, rows, getBoolFlag(cmd, "no-headers"))
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget selections for the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, path, err := loadHistoryForCommand(cmd)
		if err != nil {
			return err
		}
		var removed int
		scope := "all workspaces"
		if getBoolFlag(cmd, "all") {
			if !getBoolFlag(cmd, "yes") && stdinIsTerminal() {
				confirmed, err := cliio.PromptYesNo(cmd.ErrOrStderr(), cmd.InOrStdin(), "Clear history for all workspaces? [y/N]: ")
				if err != nil {
					return err
				}
				if !confirmed {
					infof(cmd, "History left unchanged")
					return nil
				}
			}
			removed = store.ClearAll()
		} else {
			workspace, err := resolveWorkspace()
			if err != nil {
				return err
			}
			removed = store.ClearWorkspace(workspace)
			scope = workspace
		}
		if err := history.Save(store.File(), path); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d record(s) for %s\n", removed, scope)
		logOutputWriteFailure(cmd, "history clear", err)
		return nil
	},
}

var historyCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Drop expired selections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, path, err := loadHistoryForCommand(cmd)
		if err != nil {
			return err
		}
		removed := store.Cleanup()
		if getBoolFlag(cmd, "prune-missing") {
			missing, err := store.PruneMissing()
			if err != nil {
				return err
			}
			debugf(cmd, "pruned %d missing repositories", missing)
			removed += missing
		}
		if err := history.Save(store.File(), path); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d record(s)\n", removed)
		logOutputWriteFailure(cmd, "history cleanup", err)
		return nil
	},
}

func loadHistoryForCommand(cmd *cobra.Command) (*history.Store, string, error) {
	cfg, cfgPath, err := loadConfigForCommand(cmd)
	if err != nil {
		return nil, "", err
	}
	path := config.ResolveHistoryPath(cfgPath, cfg.History.Path)
	debugf(cmd, "using history %s", path)
	file, err := history.LoadOrEmpty(path)
	if err != nil {
		return nil, "", err
	}
	store := history.NewStore(file, history.Options{
		MaxPerWorkspace: cfg.History.MaxPerWorkspace,
		Retention:       cfg.HistoryRetention(),
		Now:             nowFunc,
	})
	return store, path, nil
}

func historyWorkspaces(cmd *cobra.Command, store *history.Store) ([]string, error) {
	if getBoolFlag(cmd, "all") {
		return store.Workspaces(), nil
	}
	workspace, err := resolveWorkspace()
	if err != nil {
		return nil, err
	}
	return []string{workspace}, nil
}

// historyRow is one ranked record as shown by "history list".
type historyRow struct {
	Workspace    string    `json:"workspace" yaml:"workspace"`
	RepoPath     string    `json:"repo_path" yaml:"repo_path"`
	Count        int       `json:"count" yaml:"count"`
	LastSelected time.Time `json:"last_selected" yaml:"last_selected"`
	Score        float64   `json:"score" yaml:"score"`
	Expired      bool      `json:"expired" yaml:"expired"`
}

func historyRows(store *history.Store, workspaces []string) []historyRow {
	now := nowFunc()
	suggested := map[string]bool{}
	var rows []historyRow
	for _, workspace := range workspaces {
		for _, path := range store.Suggestions(workspace) {
			suggested[workspace+"\x00"+path] = true
		}
		for _, r := range store.Records(workspace) {
			rows = append(rows, historyRow{
				Workspace:    workspace,
				RepoPath:     r.RepoPath,
				Count:        r.Count,
				LastSelected: r.Timestamp,
				Score:        store.Score(r, now),
				Expired:      !suggested[workspace+"\x00"+r.RepoPath],
			})
		}
	}
	return rows
}

func writeHistoryTable(cmd *cobra.Command, rows []historyRow, noHeaders bool) error {
	w := tableutil.New(cmd.OutOrStdout(), colorOutputEnabled)
	if err := tableutil.PrintHeaders(w, noHeaders, "WORKSPACE", "REPO", "COUNT", "LAST_SELECTED", "SCORE", "STATE"); err != nil {
		return err
	}
	for _, row := range rows {
		state := termstyle.Colorize(colorOutputEnabled, "active", termstyle.OK)
		if row.Expired {
			state = termstyle.Colorize(colorOutputEnabled, "expired", termstyle.Warn)
		}
		if err := tableutil.PrintRow(w,
			row.Workspace,
			row.RepoPath,
			strconv.Itoa(row.Count),
			row.LastSelected.Local().Format(time.RFC3339),
			strconv.FormatFloat(row.Score, 'f', 2, 64),
			state,
		); err != nil {
			return err
		}
	}
	err := w.Flush()
	logOutputWriteFailure(cmd, "history table", err)
	return nil
}

func init() {
	addFormatFlag(historyListCmd, "output format: table, json, or yaml")
	addNoHeadersFlag(historyListCmd)
	historyListCmd.Flags().Bool("all", false, "list every workspace")
	historyClearCmd.Flags().Bool("all", false, "clear every workspace")
	historyClearCmd.Flags().BoolP("yes", "y", false, "do not ask before clearing every workspace")
	historyCleanupCmd.Flags().Bool("prune-missing", false, "also drop repositories that no longer exist on disk")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyCleanupCmd)
	rootCmd.AddCommand(historyCmd)
}
