package gitopen

import (
	"github.com/spf13/cobra"

	"github.com/skaphos/gitopen/internal/cliio"
	"github.com/skaphos/gitopen/internal/engine"
	"github.com/skaphos/gitopen/internal/model"
	"github.com/skaphos/gitopen/internal/termstyle"
	"github.com/skaphos/gitopen/internal/weburl"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the resolved remote for the selected repository",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	debugf(cmd, "starting info")
	format := getStringFlag(cmd, "format")
	noHeaders := getBoolFlag(cmd, "no-headers")
	setColorOutputMode(cmd, format)

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	sel, err := sess.selectRepo(cmd)
	if err != nil {
		return reportProblem(cmd, err)
	}
	ctx, cancel := sess.timeoutContext(cmd)
	defer cancel()
	details, err := sess.eng.Details(ctx, sel.Path)
	if err != nil {
		return reportProblem(cmd, err)
	}

	handled, err := writeStructured(cmd, format, details)
	if err != nil {
		return err
	}
	if !handled {
		if err := writeInfoTable(cmd, details, noHeaders); err != nil {
			return err
		}
	}
	if details.Remote.Provider == model.ProviderUnknown {
		problem := engine.Classify(&weburl.UnsupportedProviderError{BaseURL: details.Remote.BaseURL})
		warnf(cmd, "%s", problem.Message)
		if problem.Hint != "" {
			infof(cmd, "Hint: %s", problem.Hint)
		}
	}
	return nil
}

func writeInfoTable(cmd *cobra.Command, details model.RepoDetails, noHeaders bool) error {
	rows := [][]string{
		{"PATH", details.Path},
		{"REMOTE", details.RemoteName},
		{"REMOTE_URL", details.RemoteURL},
		{"PROVIDER", termstyle.Provider(colorOutputEnabled, details.Remote.Provider)},
		{"OWNER", details.Remote.Owner},
		{"REPO", details.Remote.Repo},
		{"BASE_URL", details.Remote.BaseURL},
		{"CURRENT_BRANCH", details.CurrentBranch},
		{"DEFAULT_BRANCH", details.DefaultBranch},
	}
	err := cliio.WriteTable(cmd.OutOrStdout(), colorOutputEnabled, noHeaders, []string{"FIELD", "VALUE"}, rows)
	logOutputWriteFailure(cmd, "info table", err)
	return nil
}

func init() {
	addFormatFlag(infoCmd, "output format: table, json, or yaml")
	addNoHeadersFlag(infoCmd)

	rootCmd.AddCommand(infoCmd)
}
