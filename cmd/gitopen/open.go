package gitopen

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitopen/internal/engine"
	"github.com/skaphos/gitopen/internal/weburl"
)

var repoCmd = &cobra.Command{
	Use:     "repo",
	Aliases: []string{"home"},
	Short:   weburl.ActionRepo.Description(),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, weburl.ActionRepo, false)
	},
}

var mrsCmd = &cobra.Command{
	Use:     "mrs",
	Aliases: []string{"prs"},
	Short:   weburl.ActionMergeRequests.Description(),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, weburl.ActionMergeRequests, false)
	},
}

var mrCmd = &cobra.Command{
	Use:     "mr",
	Aliases: []string{"pr"},
	Short:   "Work with merge requests/pull requests",
}

var mrCreateCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"new"},
	Short:   weburl.ActionCreateMergeRequest.Description(),
	Long:    "Opens the compose view for merging the current branch into the remote's default branch. Use --source and --target to pick other branches.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, weburl.ActionCreateMergeRequest, false)
	},
}

var pipelinesCmd = &cobra.Command{
	Use:     "pipelines",
	Aliases: []string{"ci"},
	Short:   weburl.ActionPipelines.Description(),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, weburl.ActionPipelines, false)
	},
}

var urlCmd = &cobra.Command{
	Use:   "url <action>",
	Short: "Print the URL for an action without opening it",
	Long:  "Prints the URL for one of: repo, merge-requests (mrs), create-merge-request (mr), pipelines (ci).",
	Args:  cobra.ExactArgs(1),
	ValidArgs: []string{
		string(weburl.ActionRepo),
		string(weburl.ActionMergeRequests),
		string(weburl.ActionCreateMergeRequest),
		string(weburl.ActionPipelines),
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := weburl.ParseAction(args[0])
		if err != nil {
			return err
		}
		return runAction(cmd, action, true)
	},
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose an action from a menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompter := promptForCommand(cmd)
		if prompter == nil {
			return errors.New("pick needs an interactive terminal; use repo, mrs, mr create, or pipelines instead")
		}
		actions := weburl.Actions()
		labels := make([]string, len(actions))
		for i, action := range actions {
			labels[i] = action.Description()
		}
		choice, err := prompter.Choose("Select an action to perform:", labels, -1)
		if err != nil {
			return reportProblem(cmd, err)
		}
		return runAction(cmd, actions[choice], false)
	},
}

// runAction selects a repository, builds the URL for action, and opens or
// prints it.
func runAction(cmd *cobra.Command, action weburl.Action, printOnly bool) error {
	debugf(cmd, "starting %s", action)
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
	target, err := sess.eng.Target(ctx, sel.Path, action, branchOptions(cmd))
	if err != nil {
		return reportProblem(cmd, err)
	}
	if target.Unmapped {
		problem := engine.Classify(&weburl.UnsupportedProviderError{BaseURL: target.Remote.BaseURL})
		warnf(cmd, "%s; opening %s as a plain link", problem.Message, target.URL)
		if problem.Hint != "" {
			infof(cmd, "Hint: %s", problem.Hint)
		}
	}
	if action.NeedsBranches() {
		debugf(cmd, "merge %s into %s", target.SourceBranch, target.TargetBranch)
	}

	opener := openerFor(cmd, printOnly)
	if err := opener.Open(commandContext(cmd), target.URL); err != nil {
		warnf(cmd, "could not open a browser: %v", err)
		_, err = fmt.Fprintln(cmd.OutOrStdout(), target.URL)
		logOutputWriteFailure(cmd, "url", err)
		return nil
	}
	if !printOnly && !flagPrint {
		infof(cmd, "Opened %s", target.URL)
	}
	return nil
}

// branchOptions reads --source/--target where the command defines them.
func branchOptions(cmd *cobra.Command) engine.TargetOptions {
	return engine.TargetOptions{
		SourceBranch: getStringFlag(cmd, "source"),
		TargetBranch: getStringFlag(cmd, "target"),
	}
}

func init() {
	addBranchFlags(mrCreateCmd)
	addBranchFlags(urlCmd)
	addBranchFlags(pickCmd)

	mrCmd.AddCommand(mrCreateCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(mrsCmd)
	rootCmd.AddCommand(mrCmd)
	rootCmd.AddCommand(pipelinesCmd)
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(pickCmd)
}
