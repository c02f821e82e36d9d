package gitopen

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	noHeadersUsage    = "when using table format, do not print headers"
	sourceBranchUsage = "source branch (default: current branch)"
	targetBranchUsage = "target branch (default: the remote's default branch)"
)

func addFormatFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringP("format", "o", "table", usage)
}

func addNoHeadersFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("no-headers", false, noHeadersUsage)
}

func addBranchFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", sourceBranchUsage)
	cmd.Flags().String("target", "", targetBranchUsage)
}

func getStringFlag(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func getBoolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return value
}
