package gitopen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

// logOutputWriteFailure records non-fatal output write/flush failures.
// CLI consumers frequently pipe to tools that close early (for example `head`),
// so we log and continue instead of treating these as command failures.
func logOutputWriteFailure(cmd *cobra.Command, context string, err error) {
	if err == nil {
		return
	}
	debugf(cmd, "ignored output write failure (%s): %v", context, err)
}

// writeStructured renders value as json or yaml. It reports false for any
// other format so callers can fall back to a table.
func writeStructured(cmd *cobra.Command, format string, value any) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		logOutputWriteFailure(cmd, "json", err)
		return true, nil
	case "yaml":
		data, err := yaml.Marshal(value)
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
		logOutputWriteFailure(cmd, "yaml", err)
		return true, nil
	case "table", "wide", "":
		return false, nil
	default:
		return true, fmt.Errorf("unsupported format %q (expected table, json, or yaml)", format)
	}
}
