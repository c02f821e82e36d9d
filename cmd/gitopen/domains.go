package gitopen

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitopen/internal/config"
	"github.com/skaphos/gitopen/internal/model"
	"github.com/skaphos/gitopen/internal/remote"
	"github.com/skaphos/gitopen/internal/tableutil"
	"github.com/skaphos/gitopen/internal/termstyle"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Manage the host to provider table",
	Long:  "Hosts map to providers by exact match or by parent domain. Built-in entries cover github.com, gitlab.com, and bitbucket.org; entries in the config file extend or override them.",
}

var domainsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List provider domains",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := getStringFlag(cmd, "format")
		setColorOutputMode(cmd, format)
		cfg, _, err := loadConfigForCommand(cmd)
		if err != nil {
			return err
		}
		entries := domainEntries(cfg)
		handled, err := writeStructured(cmd, format, entries)
		if err != nil || handled {
			return err
		}
		return writeDomainsTable(cmd, entries, getBoolFlag(cmd, "no-headers"))
	},
}

var domainsSetCmd = &cobra.Command{
	Use:   "set <host> <provider>",
	Short: "Map a host or parent domain to a provider",
	Long:  "Maps a host such as git.example.com, or a parent domain such as example.com, to one of github, gitlab, bitbucket, or azure.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := loadConfigForCommand(cmd)
		if err != nil {
			return err
		}
		if err := cfg.SetProviderDomain(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(cfg, cfgPath); err != nil {
			return err
		}
		host := normalizeHostArg(args[0])
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Mapped %s to %s in %s\n", host, cfg.ProviderDomains[host], cfgPath)
		logOutputWriteFailure(cmd, "domains set", err)
		return nil
	},
}

var domainsUnsetCmd = &cobra.Command{
	Use:     "unset <host>",
	Aliases: []string{"rm"},
	Short:   "Remove a configured provider domain",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := loadConfigForCommand(cmd)
		if err != nil {
			return err
		}
		if !cfg.UnsetProviderDomain(args[0]) {
			if _, builtin := remote.DefaultDomains()[normalizeHostArg(args[0])]; builtin {
				warnf(cmd, "%s is built in and cannot be removed; override it with gitopen domains set", args[0])
			} else {
				configured := "none"
				if hosts := cfg.ConfiguredDomainHosts(); len(hosts) > 0 {
					configured = strings.Join(hosts, ", ")
				}
				warnf(cmd, "%s is not configured in %s (configured: %s)", args[0], cfgPath, configured)
			}
			return nil
		}
		if err := config.Save(cfg, cfgPath); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[0], cfgPath)
		logOutputWriteFailure(cmd, "domains unset", err)
		return nil
	},
}

func normalizeHostArg(host string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}

// domainEntry is one row of the effective domain table.
type domainEntry struct {
	Host     string         `json:"host" yaml:"host"`
	Provider model.Provider `json:"provider" yaml:"provider"`
	// Source is builtin, config, or override (config replacing a builtin).
	Source string `json:"source" yaml:"source"`
}

func domainEntries(cfg *config.Config) []domainEntry {
	builtin := remote.DefaultDomains()
	table := cfg.ProviderDomainTable()
	entries := make([]domainEntry, 0, len(table))
	for _, host := range table.Hosts() {
		source := "builtin"
		if _, configured := cfg.ProviderDomains[host]; configured {
			source = "config"
			if _, ok := builtin[host]; ok {
				source = "override"
			}
		}
		entries = append(entries, domainEntry{Host: host, Provider: table[host], Source: source})
	}
	return entries
}

func writeDomainsTable(cmd *cobra.Command, entries []domainEntry, noHeaders bool) error {
	w := tableutil.New(cmd.OutOrStdout(), colorOutputEnabled)
	if err := tableutil.PrintHeaders(w, noHeaders, "HOST", "PROVIDER", "SOURCE"); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := tableutil.PrintRow(w, entry.Host, termstyle.Provider(colorOutputEnabled, entry.Provider), entry.Source); err != nil {
			return err
		}
	}
	err := w.Flush()
	logOutputWriteFailure(cmd, "domains table", err)
	return nil
}

func init() {
	addFormatFlag(domainsListCmd, "output format: table, json, or yaml")
	addNoHeadersFlag(domainsListCmd)

	domainsCmd.AddCommand(domainsListCmd)
	domainsCmd.AddCommand(domainsSetCmd)
	domainsCmd.AddCommand(domainsUnsetCmd)
	rootCmd.AddCommand(domainsCmd)
}
