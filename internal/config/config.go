// Package config handles loading, saving, and resolving the gitopen
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/skaphos/gitopen/internal/model"
	"github.com/skaphos/gitopen/internal/remote"
	"github.com/skaphos/gitopen/internal/vcs"
)

const (
	// LocalConfigFilename is the per-directory gitopen config file.
	LocalConfigFilename = ".gitopen.yaml"
	// ConfigAPIVersion is the current config schema apiVersion.
	ConfigAPIVersion = "skaphos.io/gitopen/v1beta1"
	// ConfigKind is the current config schema kind.
	ConfigKind = "GitOpenConfig"
	// ConfigEnvVar overrides the config file or directory location.
	ConfigEnvVar = "GITOPEN_CONFIG"
	// HistoryFilename is the default history file name next to the config.
	HistoryFilename = "history.yaml"
)

// Defaults holds default values for operations.
type Defaults struct {
	RemoteName     string `yaml:"remote_name"`
	FallbackBranch string `yaml:"fallback_branch"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Adapter        string `yaml:"adapter"`
}

// Cache holds fact cache lifetimes in seconds.
type Cache struct {
	RemoteURLSeconds     int `yaml:"remote_url_seconds"`
	RemoteInfoSeconds    int `yaml:"remote_info_seconds"`
	CurrentBranchSeconds int `yaml:"current_branch_seconds"`
	DefaultBranchSeconds int `yaml:"default_branch_seconds"`
}

// History controls the recently-used repository list.
type History struct {
	MaxPerWorkspace int    `yaml:"max_per_workspace"`
	RetentionHours  int    `yaml:"retention_hours"`
	Path            string `yaml:"path,omitempty"`
}

// Discovery controls the workspace repository walk.
type Discovery struct {
	Exclude  []string `yaml:"exclude"`
	MaxDepth int      `yaml:"max_depth"`
}

// Config represents the gitopen configuration.
type Config struct {
	APIVersion      string                    `yaml:"apiVersion"`
	Kind            string                    `yaml:"kind"`
	ProviderDomains map[string]model.Provider `yaml:"provider_domains,omitempty"`
	Defaults        Defaults                  `yaml:"defaults"`
	Cache           Cache                     `yaml:"cache"`
	History         History                   `yaml:"history"`
	Discovery       Discovery                 `yaml:"discovery"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	ttls := vcs.DefaultTTLs()
	return Config{
		APIVersion: ConfigAPIVersion,
		Kind:       ConfigKind,
		Defaults: Defaults{
			RemoteName:     "origin",
			FallbackBranch: "main",
			TimeoutSeconds: 10,
			Adapter:        vcs.AdapterGit,
		},
		Cache: Cache{
			RemoteURLSeconds:     int(ttls.RemoteURL / time.Second),
			RemoteInfoSeconds:    int(ttls.RemoteInfo / time.Second),
			CurrentBranchSeconds: int(ttls.CurrentBranch / time.Second),
			DefaultBranchSeconds: int(ttls.DefaultBranch / time.Second),
		},
		History: History{
			MaxPerWorkspace: 5,
			RetentionHours:  7 * 24,
		},
		Discovery: Discovery{
			Exclude:  []string{"**/node_modules/**", "**/.terraform/**", "**/dist/**", "**/vendor/**"},
			MaxDepth: 4,
		},
	}
}

// explicitLocation returns the override, or GITOPEN_CONFIG when no
// override is given. Empty means the platform default applies.
func explicitLocation(override string) string {
	if override != "" {
		return override
	}
	return os.Getenv(ConfigEnvVar)
}

func defaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "gitopen"), nil
}

// ConfigDir returns the directory holding the config file: the override,
// then GITOPEN_CONFIG, then os.UserConfigDir()/gitopen. File locations
// yield their parent directory.
func ConfigDir(override string) (string, error) {
	loc := explicitLocation(override)
	switch {
	case loc == "":
		return defaultConfigDir()
	case isConfigFilePath(loc):
		return filepath.Dir(loc), nil
	default:
		return loc, nil
	}
}

// ConfigPath returns the config file path using the same lookup as
// ConfigDir. Directory locations get config.yaml appended.
func ConfigPath(override string) (string, error) {
	loc := explicitLocation(override)
	if loc != "" && isConfigFilePath(loc) {
		return loc, nil
	}
	dir, err := ConfigDir(override)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func workingDir(cwd string) (string, error) {
	if strings.TrimSpace(cwd) != "" {
		return cwd, nil
	}
	return os.Getwd()
}

// InitConfigPath picks the file "gitopen init" writes. An explicit
// location wins; local selects .gitopen.yaml in cwd over the global file.
func InitConfigPath(override, cwd string, local bool) (string, error) {
	if !local || explicitLocation(override) != "" {
		return ConfigPath(override)
	}
	dir, err := workingDir(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LocalConfigFilename), nil
}

// ResolveConfigPath picks the file runtime commands read: an explicit
// location, else the nearest .gitopen.yaml at or above cwd, else the
// global file.
func ResolveConfigPath(override, cwd string) (string, error) {
	if explicitLocation(override) != "" {
		return ConfigPath(override)
	}
	dir, err := workingDir(cwd)
	if err != nil {
		return "", err
	}
	nearest, err := FindNearestConfigPath(dir)
	if err != nil || nearest != "" {
		return nearest, err
	}
	return ConfigPath("")
}

// FindNearestConfigPath looks for .gitopen.yaml in cwd and its ancestors.
// An empty result means none exists.
func FindNearestConfigPath(cwd string) (string, error) {
	for dir := cwd; ; {
		candidate := filepath.Join(dir, LocalConfigFilename)
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// normalize fills in apiVersion/kind, validates them and canonicalizes
// provider_domains.
func (c *Config) normalize() error {
	applyConfigGVK(c)
	if err := validateConfigGVK(c); err != nil {
		return err
	}
	domains, err := normalizeProviderDomains(c.ProviderDomains)
	if err != nil {
		return err
	}
	c.ProviderDomains = domains
	return nil
}

// Load reads and validates the config at path. Zero-valued settings take
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	applyZeroDefaults(&cfg)
	return &cfg, nil
}

// LoadOrDefault reads path, returning DefaultConfig when the file does not
// exist. The bool reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	switch {
	case err == nil:
		return cfg, true, nil
	case errors.Is(err, os.ErrNotExist):
		def := DefaultConfig()
		return &def, false, nil
	default:
		return nil, false, err
	}
}

// Save validates cfg and writes it to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := cfg.normalize(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ProviderDomainTable returns the built-in domains overlaid with the
// configured provider_domains entries.
func (c *Config) ProviderDomainTable() remote.Domains {
	if c == nil {
		return remote.DefaultDomains()
	}
	return remote.MergeDomains(remote.DefaultDomains(), remote.Domains(c.ProviderDomains))
}

// SetProviderDomain maps host (or a parent domain) to provider.
func (c *Config) SetProviderDomain(host, provider string) error {
	host = normalizeDomainKey(host)
	if host == "" {
		return errors.New("host must not be empty")
	}
	if strings.Contains(host, "/") {
		return fmt.Errorf("host %q must not contain a scheme or path", host)
	}
	p, err := model.ParseProvider(provider)
	if err != nil {
		return err
	}
	if c.ProviderDomains == nil {
		c.ProviderDomains = map[string]model.Provider{}
	}
	c.ProviderDomains[host] = p
	return nil
}

// UnsetProviderDomain removes a configured mapping. It reports whether an
// entry existed. Built-in defaults are not affected.
func (c *Config) UnsetProviderDomain(host string) bool {
	host = normalizeDomainKey(host)
	if _, ok := c.ProviderDomains[host]; !ok {
		return false
	}
	delete(c.ProviderDomains, host)
	if len(c.ProviderDomains) == 0 {
		c.ProviderDomains = nil
	}
	return true
}

// ConfiguredDomainHosts returns the user-configured hosts in sorted order.
func (c *Config) ConfiguredDomainHosts() []string {
	hosts := make([]string, 0, len(c.ProviderDomains))
	for host := range c.ProviderDomains {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// CacheTTLs converts the cache section to durations.
func (c *Config) CacheTTLs() vcs.TTLs {
	return vcs.TTLs{
		RemoteURL:     seconds(c.Cache.RemoteURLSeconds),
		RemoteInfo:    seconds(c.Cache.RemoteInfoSeconds),
		CurrentBranch: seconds(c.Cache.CurrentBranchSeconds),
		DefaultBranch: seconds(c.Cache.DefaultBranchSeconds),
	}
}

// Timeout returns the per-command git timeout.
func (c *Config) Timeout() time.Duration {
	return seconds(c.Defaults.TimeoutSeconds)
}

// HistoryRetention returns the history retention window.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.History.RetentionHours) * time.Hour
}

// ResolveHistoryPath resolves history.path against the config file location.
// Absolute paths are returned unchanged; relative paths are joined to the
// directory containing configPath. An empty history path selects
// history.yaml next to the config.
func ResolveHistoryPath(configPath, historyPath string) string {
	if strings.TrimSpace(historyPath) == "" {
		historyPath = HistoryFilename
	}
	if filepath.IsAbs(historyPath) || strings.TrimSpace(configPath) == "" {
		return filepath.Clean(historyPath)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(configPath), historyPath))
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func normalizeDomainKey(host string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}

func applyZeroDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Defaults.RemoteName == "" {
		cfg.Defaults.RemoteName = def.Defaults.RemoteName
	}
	if cfg.Defaults.FallbackBranch == "" {
		cfg.Defaults.FallbackBranch = def.Defaults.FallbackBranch
	}
	if cfg.Defaults.TimeoutSeconds <= 0 {
		cfg.Defaults.TimeoutSeconds = def.Defaults.TimeoutSeconds
	}
	if cfg.Defaults.Adapter == "" {
		cfg.Defaults.Adapter = def.Defaults.Adapter
	}
	if cfg.Cache.RemoteURLSeconds <= 0 {
		cfg.Cache.RemoteURLSeconds = def.Cache.RemoteURLSeconds
	}
	if cfg.Cache.RemoteInfoSeconds <= 0 {
		cfg.Cache.RemoteInfoSeconds = def.Cache.RemoteInfoSeconds
	}
	if cfg.Cache.CurrentBranchSeconds <= 0 {
		cfg.Cache.CurrentBranchSeconds = def.Cache.CurrentBranchSeconds
	}
	if cfg.Cache.DefaultBranchSeconds <= 0 {
		cfg.Cache.DefaultBranchSeconds = def.Cache.DefaultBranchSeconds
	}
	if cfg.History.MaxPerWorkspace <= 0 {
		cfg.History.MaxPerWorkspace = def.History.MaxPerWorkspace
	}
	if cfg.History.RetentionHours <= 0 {
		cfg.History.RetentionHours = def.History.RetentionHours
	}
	if cfg.Discovery.MaxDepth <= 0 {
		cfg.Discovery.MaxDepth = def.Discovery.MaxDepth
	}
}

// normalizeProviderDomains lowercases hosts and provider tags and rejects
// tags gitopen has no URL templates for.
func normalizeProviderDomains(domains map[string]model.Provider) (map[string]model.Provider, error) {
	if len(domains) == 0 {
		return nil, nil
	}
	out := make(map[string]model.Provider, len(domains))
	for host, provider := range domains {
		key := normalizeDomainKey(host)
		if key == "" {
			return nil, errors.New("provider_domains: empty host key")
		}
		p, err := model.ParseProvider(string(provider))
		if err != nil {
			return nil, fmt.Errorf("provider_domains[%s]: %w", host, err)
		}
		out[key] = p
	}
	return out, nil
}

func isConfigFilePath(path string) bool {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, "config.yaml") || strings.HasSuffix(lower, "config.yml") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func applyConfigGVK(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = ConfigAPIVersion
	}
	if strings.TrimSpace(cfg.Kind) == "" {
		cfg.Kind = ConfigKind
	}
}

func validateConfigGVK(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.APIVersion != ConfigAPIVersion {
		return fmt.Errorf("unsupported config apiVersion %q (expected %q)", cfg.APIVersion, ConfigAPIVersion)
	}
	if cfg.Kind != ConfigKind {
		return fmt.Errorf("unsupported config kind %q (expected %q)", cfg.Kind, ConfigKind)
	}
	return nil
}
