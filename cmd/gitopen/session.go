package gitopen

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitopen/internal/browser"
	"github.com/skaphos/gitopen/internal/cliio"
	"github.com/skaphos/gitopen/internal/config"
	"github.com/skaphos/gitopen/internal/engine"
	"github.com/skaphos/gitopen/internal/gitx"
	"github.com/skaphos/gitopen/internal/history"
	"github.com/skaphos/gitopen/internal/strutil"
	"github.com/skaphos/gitopen/internal/vcs"
)

var (
	// gitRunner backs the git adapter; nil runs the git binary. Overridable in tests.
	gitRunner gitx.Runner
	// systemOpener launches the browser. Overridable in tests.
	systemOpener browser.Opener = browser.SystemOpener{}
	// stdinIsTerminal gates interactive prompts. Overridable in tests.
	stdinIsTerminal = func() bool { return isTerminalFD(int(os.Stdin.Fd())) }
	// nowFunc is the clock for caches and history. Overridable in tests.
	nowFunc = time.Now
)

// session is the per-command state shared by the commands that act on a
// repository.
type session struct {
	cfg         *config.Config
	cfgPath     string
	historyPath string
	workspace   string
	store       *history.Store
	eng         *engine.Engine
}

func loadConfigForCommand(cmd *cobra.Command) (*config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	cfgPath, err := config.ResolveConfigPath(configOverride(cmd), cwd)
	if err != nil {
		return nil, "", err
	}
	cfg, loaded, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, "", err
	}
	if loaded {
		debugf(cmd, "using config %s", cfgPath)
	} else {
		debugf(cmd, "no config at %s, using defaults", cfgPath)
	}
	return cfg, cfgPath, nil
}

func resolveWorkspace() (string, error) {
	workspace := flagWorkspace
	if workspace == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		workspace = cwd
	}
	return filepath.Abs(workspace)
}

func selectedAdapterForCommand(cfg *config.Config) (vcs.Adapter, error) {
	raw := flagAdapter
	if raw == "" {
		raw = cfg.Defaults.Adapter
	}
	return vcs.NewAdapterForSelection(raw, gitRunner)
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, cfgPath, err := loadConfigForCommand(cmd)
	if err != nil {
		return nil, err
	}
	workspace, err := resolveWorkspace()
	if err != nil {
		return nil, err
	}
	adapter, err := selectedAdapterForCommand(cfg)
	if err != nil {
		return nil, err
	}
	historyPath := config.ResolveHistoryPath(cfgPath, cfg.History.Path)
	file, err := history.LoadOrEmpty(historyPath)
	if err != nil {
		return nil, err
	}
	store := history.NewStore(file, history.Options{
		MaxPerWorkspace: cfg.History.MaxPerWorkspace,
		Retention:       cfg.HistoryRetention(),
		Now:             nowFunc,
	})
	source := vcs.NewCachingSource(adapter, vcs.SourceOptions{
		RemoteName:     cfg.Defaults.RemoteName,
		FallbackBranch: cfg.Defaults.FallbackBranch,
		TTLs:           cfg.CacheTTLs(),
		Now:            nowFunc,
	})
	debugf(cmd, "workspace %s, adapter %s", workspace, source.AdapterName())

	eng := engine.New(engine.Options{
		Adapter: adapter,
		Source:  source,
		Domains: cfg.ProviderDomainTable(),
		History: store,
		Discovery: engine.DiscoveryOptions{
			Exclude:  discoveryExcludes(cfg),
			MaxDepth: cfg.Discovery.MaxDepth,
		},
		Prompter: promptForCommand(cmd),
		Logger:   newLogger(cmd),
	})
	return &session{
		cfg:         cfg,
		cfgPath:     cfgPath,
		historyPath: historyPath,
		workspace:   workspace,
		store:       store,
		eng:         eng,
	}, nil
}

func discoveryExcludes(cfg *config.Config) []string {
	excludes := append([]string(nil), cfg.Discovery.Exclude...)
	return append(excludes, strutil.SplitCSV(flagExclude)...)
}

// timeoutContext bounds git work by defaults.timeout_seconds.
func (s *session) timeoutContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(commandContext(cmd), s.cfg.Timeout())
}

// selectRepo picks the repository and persists history when it changed.
func (s *session) selectRepo(cmd *cobra.Command) (engine.Selection, error) {
	sel, err := s.eng.SelectRepo(commandContext(cmd), s.workspace)
	if err != nil {
		return engine.Selection{}, err
	}
	debugf(cmd, "selected %s", sel.Path)
	if sel.Recorded {
		if err := history.Save(s.store.File(), s.historyPath); err != nil {
			warnf(cmd, "could not save history to %s: %v", s.historyPath, err)
		}
	}
	return sel, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// stdioPrompter asks on stderr so stdout stays clean for --print.
type stdioPrompter struct {
	out io.Writer
	in  io.Reader
}

func (p stdioPrompter) Choose(prompt string, options []string, defaultIndex int) (int, error) {
	return cliio.PromptChoice(p.out, p.in, prompt, options, defaultIndex)
}

// promptForCommand returns nil when stdin is not interactive; selection
// then falls back to history.
func promptForCommand(cmd *cobra.Command) engine.Prompter {
	if !stdinIsTerminal() {
		return nil
	}
	return stdioPrompter{out: cmd.ErrOrStderr(), in: cmd.InOrStdin()}
}

func openerFor(cmd *cobra.Command, printOnly bool) browser.Opener {
	if printOnly || flagPrint {
		return browser.PrintOpener{Out: cmd.OutOrStdout()}
	}
	return systemOpener
}
