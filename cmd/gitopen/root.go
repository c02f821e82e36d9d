// Package gitopen contains the Cobra command tree for the gitopen CLI.
package gitopen

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skaphos/gitopen/internal/engine"
	"github.com/skaphos/gitopen/internal/termstyle"
)

var (
	// Global flags
	flagVerbose   int
	flagQuiet     bool
	flagConfig    string
	flagNoColor   bool
	flagPrint     bool
	flagWorkspace string
	flagAdapter   string
	flagExclude   string
	// colorOutputEnabled is set per command execution based on output format and TTY detection.
	colorOutputEnabled bool
	// exitCode tracks the highest severity observed during a command run.
	exitCode int
	// isTerminalFD is overridable in tests.
	isTerminalFD = term.IsTerminal
	// exitFunc is overridable in tests.
	exitFunc = os.Exit
)

var rootCmd = &cobra.Command{
	Use:   "gitopen",
	Short: "Open git hosting pages for the current repository",
	Long:  "gitopen resolves the remote of a git repository and opens its repository, merge request, or pipeline pages on GitHub, GitLab, Bitbucket, or Azure DevOps.",
	// Errors are printed once by ExecuteWithExitCode.
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// `NO_COLOR` is a standard opt-out and should behave like --no-color.
		if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
			flagNoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase output verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "override config file path")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagPrint, "print", false, "print URLs instead of opening a browser")
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", "", "workspace root used for repository selection and history (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flagAdapter, "adapter", "", "git backend: git or go-git (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagExclude, "exclude", "", "comma-separated globs to skip when scanning the workspace, added to discovery.exclude")
}

// Execute runs the root command.
func Execute() {
	exitFunc(ExecuteWithExitCode())
}

// ExecuteWithExitCode runs the root command and returns a shell-friendly exit code.
func ExecuteWithExitCode() int {
	exitCode = 0
	colorOutputEnabled = false
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return 3
	}
	return exitCode
}

func raiseExitCode(code int) {
	// Keep the highest severity: 0 success, 1 warning, 2 error, 3 fatal.
	if code > exitCode {
		exitCode = code
	}
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func debugf(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet || flagVerbose <= 0 {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	raiseExitCode(1)
	if flagQuiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), termstyle.Colorize(stderrColorEnabled(cmd), "Warning: ", termstyle.Warn)+msg)
}

// reportProblem prints a classified error with its hint and records exit
// code 2. Declined prompts end the command quietly.
func reportProblem(cmd *cobra.Command, err error) error {
	problem := engine.Classify(err)
	if problem.Kind == engine.ProblemNone || problem.Silent() {
		debugf(cmd, "%s", problem.Message)
		return nil
	}
	raiseExitCode(2)
	color := stderrColorEnabled(cmd)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), termstyle.Colorize(color, "Error: ", termstyle.Error)+problem.Message)
	if problem.Hint != "" {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), termstyle.Colorize(color, "Hint: ", termstyle.Info)+problem.Hint)
	}
	debugf(cmd, "error kind %s: %v", problem.Kind, err)
	return nil
}

// newLogger returns the slog logger handed to the engine. Debug traces are
// only emitted at -vv and above so -v keeps the terse debugf output.
func newLogger(cmd *cobra.Command) *slog.Logger {
	if flagQuiet || flagVerbose < 2 {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setColorOutputMode(cmd *cobra.Command, format string) {
	colorOutputEnabled = shouldUseColorOutput(cmd, format)
}

func shouldUseColorOutput(cmd *cobra.Command, format string) bool {
	if flagNoColor || !isTabularFormat(format) {
		return false
	}
	return isTerminalWriter(cmd.OutOrStdout())
}

func stderrColorEnabled(cmd *cobra.Command) bool {
	return !flagNoColor && isTerminalWriter(cmd.ErrOrStderr())
}

func isTerminalWriter(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminalFD(int(file.Fd()))
}

func isTabularFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "table", "wide":
		return true
	default:
		return false
	}
}

func configOverride(_ *cobra.Command) string {
	return strings.TrimSpace(flagConfig)
}
