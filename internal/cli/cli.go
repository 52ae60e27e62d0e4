// Package cli builds the command-line surface shared by macapps and
// macprefs. Both tools carry the same flags and lifecycle — resolve
// settings, optionally save them, plan, execute, summarize — and differ
// only in their catalog, planner, and backends.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"macsetup/internal/catalog"
	"macsetup/internal/cfgfile"
	"macsetup/internal/execute"
	"macsetup/internal/history"
	"macsetup/internal/plan"
	"macsetup/internal/session"
)

// Tool describes one of the two setup binaries.
type Tool struct {
	Name      string // binary name, also the history tool tag
	Short     string
	Settings  []catalog.Setting
	BuildPlan func(values map[string]string) []plan.Action
	Deps      execute.Deps

	// Stdin and DataDir exist for tests; zero values mean os.Stdin and
	// the default history location.
	Stdin   io.Reader
	DataDir string
}

// NewRootCommand builds the tool's root command with the shared flag
// contract and a history subcommand.
func NewRootCommand(tool Tool) *cobra.Command {
	root := &cobra.Command{
		Use:           tool.Name,
		Short:         tool.Short,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, tool)
		},
	}

	root.Flags().BoolP("use-config", "c", false, "load saved config, still prompt for every setting")
	root.Flags().BoolP("skip-prompts", "s", false, "load saved config and ask nothing (config file required)")
	root.Flags().BoolP("save-config", "o", false, "resolve and save settings, then stop without executing")
	root.Flags().StringP("config-file", "f", cfgfile.DefaultPath(), "config file location")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newHistoryCommand(tool))
	return root
}

// Main executes the tool and maps errors to the documented exit codes:
// 0 on success (including help and save-only), 1 on unknown flags and
// fatal errors.
func Main(tool Tool) {
	if err := NewRootCommand(tool).Execute(); err != nil {
		printError("%v", err)
		fmt.Fprintf(os.Stderr, "run %s --help for usage\n", tool.Name)
		os.Exit(1)
	}
}

func runTool(cmd *cobra.Command, tool Tool) error {
	useConfig, _ := cmd.Flags().GetBool("use-config")
	skipPrompts, _ := cmd.Flags().GetBool("skip-prompts")
	saveOnly, _ := cmd.Flags().GetBool("save-config")
	configPath, _ := cmd.Flags().GetString("config-file")

	setupLogging()

	mode := session.Interactive
	switch {
	case skipPrompts:
		mode = session.SkipPrompts
	case useConfig:
		mode = session.UseConfig
	}

	stdin := tool.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	sess := &session.Session{
		Path:     configPath,
		Mode:     mode,
		SaveOnly: saveOnly,
		Settings: tool.Settings,
		Asker:    &session.TerminalAsker{In: stdin, Out: os.Stderr},
		Info:     printStep,
		Warn:     printWarning,
	}

	values, err := sess.Resolve()
	if err != nil {
		return err
	}

	saved, err := sess.ConfirmAndSave(values)
	if err != nil {
		return err
	}
	if saveOnly {
		if saved {
			printSuccess("configuration written, nothing executed")
		} else {
			printStep("save declined, nothing written")
		}
		return nil
	}

	actions := tool.BuildPlan(values)
	if len(actions) == 0 {
		printStep("nothing to do")
		return nil
	}

	startedAt := time.Now()
	outcomes := execute.Run(cmd.Context(), actions, tool.Deps, func(o execute.Outcome) {
		if o.OK {
			printSuccess("%s", o.Action)
			return
		}
		printWarning("%s: %s", o.Action, o.Detail)
	})

	summarize(tool, outcomes)
	recordHistory(tool, startedAt, outcomes)
	return nil
}

// summarize prints the requested-vs-succeeded report. It always prints,
// whatever the individual settings were.
func summarize(tool Tool, outcomes []execute.Outcome) {
	succeeded := 0
	var failed []execute.Outcome
	for _, o := range outcomes {
		if o.OK {
			succeeded++
		} else {
			failed = append(failed, o)
		}
	}

	fmt.Fprintln(os.Stderr)
	printStatus("Requested", "%d actions", len(outcomes))
	printStatus("Succeeded", "%d", succeeded)
	for _, o := range outcomes {
		if o.OK {
			printSuccess("%s (%s)", o.Action, o.Detail)
		}
	}
	for _, o := range failed {
		printWarning("%s: %s", o.Action, o.Detail)
	}
}

// recordHistory appends the run to the local history database.
// Best-effort: a history failure is a warning, never a run failure.
func recordHistory(tool Tool, startedAt time.Time, outcomes []execute.Outcome) {
	dataDir := tool.DataDir
	if dataDir == "" {
		dataDir = history.DefaultDataDir()
	}

	store, err := history.Open(dataDir)
	if err != nil {
		printWarning("run history unavailable: %v", err)
		return
	}
	defer store.Close()

	records := make([]history.ActionRecord, len(outcomes))
	for i, o := range outcomes {
		records[i] = history.ActionRecord{Action: o.Action.String(), OK: o.OK, Detail: o.Detail}
	}
	if _, err := store.RecordRun(tool.Name, startedAt, records); err != nil {
		printWarning("recording run history: %v", err)
	}
}

func newHistoryCommand(tool Tool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs of this tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			dataDir := tool.DataDir
			if dataDir == "" {
				dataDir = history.DefaultDataDir()
			}
			store, err := history.Open(dataDir)
			if err != nil {
				return fmt.Errorf("opening run history: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(tool.Name, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}

			for _, r := range runs {
				fmt.Printf("%s  %s  %d/%d succeeded\n",
					colorize(colorCyan, r.ID[:8]),
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					r.Succeeded, r.Total,
				)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "maximum number of runs to list")
	return cmd
}

func setupLogging() {
	level := slog.LevelWarn
	if v := os.Getenv("MACSETUP_DEBUG"); v != "" && !strings.EqualFold(v, "0") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
