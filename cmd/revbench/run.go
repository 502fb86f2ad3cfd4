package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"revbench/internal/config"
	"revbench/internal/git"
	"revbench/internal/history"
	"revbench/internal/hyperfine"
	"revbench/internal/ui"
	"revbench/internal/workflow"
)

var (
	runOutput      string
	runAllowDirty  bool
	runKeepScratch bool
	runSave        bool
)

// Seams for tests.
var (
	runnerFactory  = func() hyperfine.Runner { return hyperfine.CLI{} }
	preflightCheck = hyperfine.Preflight
)

var runCmd = &cobra.Command{
	Use:   "run [config]",
	Short: "Execute the runs of a benchmark definition",
	Long: `Loads a TOML benchmark definition (default: bench.toml), expands each
run's commit list, launches one hyperfine invocation per run, and
merges the exported results into a single report.

Runs that name commits check out each revision in turn; the original
checkout is restored when the invocation ends, however it ends.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Override the report destination from the definition")
	runCmd.Flags().BoolVar(&runAllowDirty, "allow-dirty", false, "Run even when the working tree has uncommitted changes")
	runCmd.Flags().BoolVar(&runKeepScratch, "keep-scratch", false, "Keep the per-run export files")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Record the invocation in the history database")
}

func configPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "bench.toml"
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := configPath(args)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if runOutput != "" {
		cfg.Output = runOutput
	}

	if err := preflightCheck(cfg.Tool(), cfg.HasAnnotations()); err != nil {
		return err
	}

	client := git.NewClient(".")
	if !runAllowDirty {
		if err := client.CheckClean(ctx); err != nil {
			if errors.Is(err, git.ErrDirty) {
				return fmt.Errorf("%w; commit or stash your changes, or pass --allow-dirty", err)
			}
			return err
		}
	}

	wf := workflow.New(cfg, client, client, runnerFactory())
	wf.KeepScratch = runKeepScratch

	summary, err := wf.Execute(ctx)
	if summary != nil {
		ui.RenderSummary(cmd.ErrOrStderr(), summary)
		if runSave {
			if saveErr := saveInvocation(path, summary); saveErr != nil {
				slog.Warn("failed to record invocation", "error", saveErr)
			}
		}
	}
	return err
}

func saveInvocation(configPath string, s *workflow.Summary) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	report := ""
	if s.Report != nil {
		if data, err := json.Marshal(s.Report); err == nil {
			report = string(data)
		}
	}
	return store.SaveInvocation(history.Invocation{
		Config:    configPath,
		Output:    s.Output,
		Runs:      len(s.Runs),
		Succeeded: s.Succeeded(),
		Report:    report,
	})
}
