package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"revbench/internal/commits"
	"revbench/internal/config"
	"revbench/internal/git"
	"revbench/internal/hyperfine"
	"revbench/internal/ui"
)

var planCmd = &cobra.Command{
	Use:   "plan [config]",
	Short: "Show the hyperfine invocations a definition would execute",
	Long: `Loads a benchmark definition, expands each run's commit list against
the repository, and prints the hyperfine command line each run would
launch, without executing anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath(args))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := git.NewClient(".")

	labels := cfg.Labels()
	argv := make(map[string][]string, len(labels))
	for _, label := range labels {
		run := cfg.Runs[label]
		revs, err := commits.Resolve(ctx, client, run.Commits)
		if err != nil {
			return fmt.Errorf("run %q: %w", label, err)
		}
		export := filepath.Join("<scratch>", label+".json")
		argv[label] = hyperfine.Args(label, run, revs, export, cfg.HyperfineParams)
	}

	ui.RenderPlan(cmd.OutOrStdout(), labels, argv)
	return nil
}
