package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"revbench/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Interactively create a benchmark definition",
	Long: `Walks through the questions needed for a first benchmark definition
and writes it as TOML (default: bench.toml).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath(args)

	if _, err := os.Stat(path); err == nil {
		overwrite := false
		err := askOne(&survey.Confirm{
			Message: fmt.Sprintf("File '%s' already exists. Overwrite?", path),
			Default: false,
		}, &overwrite)
		if err != nil {
			return err // User cancelled
		}
		if !overwrite {
			cmd.Println("Operation cancelled.")
			return nil
		}
	}

	var label string
	if err := askOne(&survey.Input{Message: "Run label:", Default: "main"}, &label); err != nil {
		return err
	}
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("run label must not be empty")
	}

	var command string
	if err := askOne(&survey.Input{Message: "Command to benchmark:"}, &command); err != nil {
		return err
	}
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("command must not be empty")
	}

	var commitList string
	if err := askOne(&survey.Input{
		Message: "Commits, branches, or tags (comma separated, empty for none):",
		Help:    "Sentinels work too: --all, --branches, --tags, --since=<rev>, --before=<rev>",
	}, &commitList); err != nil {
		return err
	}

	var output string
	if err := askOne(&survey.Input{
		Message: "Report output path (empty for stdout):",
		Default: "results.json",
	}, &output); err != nil {
		return err
	}

	run := config.Run{Command: command}
	for _, tok := range strings.Split(commitList, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			run.Commits = append(run.Commits, tok)
		}
	}

	b := &config.Benchmark{
		Output:          output,
		HyperfineParams: []string{"hyperfine"},
		Runs:            map[string]config.Run{label: run},
	}
	data, err := toml.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding definition: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing definition: %w", err)
	}
	cmd.Printf("Created %s\n", path)
	return nil
}
