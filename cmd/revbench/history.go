package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"revbench/internal/history"
	"revbench/internal/hyperfine"
)

var askOne = survey.AskOne

var historyStoreFactory = func(path string) (history.Store, error) {
	return history.NewSQLiteStore(path)
}

var historyLimit int

func init() {
	historyCmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show invocations recorded with run --save",
		Long: `Displays a recorded benchmark invocation and its merged report.
If no id is provided, it lists recent invocations and prompts for a
selection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "How many invocations to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invocation id %q", args[0])
		}
		inv, err := store.GetInvocation(id)
		if err != nil {
			return err
		}
		return displayInvocation(cmd, inv)
	}
	return runInteractiveHistory(cmd, store)
}

func openHistoryStore() (history.Store, error) {
	path := viper.GetString("history_db")
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return historyStoreFactory(path)
}

// runInteractiveHistory handles the interactive invocation selection.
func runInteractiveHistory(cmd *cobra.Command, store history.Store) error {
	invs, err := store.ListInvocations(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list invocations: %w", err)
	}
	if len(invs) == 0 {
		cmd.Println("No invocations recorded yet. Run with --save to record one.")
		return nil
	}

	var options []string
	byDisplay := make(map[string]history.Invocation)
	for _, inv := range invs {
		display := fmt.Sprintf("#%-4d %s  %d/%d ok  (%s)",
			inv.ID, inv.CreatedAt.Format("2006-01-02 15:04"),
			inv.Succeeded, inv.Runs, inv.Config)
		options = append(options, display)
		byDisplay[display] = inv
	}

	var selected string
	prompt := &survey.Select{
		Message:  "Select an invocation:",
		Options:  options,
		PageSize: 15,
	}
	if err := askOne(prompt, &selected); err != nil {
		if err.Error() == "interrupt" {
			return nil // User cancelled
		}
		return fmt.Errorf("failed to select invocation: %w", err)
	}

	inv := byDisplay[selected]
	return displayInvocation(cmd, &inv)
}

// displayInvocation prints a detailed view of a single invocation.
func displayInvocation(cmd *cobra.Command, inv *history.Invocation) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", inv.ID)
	fmt.Fprintf(w, "Date:\t%s\n", inv.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(w, "Config:\t%s\n", inv.Config)
	output := inv.Output
	if output == "" {
		output = "(stdout)"
	}
	fmt.Fprintf(w, "Output:\t%s\n", output)
	fmt.Fprintf(w, "Runs:\t%d/%d succeeded\n", inv.Succeeded, inv.Runs)
	w.Flush()

	if inv.Report == "" {
		return nil
	}
	var rep hyperfine.Report
	if err := json.Unmarshal([]byte(inv.Report), &rep); err != nil {
		return fmt.Errorf("stored report is unreadable: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return rep.Write(cmd.OutOrStdout())
}
