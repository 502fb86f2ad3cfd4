package main

import (
	"github.com/spf13/cobra"

	"revbench/internal/hyperfine"
)

var mergeOutput string

var mergeCmd = &cobra.Command{
	Use:   "merge <report.json>...",
	Short: "Merge hyperfine JSON reports into one",
	Long: `Concatenates the results of several hyperfine --export-json files into
a single report, rewriting parameterized commands to command@commit.
Reports merge in argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Write the merged report here instead of stdout")
}

func runMerge(cmd *cobra.Command, args []string) error {
	rep, err := hyperfine.Merge(args)
	if err != nil {
		return err
	}
	if mergeOutput == "" {
		return rep.Write(cmd.OutOrStdout())
	}
	return rep.Save(mergeOutput)
}
