package hyperfine

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"revbench/internal/config"
)

// Args assembles the full command line for one labeled run: the global
// hyperfine_params, whose leading entry names the executable, then the
// label and export destination, then the flags synthesized from the
// run definition, with the benchmarked command last.
func Args(label string, run config.Run, commits []string, exportPath string, global []string) []string {
	args := append([]string{}, global...)
	args = append(args, "--command-name", label, "--export-json", exportPath)
	// Annotation injection below must only consider the run's own
	// flags; a --cleanup in the shared prefix belongs to every run.
	base := len(args)

	if run.Shell != "" {
		// With commits and a setup step the checkout composition runs
		// inside hyperfine's default shell; a custom shell cannot be
		// honored at the same time.
		if len(commits) > 0 && run.Setup != "" {
			slog.Warn("ignoring shell: run combines commits with a setup step",
				"run", label, "shell", run.Shell)
		} else {
			args = append(args, "--shell", run.Shell)
		}
	}

	if len(commits) > 0 {
		args = append(args, "--parameter-list", "commit", strings.Join(commits, ","))
	}
	if run.Cleanup != "" {
		args = append(args, "--cleanup", run.Cleanup)
	}
	if run.Prepare != "" {
		args = append(args, "--prepare", run.Prepare)
	}

	switch {
	case len(commits) > 0 && run.Setup != "":
		args = append(args, "--setup", "git checkout {commit} && "+run.Setup)
	case len(commits) > 0:
		args = append(args, "--setup", "git checkout {commit}")
	case run.Setup != "":
		args = append(args, "--setup", run.Setup)
	}

	if len(run.Annotations) > 0 {
		chain := annotationChain(run.Annotations, exportPath)
		if i := slices.Index(args[base:], "--cleanup"); i >= 0 && base+i+1 < len(args) {
			args[base+i+1] = chain + "&&" + args[base+i+1]
		} else {
			args = append(args, "--cleanup", chain)
		}
	}

	return append(args, run.Command)
}

// annotationChain builds the shell pipeline that injects annotation
// outputs into the export file. Fields are emitted in sorted order so
// the chain is stable. Each step captures the command's output and
// splices it into the first result with jq.
func annotationChain(annotations map[string]string, exportPath string) string {
	fields := make([]string, 0, len(annotations))
	for field := range annotations {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	steps := make([]string, 0, len(fields))
	for _, field := range fields {
		steps = append(steps, fmt.Sprintf(
			`OUT=$(%s) && jq --arg out "$OUT" '.results[0].%s = $out' %s > %s.tmp && mv %s.tmp %s`,
			annotations[field], field, exportPath, exportPath, exportPath, exportPath))
	}
	return strings.Join(steps, "&&")
}
