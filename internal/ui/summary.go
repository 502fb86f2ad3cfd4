package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"revbench/internal/workflow"
)

// RenderSummary writes the per-run outcome table followed by a
// one-line verdict.
func RenderSummary(w io.Writer, s *workflow.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTATE\tCOMMITS\tDURATION\tNOTE")
	for _, r := range s.Runs {
		commits := "-"
		if len(r.Commits) > 0 {
			commits = strconv.Itoa(len(r.Commits))
		}
		note := ""
		if r.Err != nil {
			// First line only; a stderr tail in the error would break
			// the table rows.
			note, _, _ = strings.Cut(r.Err.Error(), "\n")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Label, r.State, commits, r.Duration.Round(time.Millisecond), note)
	}
	tw.Flush()

	ok := s.Succeeded()
	verdict := fmt.Sprintf("%d/%d runs succeeded (%s)",
		ok, len(s.Runs), s.Elapsed.Round(time.Millisecond))
	switch {
	case ok == len(s.Runs):
		fmt.Fprintln(w, successStyle.Render("✓ "+verdict))
	case ok > 0:
		fmt.Fprintln(w, warnStyle.Render("! "+verdict))
	default:
		fmt.Fprintln(w, errorStyle.Render("✗ "+verdict))
	}

	if s.Report != nil && s.Output != "" {
		fmt.Fprintln(w, dimStyle.Render("report: "+s.Output))
	}
	if s.Scratch != "" {
		fmt.Fprintln(w, dimStyle.Render("scratch: "+s.Scratch))
	}
}

// RenderPlan prints, per run, the full command line Execute would
// launch, executable included.
func RenderPlan(w io.Writer, labels []string, argv map[string][]string) {
	for i, label := range labels {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, titleStyle.Render(label))
		fmt.Fprintln(w, "  "+shellJoin(argv[label]))
	}
}

// shellJoin renders an argument list the way a user would type it,
// quoting only the arguments that need it.
func shellJoin(args []string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t'\"$&|<>(){};*") {
			parts[i] = strconv.Quote(arg)
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}
