// Package workflow drives a benchmark definition end to end: commit
// resolution, one hyperfine invocation per run, report merging, and
// restoration of the original checkout.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"revbench/internal/commits"
	"revbench/internal/config"
	"revbench/internal/git"
	"revbench/internal/hyperfine"
)

// ErrNoSuccessfulRuns is returned when every run failed; there is
// nothing to merge.
var ErrNoSuccessfulRuns = errors.New("no run succeeded")

// State tracks a run through its lifecycle.
type State int

const (
	StatePending State = iota
	StateExecuting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RunStatus is the outcome of one labeled run.
type RunStatus struct {
	Label    string
	State    State
	Commits  []string
	Duration time.Duration
	Err      error
}

// Summary collects what an invocation did: every run's outcome, the
// merged report, and where it was written.
type Summary struct {
	Runs    []RunStatus
	Report  *hyperfine.Report
	Output  string
	Scratch string
	Elapsed time.Duration
}

// Succeeded counts the runs that finished cleanly.
func (s *Summary) Succeeded() int {
	n := 0
	for _, r := range s.Runs {
		if r.State == StateSucceeded {
			n++
		}
	}
	return n
}

// Workflow sequences the runs of one benchmark definition.
type Workflow struct {
	cfg     *config.Benchmark
	catalog git.Catalog
	tree    git.Tree
	runner  hyperfine.Runner

	// KeepScratch leaves the per-run export files on disk and records
	// their directory in the summary.
	KeepScratch bool
}

func New(cfg *config.Benchmark, catalog git.Catalog, tree git.Tree, runner hyperfine.Runner) *Workflow {
	return &Workflow{cfg: cfg, catalog: catalog, tree: tree, runner: runner}
}

// Execute runs every benchmark in label order. Failing runs are
// recorded and skipped at merge time; the original checkout is
// restored no matter how execution ends.
func (w *Workflow) Execute(ctx context.Context) (*Summary, error) {
	start := time.Now()
	labels := w.cfg.Labels()
	summary := &Summary{Output: w.cfg.Output}

	scratch, err := os.MkdirTemp("", "revbench-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	if w.KeepScratch {
		summary.Scratch = scratch
		slog.Info("keeping scratch dir", "dir", scratch)
	} else {
		defer os.RemoveAll(scratch)
	}

	// Resolve every commit list before benchmarking starts so a bad
	// definition fails with nothing half-run.
	resolved := make(map[string][]string, len(labels))
	checkouts := false
	for _, label := range labels {
		run := w.cfg.Runs[label]
		if len(run.Commits) == 0 {
			continue
		}
		revs, err := commits.Resolve(ctx, w.catalog, run.Commits)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", label, err)
		}
		resolved[label] = revs
		if len(revs) > 0 {
			checkouts = true
		}
	}

	if checkouts {
		head, err := w.tree.CurrentRef(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading current ref: %w", err)
		}
		slog.Debug("recorded current ref", "ref", head)
		defer func() {
			// Restore even when ctx is already canceled.
			restore := context.WithoutCancel(ctx)
			if err := w.tree.Checkout(restore, head); err != nil {
				slog.Error("failed to restore checkout", "ref", head, "error", err)
			}
		}()
	}

	var exports []string
	for _, label := range labels {
		status := RunStatus{Label: label, State: StateExecuting, Commits: resolved[label]}
		export := filepath.Join(scratch, label+".json")
		args := hyperfine.Args(label, w.cfg.Runs[label], resolved[label], export, w.cfg.HyperfineParams)

		slog.Info("starting run", "run", label, "commits", len(resolved[label]))
		runStart := time.Now()
		if err := w.runner.Run(ctx, args); err != nil {
			status.State = StateFailed
			status.Err = err
			slog.Error("run failed", "run", label, "error", err,
				"args", strings.Join(args, " "))
		} else {
			status.State = StateSucceeded
			exports = append(exports, export)
			slog.Info("run finished", "run", label, "duration", time.Since(runStart))
		}
		status.Duration = time.Since(runStart)
		summary.Runs = append(summary.Runs, status)

		if ctx.Err() != nil {
			break
		}
	}

	if len(exports) == 0 {
		summary.Elapsed = time.Since(start)
		return summary, ErrNoSuccessfulRuns
	}

	report, err := hyperfine.Merge(exports)
	if err != nil {
		return summary, fmt.Errorf("merging reports: %w", err)
	}
	summary.Report = report
	if err := report.Save(w.cfg.Output); err != nil {
		return summary, err
	}
	summary.Elapsed = time.Since(start)
	return summary, nil
}
