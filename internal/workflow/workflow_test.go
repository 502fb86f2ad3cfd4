package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"revbench/internal/commits"
	"revbench/internal/config"
	"revbench/internal/git"
	"revbench/internal/hyperfine"
)

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func resultJSON(command, commit string) string {
	params := ""
	if commit != "" {
		params = fmt.Sprintf(`, "parameters": {"commit": %q}`, commit)
	}
	return fmt.Sprintf(`{"command": %q, "mean": 1, "stddev": 0.1, "median": 1,
		"user": 1, "system": 0, "min": 1, "max": 1, "times": [1], "exit_codes": [0]%s}`,
		command, params)
}

func exportJSON(results ...string) string {
	return fmt.Sprintf(`{"results": [%s]}`, strings.Join(results, ","))
}

// writeExportRunner fabricates the export file hyperfine would have
// written for each labeled run it is asked to execute.
func writeExportRunner(t *testing.T, perLabel map[string][]string) *hyperfine.MockRunner {
	t.Helper()
	return &hyperfine.MockRunner{RunFn: func(_ context.Context, args []string) error {
		label := flagValue(args, "--command-name")
		results, ok := perLabel[label]
		if !ok {
			return fmt.Errorf("unexpected run %q", label)
		}
		return os.WriteFile(flagValue(args, "--export-json"),
			[]byte(exportJSON(results...)), 0644)
	}}
}

func TestExecute(t *testing.T) {
	output := filepath.Join(t.TempDir(), "merged.json")
	cfg := &config.Benchmark{
		Output:          output,
		HyperfineParams: []string{"hyperfine", "--warmup", "1"},
		Runs: map[string]config.Run{
			"alpha": {Command: "./a", Commits: []string{"--all"}},
			"beta":  {Command: "./b"},
		},
	}

	catalog := new(git.MockCatalog)
	catalog.On("AbbrevCommitIDs", mock.Anything).Return([]string{"aaa111", "bbb222"}, nil)

	tree := new(git.MockTree)
	tree.On("CurrentRef", mock.Anything).Return("main", nil)
	tree.On("Checkout", mock.Anything, "main").Return(nil)

	runner := writeExportRunner(t, map[string][]string{
		"alpha": {resultJSON("./a", "aaa111"), resultJSON("./a", "bbb222")},
		"beta":  {resultJSON("./b", "")},
	})

	summary, err := New(cfg, catalog, tree, runner).Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Runs, 2)
	assert.Equal(t, "alpha", summary.Runs[0].Label, "runs execute in label order")
	assert.Equal(t, StateSucceeded, summary.Runs[0].State)
	assert.Equal(t, []string{"aaa111", "bbb222"}, summary.Runs[0].Commits)
	assert.Equal(t, "beta", summary.Runs[1].Label)
	assert.Equal(t, 2, summary.Succeeded())

	rep, err := hyperfine.Load(output)
	require.NoError(t, err)
	require.Len(t, rep.Results, 3)
	assert.Equal(t, "./a@aaa111", rep.Results[0].Command)
	assert.Equal(t, "./a@bbb222", rep.Results[1].Command)
	assert.Equal(t, "./b", rep.Results[2].Command)

	tree.AssertExpectations(t)
}

func TestExecute_FailingRunDoesNotAbort(t *testing.T) {
	output := filepath.Join(t.TempDir(), "merged.json")
	cfg := &config.Benchmark{
		Output: output,
		Runs: map[string]config.Run{
			"bad":  {Command: "./bad"},
			"good": {Command: "./good"},
		},
	}

	boom := errors.New("exit status 1")
	runner := &hyperfine.MockRunner{RunFn: func(_ context.Context, args []string) error {
		if flagValue(args, "--command-name") == "bad" {
			return boom
		}
		return os.WriteFile(flagValue(args, "--export-json"),
			[]byte(exportJSON(resultJSON("./good", ""))), 0644)
	}}

	tree := new(git.MockTree)
	summary, err := New(cfg, new(git.MockCatalog), tree, runner).Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Runs, 2)
	assert.Equal(t, StateFailed, summary.Runs[0].State)
	assert.ErrorIs(t, summary.Runs[0].Err, boom)
	assert.Equal(t, StateSucceeded, summary.Runs[1].State)
	assert.Equal(t, 1, summary.Succeeded())

	rep, err := hyperfine.Load(output)
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, "./good", rep.Results[0].Command)

	// Nothing declared commits, so the tree is never touched.
	tree.AssertNotCalled(t, "CurrentRef", mock.Anything)
	tree.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
}

func TestExecute_AllRunsFailing(t *testing.T) {
	cfg := &config.Benchmark{
		Runs: map[string]config.Run{"only": {Command: "./x"}},
	}
	runner := &hyperfine.MockRunner{RunFn: func(context.Context, []string) error {
		return errors.New("exit status 1")
	}}

	summary, err := New(cfg, new(git.MockCatalog), new(git.MockTree), runner).
		Execute(context.Background())
	assert.ErrorIs(t, err, ErrNoSuccessfulRuns)
	require.Len(t, summary.Runs, 1)
	assert.Equal(t, StateFailed, summary.Runs[0].State)
}

func TestExecute_ResolutionFailsBeforeAnyRun(t *testing.T) {
	cfg := &config.Benchmark{
		Runs: map[string]config.Run{"tagged": {Command: "./x", Commits: []string{"--tags"}}},
	}
	catalog := new(git.MockCatalog)
	catalog.On("Tags", mock.Anything).Return([]string{}, nil)

	runner := &hyperfine.MockRunner{RunFn: func(context.Context, []string) error {
		t.Error("runner must not be invoked")
		return nil
	}}

	_, err := New(cfg, catalog, new(git.MockTree), runner).Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, commits.ErrNoTags)
	assert.Contains(t, err.Error(), `"tagged"`)
}

func TestExecute_RestoresCheckoutAfterFailure(t *testing.T) {
	cfg := &config.Benchmark{
		Runs: map[string]config.Run{"r": {Command: "./x", Commits: []string{"abc123"}}},
	}

	catalog := new(git.MockCatalog)
	catalog.On("Branches", mock.Anything).Return([]string{}, nil)
	catalog.On("Tags", mock.Anything).Return([]string{}, nil)
	catalog.On("AbbrevCommitIDs", mock.Anything).Return([]string{"abc123"}, nil)
	catalog.On("CommitIDs", mock.Anything).Return([]string{}, nil)

	tree := new(git.MockTree)
	tree.On("CurrentRef", mock.Anything).Return("main", nil)
	tree.On("Checkout", mock.Anything, "main").Return(nil)

	runner := &hyperfine.MockRunner{RunFn: func(context.Context, []string) error {
		return errors.New("exit status 1")
	}}

	_, err := New(cfg, catalog, tree, runner).Execute(context.Background())
	assert.ErrorIs(t, err, ErrNoSuccessfulRuns)
	tree.AssertCalled(t, "Checkout", mock.Anything, "main")
}

func TestExecute_KeepScratch(t *testing.T) {
	cfg := &config.Benchmark{
		Output: filepath.Join(t.TempDir(), "merged.json"),
		Runs:   map[string]config.Run{"only": {Command: "./x"}},
	}
	runner := writeExportRunner(t, map[string][]string{
		"only": {resultJSON("./x", "")},
	})

	w := New(cfg, new(git.MockCatalog), new(git.MockTree), runner)
	w.KeepScratch = true

	summary, err := w.Execute(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, summary.Scratch)
	t.Cleanup(func() { os.RemoveAll(summary.Scratch) })

	_, statErr := os.Stat(filepath.Join(summary.Scratch, "only.json"))
	assert.NoError(t, statErr, "export file is left behind")
}
