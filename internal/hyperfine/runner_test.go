package hyperfine

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revbench/internal/config"
)

func TestPreflight(t *testing.T) {
	orig := hyperfineLookPath
	defer func() { hyperfineLookPath = orig }()

	t.Run("all tools present", func(t *testing.T) {
		hyperfineLookPath = func(string) (string, error) { return "/usr/bin/tool", nil }
		assert.NoError(t, Preflight("hyperfine", true))
	})

	t.Run("tool missing", func(t *testing.T) {
		hyperfineLookPath = func(string) (string, error) { return "", exec.ErrNotFound }
		err := Preflight("hyperfine", false)
		assert.ErrorIs(t, err, ErrNotInstalled)
		assert.Contains(t, err.Error(), "hyperfine")
	})

	t.Run("configured tool is the one looked up", func(t *testing.T) {
		var looked []string
		hyperfineLookPath = func(name string) (string, error) {
			looked = append(looked, name)
			return "", exec.ErrNotFound
		}
		err := Preflight("taskset", false)
		assert.ErrorIs(t, err, ErrNotInstalled)
		assert.Contains(t, err.Error(), "taskset")
		assert.Equal(t, []string{"taskset"}, looked)
	})

	t.Run("jq only checked with annotations", func(t *testing.T) {
		hyperfineLookPath = func(name string) (string, error) {
			if name == "jq" {
				return "", exec.ErrNotFound
			}
			return "/usr/bin/hyperfine", nil
		}
		assert.NoError(t, Preflight("hyperfine", false))
		assert.ErrorIs(t, Preflight("hyperfine", true), ErrJqNotInstalled)
	})
}

func TestCLI_Run(t *testing.T) {
	orig := hyperfineExecCommand
	defer func() { hyperfineExecCommand = orig }()

	t.Run("success", func(t *testing.T) {
		hyperfineExecCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
			return exec.CommandContext(ctx, "true")
		}
		assert.NoError(t, CLI{}.Run(context.Background(), []string{"hyperfine", "--warmup", "1"}))
	})

	t.Run("leading argument is the executable", func(t *testing.T) {
		var gotName string
		var gotArgs []string
		hyperfineExecCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
			gotName = name
			gotArgs = args
			return exec.CommandContext(ctx, "true")
		}

		argv := Args("fib", config.Run{Command: "./fib 30"}, nil, "/tmp/out.json",
			[]string{"hyperfine", "--warmup", "3"})
		require.NoError(t, CLI{}.Run(context.Background(), argv))

		assert.Equal(t, "hyperfine", gotName)
		assert.Equal(t, argv[1:], gotArgs)
		assert.NotContains(t, gotArgs, "hyperfine",
			"the executable must not ride along as a benchmarked command")
	})

	t.Run("empty argument list is rejected", func(t *testing.T) {
		invoked := false
		hyperfineExecCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
			invoked = true
			return exec.CommandContext(ctx, "true")
		}
		err := CLI{}.Run(context.Background(), nil)
		require.Error(t, err)
		assert.False(t, invoked)
	})

	t.Run("failure wraps the exit error", func(t *testing.T) {
		hyperfineExecCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
			return exec.CommandContext(ctx, "false")
		}
		err := CLI{}.Run(context.Background(), []string{"hyperfine"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hyperfine")
	})

	t.Run("failure carries captured stderr", func(t *testing.T) {
		hyperfineExecCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
			return exec.CommandContext(ctx, "sh", "-c", "echo boom >&2; exit 3")
		}
		err := CLI{}.Run(context.Background(), []string{"hyperfine"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}
