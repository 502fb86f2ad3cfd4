package hyperfine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// ErrNotInstalled is returned when the configured benchmarking tool
// cannot be found in PATH.
var ErrNotInstalled = errors.New("benchmarking tool not found in PATH")

// ErrJqNotInstalled is returned when annotations are configured but jq
// cannot be found in PATH. The annotation chain rewrites export files
// with it.
var ErrJqNotInstalled = errors.New("jq not found in PATH")

// Runner executes a synthesized hyperfine invocation.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

var (
	hyperfineExecCommand = exec.CommandContext
	hyperfineLookPath    = exec.LookPath
)

// Preflight verifies the external tools an invocation will need. tool
// is the benchmarking executable from the definition's
// hyperfine_params.
func Preflight(tool string, withAnnotations bool) error {
	if _, err := hyperfineLookPath(tool); err != nil {
		return fmt.Errorf("%s: %w", tool, ErrNotInstalled)
	}
	if withAnnotations {
		if _, err := hyperfineLookPath("jq"); err != nil {
			return ErrJqNotInstalled
		}
	}
	return nil
}

// CLI runs the benchmarking tool as a subprocess; the leading argument
// names the executable. Progress output passes through to the
// terminal, and stderr is teed into a buffer so a failing run's
// diagnostic travels with the error.
type CLI struct{}

func (CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("empty argument list")
	}
	slog.Debug("running benchmarking tool", "args", strings.Join(args, " "))
	var errBuf bytes.Buffer
	cmd := hyperfineExecCommand(ctx, args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = io.MultiWriter(os.Stderr, &errBuf)
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(errBuf.String()); msg != "" {
			return fmt.Errorf("%s: %w\n%s", args[0], err, msg)
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

var _ Runner = CLI{}
