package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrDirty is returned by CheckClean when the working tree has
// uncommitted modifications.
var ErrDirty = errors.New("working tree is dirty")

// Client runs git against a single repository. An empty Dir means the
// current working directory.
type Client struct {
	Dir string
}

// NewClient creates a git client for the repository at dir.
func NewClient(dir string) *Client {
	return &Client{Dir: dir}
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, errBuf.String())
	}
	return outBuf.String(), nil
}

// lines splits command output into trimmed lines, dropping empty ones.
func lines(out string) []string {
	var result []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}

// Branches returns all local and remote branch names. Each line of
// `git branch --all` carries a two-character marker prefix ("* " on the
// current branch, "  " otherwise) which is stripped.
func (c *Client) Branches(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "branch", "--all")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range lines(out) {
		if len(line) > 2 {
			branches = append(branches, line[2:])
		}
	}
	return branches, nil
}

// Tags returns all tag names. An untagged repository yields an empty
// slice, not an error.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "tag", "--list")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// CommitIDs returns the full ids of every commit reachable from any ref.
func (c *Client) CommitIDs(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "rev-list", "--all")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// AbbrevCommitIDs returns the abbreviated ids of every commit reachable
// from any ref, newest first.
func (c *Client) AbbrevCommitIDs(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "rev-list", "--all", "--abbrev-commit")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// CommitsInRange returns abbreviated commit ids for the requested
// window. With both bounds it lists {since}^..{before}, so the since
// commit itself is included. With only since the window extends to
// HEAD; with only before it covers everything up to and including
// before's parent.
func (c *Client) CommitsInRange(ctx context.Context, since, before string) ([]string, error) {
	var span string
	switch {
	case since != "" && before != "":
		span = fmt.Sprintf("%s^..%s", since, before)
	case since != "":
		span = fmt.Sprintf("%s^..HEAD", since)
	case before != "":
		span = fmt.Sprintf("%s^", before)
	default:
		return nil, errors.New("commit range needs at least one bound")
	}

	out, err := c.run(ctx, "rev-list", "--abbrev-commit", span)
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// CurrentRef returns the current branch name, or the full commit id
// when HEAD is detached. The returned value is what Checkout restores
// to after a benchmark walked the history.
func (c *Client) CurrentRef(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	ref := strings.TrimSpace(out)
	if ref != "HEAD" {
		return ref, nil
	}

	// Detached: pin the exact commit, HEAD will move under us.
	out, err = c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Checkout moves the working tree to rev. A checkout to the revision
// already checked out is skipped.
func (c *Client) Checkout(ctx context.Context, rev string) error {
	current, err := c.CurrentRef(ctx)
	if err != nil {
		return err
	}
	if current == rev {
		slog.Debug("checkout skipped, already on revision", "rev", rev)
		return nil
	}

	if _, err := c.run(ctx, "checkout", rev, "--quiet"); err != nil {
		return err
	}
	slog.Debug("checked out revision", "rev", rev)
	return nil
}

// CheckClean reports ErrDirty when tracked files have uncommitted
// changes. Checking out another revision over local edits would either
// fail mid-benchmark or silently carry the edits into every timing run.
func (c *Client) CheckClean(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "git", "diff", "--quiet")
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ErrDirty
		}
		return fmt.Errorf("git diff --quiet: %w", err)
	}
	return nil
}

var _ Catalog = (*Client)(nil)
var _ Tree = (*Client)(nil)
