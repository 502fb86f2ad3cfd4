// Package commits expands the commit lists named by a benchmark run
// into concrete revisions, interpreting the sentinel tokens a run's
// commits key may carry.
package commits

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"revbench/internal/git"
)

// Sentinel tokens accepted in a run's commit list. A sentinel replaces
// the whole list; when several appear the highest-priority one wins.
// The range tokens match by prefix, so both the bare flag and the
// =<rev> form select range mode.
const (
	TokenAll      = "--all"
	TokenBranches = "--branches"
	TokenTags     = "--tags"

	TokenSince  = "--since"
	TokenBefore = "--before"
)

// ErrNoTags is returned when --tags is requested in a repository that
// has none.
var ErrNoTags = errors.New("repository has no tags")

// InvalidCommitsError reports commit tokens that name no branch, tag,
// or commit id in the repository.
type InvalidCommitsError struct {
	Tokens []string
}

func (e *InvalidCommitsError) Error() string {
	return fmt.Sprintf("commits not found in repository: %s", strings.Join(e.Tokens, ", "))
}

// Mode selects how a commit list is resolved.
type Mode int

const (
	// ModeExplicit validates each token against the repository.
	ModeExplicit Mode = iota
	// ModeAll expands to every commit id, abbreviated.
	ModeAll
	// ModeBranches expands to all branch names.
	ModeBranches
	// ModeTags expands to all tag names.
	ModeTags
	// ModeRange expands to the commits between two revisions.
	ModeRange
)

// Spec is the parsed form of a run's commit list.
type Spec struct {
	Mode     Mode
	Since    string
	Before   string
	Explicit []string
}

// Parse classifies a raw commit list. --all beats --branches beats
// --tags beats a --since/--before range; a list without sentinels is
// explicit.
func Parse(tokens []string) Spec {
	switch {
	case slices.Contains(tokens, TokenAll):
		return Spec{Mode: ModeAll}
	case slices.Contains(tokens, TokenBranches):
		return Spec{Mode: ModeBranches}
	case slices.Contains(tokens, TokenTags):
		return Spec{Mode: ModeTags}
	}

	var since, before string
	ranged := false
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, TokenSince):
			// A bare --since still selects range mode; the bound is
			// only taken from the =<rev> form.
			if v, ok := strings.CutPrefix(tok, TokenSince+"="); ok {
				since = v
			}
			ranged = true
		case strings.HasPrefix(tok, TokenBefore):
			if v, ok := strings.CutPrefix(tok, TokenBefore+"="); ok {
				before = v
			}
			ranged = true
		}
	}
	if ranged {
		return Spec{Mode: ModeRange, Since: since, Before: before}
	}
	return Spec{Mode: ModeExplicit, Explicit: tokens}
}

// Resolve expands a run's commit list against the repository catalog.
// Explicit revisions are validated and returned in their original
// order; sentinel lists come back in the order git reports them.
func Resolve(ctx context.Context, cat git.Catalog, tokens []string) ([]string, error) {
	spec := Parse(tokens)
	switch spec.Mode {
	case ModeAll:
		return cat.AbbrevCommitIDs(ctx)
	case ModeBranches:
		return cat.Branches(ctx)
	case ModeTags:
		tags, err := cat.Tags(ctx)
		if err != nil {
			return nil, err
		}
		if len(tags) == 0 {
			return nil, ErrNoTags
		}
		return tags, nil
	case ModeRange:
		return cat.CommitsInRange(ctx, spec.Since, spec.Before)
	default:
		return validate(ctx, cat, spec.Explicit)
	}
}

// validate checks every explicit token against the names the
// repository actually has: branches, tags, and both abbreviated and
// full commit ids.
func validate(ctx context.Context, cat git.Catalog, tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	branches, err := cat.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	tags, err := cat.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	abbrev, err := cat.AbbrevCommitIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}
	full, err := cat.CommitIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}

	known := make(map[string]struct{}, len(branches)+len(tags)+len(abbrev)+len(full))
	for _, group := range [][]string{branches, tags, abbrev, full} {
		for _, name := range group {
			known[name] = struct{}{}
		}
	}

	var invalid []string
	for _, tok := range tokens {
		if _, ok := known[tok]; !ok {
			invalid = append(invalid, tok)
		}
	}
	if len(invalid) > 0 {
		return nil, &InvalidCommitsError{Tokens: invalid}
	}
	return tokens, nil
}
