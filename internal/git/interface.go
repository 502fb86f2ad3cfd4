package git

import "context"

// Catalog exposes the read-only revision queries used during commit-set
// resolution. Implemented by Client; mocked in tests.
type Catalog interface {
	Branches(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	CommitIDs(ctx context.Context) ([]string, error)
	AbbrevCommitIDs(ctx context.Context) ([]string, error)
	CommitsInRange(ctx context.Context, since, before string) ([]string, error)
}

// Tree covers the mutating and stateful working-tree operations the
// orchestrator needs: recording where HEAD is, moving it, and checking
// that the tree is clean enough to move at all.
type Tree interface {
	CurrentRef(ctx context.Context) (string, error)
	Checkout(ctx context.Context, rev string) error
	CheckClean(ctx context.Context) error
}
