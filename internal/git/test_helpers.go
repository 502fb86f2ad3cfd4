package git

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock of the git.Catalog for testing purposes.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Branches(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalog) Tags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalog) CommitIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalog) AbbrevCommitIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalog) CommitsInRange(ctx context.Context, since, before string) ([]string, error) {
	args := m.Called(ctx, since, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockTree is a mock of the git.Tree for testing purposes.
type MockTree struct {
	mock.Mock
}

func (m *MockTree) CurrentRef(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTree) Checkout(ctx context.Context, rev string) error {
	args := m.Called(ctx, rev)
	return args.Error(0)
}

func (m *MockTree) CheckClean(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ Catalog = (*MockCatalog)(nil)
var _ Tree = (*MockTree)(nil)
