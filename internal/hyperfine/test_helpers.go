package hyperfine

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a mock of the hyperfine.Runner for testing purposes.
type MockRunner struct {
	mock.Mock

	// RunFn, when set, handles Run calls instead of the recorded
	// expectations. Useful for tests that fabricate export files.
	RunFn func(ctx context.Context, args []string) error
}

func (m *MockRunner) Run(ctx context.Context, args []string) error {
	if m.RunFn != nil {
		return m.RunFn(ctx, args)
	}
	callArgs := m.Called(ctx, args)
	return callArgs.Error(0)
}

var _ Runner = (*MockRunner)(nil)
