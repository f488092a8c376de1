package source

import (
	"context"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
	"github.com/stretchr/testify/mock"
)

// MockRunSource is a mock implementation of RunSource for testing.
type MockRunSource struct {
	mock.Mock
}

var _ contract.RunSource = &MockRunSource{} // Compile-time check

// Name implements the RunSource interface.
func (m *MockRunSource) Name() string {
	args := m.Called()
	return args.String(0)
}

// Fetch implements the RunSource interface.
func (m *MockRunSource) Fetch(ctx context.Context) (*schema.Batch, error) {
	args := m.Called(ctx)
	batch, _ := args.Get(0).(*schema.Batch)
	return batch, args.Error(1)
}
