// Package mocks provides test doubles for the database package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTxManager is a mock TxManager. Unless the expectation returns an error,
// the callback runs with the caller's context.
type MockTxManager struct {
	mock.Mock
}

// WithTx records the call and runs fn.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
