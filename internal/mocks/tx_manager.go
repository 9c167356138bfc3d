package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockTxKey struct{}

// TxManager runs fn inline. Set NonAtomic to emulate a store without transactions.
type TxManager struct {
	mock.Mock
	NonAtomic bool
}

func (t *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := t.Called(ctx, fn)

	if args.Error(0) != nil {
		return args.Error(0)
	}

	txCtx := context.WithValue(ctx, mockTxKey{}, "mock_tx")
	return fn(txCtx)
}

func (t *TxManager) Atomic() bool {
	return !t.NonAtomic
}
