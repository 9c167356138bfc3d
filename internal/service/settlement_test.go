package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/truenumber/gameservice/internal/config"
	"github.com/truenumber/gameservice/internal/constants"
	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/mocks"
	"github.com/truenumber/gameservice/internal/model"
	"github.com/truenumber/gameservice/internal/repository"
	"github.com/truenumber/gameservice/internal/service"
	"go.uber.org/zap"
)

type settlementDeps struct {
	tx        *mocks.TxManager
	balances  *mocks.UserBalanceRepository
	games     *mocks.GameRepository
	events    *mocks.SettlementEventRepository
	generator *mocks.Generator
}

func newSettlementDeps() settlementDeps {
	return settlementDeps{
		tx:        &mocks.TxManager{},
		balances:  &mocks.UserBalanceRepository{},
		games:     &mocks.GameRepository{},
		events:    &mocks.SettlementEventRepository{},
		generator: &mocks.Generator{},
	}
}

func testConfig() *config.Config {
	return &config.Config{Settlement: config.Settlement{GeneratorRetries: 1, CompensationRetries: 3, RecentGames: 3}}
}

func testMetrics() *metrics.Metrics {
	return metrics.NewMetricsWithRegistry(prometheus.NewRegistry())
}

func (d settlementDeps) service() service.SettlementService {
	return service.NewSettlementService(d.tx, d.balances, d.games, d.events, d.generator,
		testConfig(), zap.NewNop(), testMetrics())
}

func (d settlementDeps) assertAll(t *testing.T) {
	d.tx.AssertExpectations(t)
	d.balances.AssertExpectations(t)
	d.games.AssertExpectations(t)
	d.events.AssertExpectations(t)
	d.generator.AssertExpectations(t)
}

var (
	txCtx    = mock.AnythingOfType("*context.valueCtx")
	anyFn    = mock.AnythingOfType("func(context.Context) error")
	anyGame  = mock.AnythingOfType("*model.Game")
	anyEvent = mock.AnythingOfType("*model.SettlementEvent")
)

func serviceErrorCode(t *testing.T, err error) string {
	t.Helper()
	var svcErr service.Error
	require.ErrorAs(t, err, &svcErr)
	return svcErr.Code
}

func TestSettlement_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("win credits fifty and records the authoritative balance", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1000}, nil)
		d.generator.On("Draw").Return(85, nil)
		d.tx.On("WithTx", ctx, anyFn).Return(nil)
		d.balances.On("Increment", txCtx, "alice", int64(50)).Return(int64(1050), nil)
		d.events.On("Create", txCtx, mock.MatchedBy(func(ev *model.SettlementEvent) bool {
			return ev.UserID == "alice" && ev.BalanceChange == 50 && ev.NewBalance == 1050 && ev.GameID != ""
		})).Return(nil)
		d.games.On("Append", txCtx, mock.MatchedBy(func(g *model.Game) bool {
			return g.UserID == "alice" && g.GeneratedNumber == 85 && g.Result &&
				g.BalanceChange == 50 && g.NewBalance == 1050 && g.IdempotencyKey == nil
		})).Return(nil)

		res, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice"})

		require.NoError(t, err)
		assert.Equal(t, 85, res.GeneratedNumber)
		assert.True(t, res.Result)
		assert.Equal(t, int64(50), res.BalanceChange)
		assert.Equal(t, int64(1050), res.NewBalance)
		assert.NotEmpty(t, res.GameID)
		assert.False(t, res.Replayed)
		d.assertAll(t)
	})

	t.Run("win then loss from 1000 ends at 1015", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1000}, nil).Once()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1050}, nil).Once()
		d.generator.On("Draw").Return(85, nil).Once()
		d.generator.On("Draw").Return(40, nil).Once()
		d.tx.On("WithTx", ctx, anyFn).Return(nil)
		d.balances.On("Increment", txCtx, "alice", int64(50)).Return(int64(1050), nil).Once()
		d.balances.On("Increment", txCtx, "alice", int64(-35)).Return(int64(1015), nil).Once()
		d.events.On("Create", txCtx, anyEvent).Return(nil)
		d.games.On("Append", txCtx, anyGame).Return(nil)

		svc := d.service()

		first, err := svc.Play(ctx, service.PlayCommand{UserID: "alice"})
		require.NoError(t, err)
		second, err := svc.Play(ctx, service.PlayCommand{UserID: "alice"})
		require.NoError(t, err)

		assert.Equal(t, int64(1050), first.NewBalance)
		assert.False(t, second.Result)
		assert.Equal(t, int64(-35), second.BalanceChange)
		assert.Equal(t, int64(1015), second.NewBalance)
		d.games.AssertNumberOfCalls(t, "Append", 2)
		d.assertAll(t)
	})

	t.Run("concurrent increment wins over stale read", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1000}, nil)
		d.generator.On("Draw").Return(40, nil)
		d.tx.On("WithTx", ctx, anyFn).Return(nil)
		d.balances.On("Increment", txCtx, "alice", int64(-35)).Return(int64(1015), nil)
		d.events.On("Create", txCtx, anyEvent).Return(nil)
		d.games.On("Append", txCtx, mock.MatchedBy(func(g *model.Game) bool {
			return g.NewBalance == 1015
		})).Return(nil)

		res, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice"})

		require.NoError(t, err)
		assert.Equal(t, int64(1015), res.NewBalance)
		d.assertAll(t)
	})

	t.Run("unknown user is rejected without drawing", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "ghost").Return(model.UserBalance{}, repository.ErrUserBalanceNotFound)

		_, err := d.service().Play(ctx, service.PlayCommand{UserID: "ghost"})

		assert.Equal(t, constants.ErrCodeUserNotFound, serviceErrorCode(t, err))
		d.generator.AssertNotCalled(t, "Draw")
		d.tx.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
	})

	t.Run("generator failure is retried once", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 0}, nil)
		d.generator.On("Draw").Return(0, errors.New("entropy unavailable")).Once()
		d.generator.On("Draw").Return(71, nil).Once()
		d.tx.On("WithTx", ctx, anyFn).Return(nil)
		d.balances.On("Increment", txCtx, "alice", int64(50)).Return(int64(50), nil)
		d.events.On("Create", txCtx, anyEvent).Return(nil)
		d.games.On("Append", txCtx, anyGame).Return(nil)

		res, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice"})

		require.NoError(t, err)
		assert.True(t, res.Result)
		d.generator.AssertNumberOfCalls(t, "Draw", 2)
	})

	t.Run("generator failing twice leaves no effects", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 0}, nil)
		d.generator.On("Draw").Return(0, errors.New("entropy unavailable"))

		_, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice"})

		assert.Equal(t, constants.ErrCodeSettlementFailed, serviceErrorCode(t, err))
		d.generator.AssertNumberOfCalls(t, "Draw", 2)
		d.tx.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
	})

	t.Run("balance write failure records nothing", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1000}, nil)
		d.generator.On("Draw").Return(85, nil)
		d.tx.On("WithTx", ctx, anyFn).Return(nil)
		d.balances.On("Increment", txCtx, "alice", int64(50)).Return(int64(0), errors.New("lock wait timeout"))

		_, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice"})

		code := serviceErrorCode(t, err)
		assert.Equal(t, constants.ErrCodeSettlementFailed, code)
		assert.True(t, constants.IsRetryable(code))
		d.games.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		d.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("ledger failure in a transaction relies on rollback", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1000}, nil)
		d.generator.On("Draw").Return(85, nil)
		d.tx.On("WithTx", ctx, anyFn).Return(nil)
		d.balances.On("Increment", txCtx, "alice", int64(50)).Return(int64(1050), nil)
		d.events.On("Create", txCtx, anyEvent).Return(nil)
		d.games.On("Append", txCtx, anyGame).Return(errors.New("disk full"))

		_, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice"})

		assert.Equal(t, constants.ErrCodeSettlementFailed, serviceErrorCode(t, err))
		d.balances.AssertNumberOfCalls(t, "Increment", 1)
	})

	t.Run("ledger failure without transactions compensates the balance", func(t *testing.T) {
		d := newSettlementDeps()
		d.tx.NonAtomic = true
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1000}, nil)
		d.generator.On("Draw").Return(85, nil)
		d.tx.On("WithTx", ctx, anyFn).Return(nil)
		d.balances.On("Increment", txCtx, "alice", int64(50)).Return(int64(1050), nil)
		d.events.On("Create", txCtx, anyEvent).Return(nil)
		d.games.On("Append", txCtx, anyGame).Return(errors.New("disk full"))
		d.balances.On("Increment", ctx, "alice", int64(-50)).Return(int64(1000), nil).Once()

		_, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice"})

		assert.Equal(t, constants.ErrCodeSettlementFailed, serviceErrorCode(t, err))
		d.balances.AssertNumberOfCalls(t, "Increment", 2)
		d.assertAll(t)
	})

	t.Run("failed compensation surfaces inconsistency", func(t *testing.T) {
		d := newSettlementDeps()
		d.tx.NonAtomic = true
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1000}, nil)
		d.generator.On("Draw").Return(10, nil)
		d.tx.On("WithTx", ctx, anyFn).Return(nil)
		d.balances.On("Increment", txCtx, "alice", int64(-35)).Return(int64(965), nil)
		d.events.On("Create", txCtx, anyEvent).Return(errors.New("disk full"))
		d.balances.On("Increment", ctx, "alice", int64(35)).Return(int64(0), errors.New("connection reset"))

		_, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice"})

		assert.Equal(t, constants.ErrCodeSettlementInconsistent, serviceErrorCode(t, err))
		assert.ErrorIs(t, err, service.ErrCompensationFailed)
		d.balances.AssertNumberOfCalls(t, "Increment", 4)
		d.games.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("transaction start failure is retryable", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1000}, nil)
		d.generator.On("Draw").Return(85, nil)
		d.tx.On("WithTx", ctx, anyFn).Return(errors.New("too many connections"))

		_, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice"})

		assert.Equal(t, constants.ErrCodeSettlementFailed, serviceErrorCode(t, err))
		d.balances.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSettlement_PlayIdempotency(t *testing.T) {
	ctx := context.Background()
	key := "play-42"
	existing := &model.Game{ID: "g-1", UserID: "alice", GeneratedNumber: 85, Result: true, BalanceChange: 50, NewBalance: 1050, IdempotencyKey: &key}

	t.Run("retried key returns the first game", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1050}, nil)
		d.games.On("GetByIdempotencyKey", ctx, "alice", key).Return(existing, nil)

		res, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice", IdempotencyKey: key})

		require.NoError(t, err)
		assert.True(t, res.Replayed)
		assert.Equal(t, "g-1", res.GameID)
		assert.Equal(t, int64(1050), res.NewBalance)
		d.generator.AssertNotCalled(t, "Draw")
		d.tx.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
	})

	t.Run("concurrent duplicate resolves to the winner", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice", Balance: 1000}, nil)
		d.games.On("GetByIdempotencyKey", ctx, "alice", key).Return(nil, repository.ErrGameNotFound).Once()
		d.generator.On("Draw").Return(3, nil)
		d.tx.On("WithTx", ctx, anyFn).Return(nil)
		d.balances.On("Increment", txCtx, "alice", int64(-35)).Return(int64(1015), nil)
		d.events.On("Create", txCtx, anyEvent).Return(nil)
		d.games.On("Append", txCtx, mock.MatchedBy(func(g *model.Game) bool {
			return g.IdempotencyKey != nil && *g.IdempotencyKey == key
		})).Return(repository.ErrGameExisted)
		d.games.On("GetByIdempotencyKey", ctx, "alice", key).Return(existing, nil).Once()

		res, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice", IdempotencyKey: key})

		require.NoError(t, err)
		assert.True(t, res.Replayed)
		assert.Equal(t, "g-1", res.GameID)
		d.assertAll(t)
	})

	t.Run("ledger read failure is retryable", func(t *testing.T) {
		d := newSettlementDeps()
		d.balances.On("FindByUserID", ctx, "alice").Return(model.UserBalance{UserID: "alice"}, nil)
		d.games.On("GetByIdempotencyKey", ctx, "alice", key).Return(nil, errors.New("timeout"))

		_, err := d.service().Play(ctx, service.PlayCommand{UserID: "alice", IdempotencyKey: key})

		assert.Equal(t, constants.ErrCodeSettlementFailed, serviceErrorCode(t, err))
		d.generator.AssertNotCalled(t, "Draw")
	})
}
