package reconciler_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/truenumber/gameservice/pkg/gameclient"
	"github.com/truenumber/gameservice/pkg/reconciler"
	"go.uber.org/zap"
)

type backend struct {
	mock.Mock
}

func (b *backend) Play(ctx context.Context, userID, idempotencyKey string) (gameclient.Game, error) {
	args := b.Called(ctx, userID, idempotencyKey)
	return args.Get(0).(gameclient.Game), args.Error(1)
}

func (b *backend) Balance(ctx context.Context, userID string) (int64, error) {
	args := b.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (b *backend) History(ctx context.Context, userID string, limit int) ([]gameclient.Game, error) {
	args := b.Called(ctx, userID, limit)
	games, _ := args.Get(0).([]gameclient.Game)
	return games, args.Error(1)
}

type recorder struct {
	mu    sync.Mutex
	views []reconciler.View
}

func (r *recorder) record(v reconciler.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) balances() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v.Balance)
	}
	return out
}

var (
	ctx    = context.Background()
	anyKey = mock.AnythingOfType("string")
	g1     = gameclient.Game{ID: "g-1", UserID: "alice", GeneratedNumber: 85, Result: true, BalanceChange: 50, NewBalance: 1050}
	g2     = gameclient.Game{ID: "g-2", UserID: "alice", GeneratedNumber: 40, BalanceChange: -35, NewBalance: 1015}
)

// primed returns a reconciler whose view holds balance 1000 and no games.
func primed(t *testing.T, b *backend) *reconciler.Reconciler {
	t.Helper()

	b.On("Balance", ctx, "alice").Return(int64(1000), nil).Once()
	b.On("History", ctx, "alice", 3).Return([]gameclient.Game{}, nil).Once()

	r := reconciler.New(b, "alice", 3, zap.NewNop())
	require.NoError(t, r.Refresh(ctx))
	require.Equal(t, int64(1000), r.Snapshot().Balance)

	return r
}

func TestReconciler_Play(t *testing.T) {
	t.Run("applies the outcome then adopts server state", func(t *testing.T) {
		b := &backend{}
		r := primed(t, b)
		rec := &recorder{}
		r.Subscribe(rec.record)

		b.On("Play", ctx, "alice", anyKey).Return(g1, nil).Once()
		b.On("Balance", ctx, "alice").Return(int64(1050), nil).Once()
		b.On("History", ctx, "alice", 3).Return([]gameclient.Game{g1}, nil).Once()

		game, err := r.Play(ctx)

		require.NoError(t, err)
		assert.Equal(t, g1, game)
		assert.Equal(t, []int64{1050, 1050}, rec.balances())
		assert.True(t, rec.views[0].Pending)
		assert.False(t, rec.views[1].Pending)

		view := r.Snapshot()
		assert.Equal(t, int64(1050), view.Confirmed)
		assert.Equal(t, []gameclient.Game{g1}, view.RecentHistory)
		b.AssertExpectations(t)
	})

	t.Run("server truth replaces a diverged speculation", func(t *testing.T) {
		b := &backend{}
		r := primed(t, b)
		rec := &recorder{}
		r.Subscribe(rec.record)

		// an admin edit landed between the play and the refresh
		b.On("Play", ctx, "alice", anyKey).Return(g2, nil).Once()
		b.On("Balance", ctx, "alice").Return(int64(5000), nil).Once()
		b.On("History", ctx, "alice", 3).Return([]gameclient.Game{g2}, nil).Once()

		_, err := r.Play(ctx)

		require.NoError(t, err)
		assert.Equal(t, []int64{965, 5000}, rec.balances())
		assert.Equal(t, int64(5000), r.Snapshot().Balance)
	})

	t.Run("failed play rolls back by refreshing", func(t *testing.T) {
		b := &backend{}
		r := primed(t, b)
		rec := &recorder{}
		r.Subscribe(rec.record)

		b.On("Play", ctx, "alice", anyKey).Return(gameclient.Game{}, gameclient.ErrUserNotFound).Once()
		b.On("Balance", ctx, "alice").Return(int64(1000), nil).Once()
		b.On("History", ctx, "alice", 3).Return([]gameclient.Game{}, nil).Once()

		_, err := r.Play(ctx)

		assert.ErrorIs(t, err, gameclient.ErrUserNotFound)
		assert.Equal(t, []int64{1000}, rec.balances())
		assert.False(t, r.Snapshot().Pending)
		b.AssertNumberOfCalls(t, "Play", 1)
	})

	t.Run("retryable failure is re-sent with the same key", func(t *testing.T) {
		b := &backend{}
		r := primed(t, b)

		var keys []string
		b.On("Play", ctx, "alice", anyKey).Return(gameclient.Game{}, gameclient.ErrTimeout).Once().
			Run(func(args mock.Arguments) { keys = append(keys, args.String(2)) })
		b.On("Play", ctx, "alice", anyKey).Return(g1, nil).Once().
			Run(func(args mock.Arguments) { keys = append(keys, args.String(2)) })
		b.On("Balance", ctx, "alice").Return(int64(1050), nil).Once()
		b.On("History", ctx, "alice", 3).Return([]gameclient.Game{g1}, nil).Once()

		game, err := r.Play(ctx)

		require.NoError(t, err)
		assert.Equal(t, "g-1", game.ID)
		require.Len(t, keys, 2)
		assert.Equal(t, keys[0], keys[1])
		assert.NotEmpty(t, keys[0])
	})

	t.Run("failed refresh keeps the speculation pending", func(t *testing.T) {
		b := &backend{}
		r := primed(t, b)

		b.On("Play", ctx, "alice", anyKey).Return(g1, nil).Once()
		b.On("Balance", ctx, "alice").Return(int64(0), errors.New("network down")).Once()

		_, err := r.Play(ctx)

		require.NoError(t, err)
		view := r.Snapshot()
		assert.Equal(t, int64(1050), view.Balance)
		assert.True(t, view.Pending)
	})

	t.Run("recent history is capped", func(t *testing.T) {
		b := &backend{}
		b.On("Balance", ctx, "alice").Return(int64(1000), nil).Once()
		b.On("History", ctx, "alice", 1).Return([]gameclient.Game{g2}, nil).Once()

		r := reconciler.New(b, "alice", 1, zap.NewNop())
		require.NoError(t, r.Refresh(ctx))

		b.On("Play", ctx, "alice", anyKey).Return(g1, nil).Once()
		b.On("Balance", ctx, "alice").Return(int64(0), errors.New("down")).Once()

		_, err := r.Play(ctx)

		require.NoError(t, err)
		assert.Equal(t, []gameclient.Game{g1}, r.Snapshot().RecentHistory)
	})
}

func TestReconciler_StaleRefreshIsDiscarded(t *testing.T) {
	b := &backend{}
	r := primed(t, b)

	entered := make(chan struct{})
	release := make(chan struct{})

	// the slow refresh reads a balance from before the play
	b.On("Balance", ctx, "alice").Return(int64(1000), nil).Once().
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		})

	done := make(chan error, 1)
	go func() { done <- r.Refresh(ctx) }()
	<-entered

	b.On("Play", ctx, "alice", anyKey).Return(g1, nil).Once()
	b.On("Balance", ctx, "alice").Return(int64(1050), nil).Once()
	b.On("History", ctx, "alice", 3).Return([]gameclient.Game{g1}, nil).Once()

	_, err := r.Play(ctx)
	require.NoError(t, err)

	b.On("History", ctx, "alice", 3).Return([]gameclient.Game{}, nil).Once()
	close(release)
	require.NoError(t, <-done)

	view := r.Snapshot()
	assert.Equal(t, int64(1050), view.Balance)
	assert.Equal(t, []gameclient.Game{g1}, view.RecentHistory)
}

func TestReconciler_Unsubscribe(t *testing.T) {
	b := &backend{}
	r := primed(t, b)
	rec := &recorder{}
	unsubscribe := r.Subscribe(rec.record)
	unsubscribe()

	b.On("Balance", ctx, "alice").Return(int64(1000), nil).Once()
	b.On("History", ctx, "alice", 3).Return([]gameclient.Game{}, nil).Once()
	require.NoError(t, r.Refresh(ctx))

	assert.Empty(t, rec.balances())
}
