package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truenumber/gameservice/internal/model"
	"github.com/truenumber/gameservice/internal/repository"
)

func TestSettlementEvent_Outbox(t *testing.T) {
	repo := repository.NewSettlementEventRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &model.SettlementEvent{ID: "ev-1", GameID: "g-1", UserID: "alice", BalanceChange: 50, NewBalance: 1050}))
	require.NoError(t, repo.Create(ctx, &model.SettlementEvent{ID: "ev-2", GameID: "g-2", UserID: "alice", BalanceChange: -35, NewBalance: 1015}))

	events, err := repo.FindUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	require.NoError(t, repo.MarkPublished(ctx, "ev-1", time.Now()))

	t.Run("published events are skipped", func(t *testing.T) {
		events, err := repo.FindUnpublished(ctx, 10)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "ev-2", events[0].ID)
	})

	t.Run("marking twice affects no rows", func(t *testing.T) {
		assert.ErrorIs(t, repo.MarkPublished(ctx, "ev-1", time.Now()), repository.ErrNoRowsAffected)
	})

	t.Run("respects batch size", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &model.SettlementEvent{ID: "ev-3", GameID: "g-3", UserID: "bob"}))

		events, err := repo.FindUnpublished(ctx, 1)

		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}
