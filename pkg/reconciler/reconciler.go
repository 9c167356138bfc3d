// Package reconciler keeps a client-side view of a player's balance and
// recent games. Plays are reflected optimistically and then replaced by
// the authoritative state read back from the game service.
package reconciler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/truenumber/gameservice/pkg/gameclient"
	"go.uber.org/zap"
)

const DefaultRecentGames = 3

// Backend is the authoritative game service. gameclient.Client satisfies it.
type Backend interface {
	Play(ctx context.Context, userID, idempotencyKey string) (gameclient.Game, error)
	Balance(ctx context.Context, userID string) (int64, error)
	History(ctx context.Context, userID string, limit int) ([]gameclient.Game, error)
}

type View struct {
	UserID        string
	Balance       int64
	Confirmed     int64
	RecentHistory []gameclient.Game
	// Pending is set while Balance holds an unconfirmed speculative value.
	Pending bool
}

func (v View) clone() View {
	v.RecentHistory = append([]gameclient.Game(nil), v.RecentHistory...)
	return v
}

type Reconciler struct {
	backend Backend
	userID  string
	recent  int
	logger  *zap.Logger

	mu       sync.Mutex
	view     View
	gen      uint64
	applied  uint64
	inflight int
	subs     map[int]func(View)
	nextSub  int
}

func New(backend Backend, userID string, recent int, logger *zap.Logger) *Reconciler {
	if recent <= 0 {
		recent = DefaultRecentGames
	}

	return &Reconciler{
		backend: backend,
		userID:  userID,
		recent:  recent,
		logger:  logger,
		view:    View{UserID: userID},
		subs:    make(map[int]func(View)),
	}
}

func (r *Reconciler) Snapshot() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.view.clone()
}

// Subscribe registers fn to receive every view change. Callbacks run on the
// goroutine that caused the change and must not call back into r.
func (r *Reconciler) Subscribe(fn func(View)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Refresh replaces the view with the server's balance and recent history.
// A refresh that started before a newer update was applied is dropped.
func (r *Reconciler) Refresh(ctx context.Context) error {
	gen := r.nextGen()

	balance, err := r.backend.Balance(ctx, r.userID)
	if err != nil {
		r.logger.Warn("balance refresh failed", zap.String("user_id", r.userID), zap.Error(err))
		return err
	}

	history, err := r.backend.History(ctx, r.userID, r.recent)
	if err != nil {
		r.logger.Warn("history refresh failed", zap.String("user_id", r.userID), zap.Error(err))
		return err
	}

	r.mu.Lock()
	if gen < r.applied {
		r.mu.Unlock()
		r.logger.Debug("discarding stale refresh", zap.String("user_id", r.userID), zap.Uint64("generation", gen))
		return nil
	}

	r.applied = gen
	r.view.Balance = balance
	r.view.Confirmed = balance
	r.view.RecentHistory = trim(history, r.recent)
	r.view.Pending = r.inflight > 0
	view, subs := r.view.clone(), r.subscribers()
	r.mu.Unlock()

	notify(subs, view)
	return nil
}

// Play settles one game. On success the outcome is applied to the view
// speculatively and then reconciled; on failure the view is reloaded so no
// speculative value survives. A retryable failure is re-sent once with the
// same idempotency key so the server settles it at most once.
func (r *Reconciler) Play(ctx context.Context) (gameclient.Game, error) {
	key := uuid.NewString()

	r.mu.Lock()
	r.inflight++
	r.mu.Unlock()

	game, err := r.backend.Play(ctx, r.userID, key)
	if err != nil && gameclient.IsRetryable(err) {
		r.logger.Info("retrying play", zap.String("user_id", r.userID), zap.String("idempotency_key", key), zap.Error(err))
		game, err = r.backend.Play(ctx, r.userID, key)
	}

	if err != nil {
		r.done()
		if refreshErr := r.Refresh(ctx); refreshErr != nil {
			r.logger.Error("refresh after failed play", zap.String("user_id", r.userID), zap.Error(refreshErr))
		}
		return gameclient.Game{}, err
	}

	r.speculate(game)
	r.done()

	if err := r.Refresh(ctx); err != nil {
		r.logger.Error("refresh after play", zap.String("user_id", r.userID), zap.Error(err))
	}

	return game, nil
}

func (r *Reconciler) speculate(game gameclient.Game) {
	r.mu.Lock()
	r.gen++
	r.applied = r.gen

	r.view.Balance += game.BalanceChange
	r.view.Confirmed = game.NewBalance
	r.view.RecentHistory = trim(append([]gameclient.Game{game}, r.view.RecentHistory...), r.recent)
	r.view.Pending = true
	view, subs := r.view.clone(), r.subscribers()
	r.mu.Unlock()

	notify(subs, view)
}

func (r *Reconciler) done() {
	r.mu.Lock()
	r.inflight--
	r.mu.Unlock()
}

func (r *Reconciler) nextGen() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	return r.gen
}

func (r *Reconciler) subscribers() []func(View) {
	subs := make([]func(View), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(View), view View) {
	for _, fn := range subs {
		fn(view.clone())
	}
}

func trim(games []gameclient.Game, n int) []gameclient.Game {
	if len(games) > n {
		games = games[:n]
	}
	return append([]gameclient.Game(nil), games...)
}
