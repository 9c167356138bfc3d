// Command player-sim drives a running game service through the client
// reconciler and reports how the cached view tracked the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/truenumber/gameservice/pkg/gameclient"
	"github.com/truenumber/gameservice/pkg/httpclient"
	"github.com/truenumber/gameservice/pkg/reconciler"
	"go.uber.org/zap"
)

type simConfig struct {
	baseURL string
	userID  string
	rounds  int
	recent  int
	timeout time.Duration
	create  bool
}

func parseFlags() simConfig {
	var cfg simConfig
	flag.StringVar(&cfg.baseURL, "url", "http://localhost:8080", "game service base url")
	flag.StringVar(&cfg.userID, "user", "", "user id to play as")
	flag.IntVar(&cfg.rounds, "rounds", 100, "number of plays")
	flag.IntVar(&cfg.recent, "recent", reconciler.DefaultRecentGames, "recent games kept in the view")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per request timeout")
	flag.BoolVar(&cfg.create, "create", false, "create the account before playing")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()
	if cfg.userID == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg simConfig, logger *zap.Logger) error {
	client := gameclient.NewClient(
		gameclient.Config{BaseURL: cfg.baseURL, Timeout: cfg.timeout},
		httpclient.NewHTTPClient(cfg.timeout),
	)

	if cfg.create {
		if err := client.CreateAccount(ctx, cfg.userID); err != nil && !errors.Is(err, gameclient.ErrUserExists) {
			return fmt.Errorf("create account: %w", err)
		}
	}

	r := reconciler.New(client, cfg.userID, cfg.recent, logger)
	if err := r.Refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}

	start := r.Snapshot().Balance
	var wins, losses, failures, diverged int

	// counts refreshes that corrected the optimistic balance
	var speculative int64
	var speculating bool
	r.Subscribe(func(v reconciler.View) {
		if v.Pending {
			speculative, speculating = v.Balance, true
			return
		}
		if speculating && v.Balance != speculative {
			diverged++
		}
		speculating = false
	})

	bar := pb.StartNew(cfg.rounds)
	for i := 0; i < cfg.rounds; i++ {
		game, err := r.Play(ctx)
		bar.Increment()

		if err != nil {
			failures++
			logger.Warn("play failed", zap.Int("round", i+1), zap.Error(err))
			continue
		}

		if game.Result {
			wins++
		} else {
			losses++
		}
	}
	bar.Finish()

	view := r.Snapshot()
	fmt.Printf("user=%s rounds=%d wins=%d losses=%d failures=%d\n", cfg.userID, cfg.rounds, wins, losses, failures)
	fmt.Printf("balance %d -> %d (confirmed %d, pending %t, corrected %d)\n",
		start, view.Balance, view.Confirmed, view.Pending, diverged)
	for _, g := range view.RecentHistory {
		fmt.Printf("  %s  n=%3d  %+d  -> %d\n", g.Date.Format(time.RFC3339), g.GeneratedNumber, g.BalanceChange, g.NewBalance)
	}

	return nil
}
