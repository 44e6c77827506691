package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/config"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/httpapi"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/hub"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/store"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/table"
)

func main() {
	cfg := config.FromEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connect failed", zap.Error(err))
		}
		st = pg
		logger.Info("snapshot store: postgres")
	} else {
		st = store.NewMemory()
		logger.Warn("no DATABASE_URL set, games will not survive restarts")
	}

	tableCfg := table.Config{
		TurnTimeout:     cfg.TurnTimeout,
		BotDelay:        cfg.BotDelay,
		FlushInterval:   cfg.FlushInterval,
		BotReplaceAfter: cfg.BotReplaceAfter,
	}
	h := hub.NewHub(ctx, st, tableCfg, cfg.StuckIdle, logger)

	recoverGames(ctx, st, h, logger)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	g.Go(func() error {
		return h.RunSweeper(gctx, cfg.SweepInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// recoverGames resurrects every snapshot persisted mid-bidding or mid-play.
// Seated humans come back disconnected; their turn timers pick up from here.
func recoverGames(ctx context.Context, st store.Store, h *hub.Hub, logger *zap.Logger) {
	ids, err := st.ListRecoverable(ctx)
	if err != nil {
		logger.Error("recovery scan failed", zap.Error(err))
		return
	}
	for _, id := range ids {
		blob, err := st.LoadSnapshot(ctx, id)
		if err != nil {
			logger.Error("recovery load failed", zap.String("game_id", id), zap.Error(err))
			continue
		}
		game, err := store.Decode(blob)
		if err != nil {
			logger.Error("recovery decode failed, discarding", zap.String("game_id", id), zap.Error(err))
			_ = st.Delete(ctx, id)
			continue
		}
		for _, fix := range store.Repair(game) {
			logger.Warn("snapshot repaired", zap.String("game_id", id), zap.String("fix", fix))
		}

		reply := make(chan *table.Table, 1)
		h.Inbox() <- hub.CreateTable{Game: game, Reply: reply}
		<-reply
		logger.Info("game recovered",
			zap.String("game_id", id),
			zap.String("phase", string(game.Phase)),
			zap.Int("round", game.Round))
	}
}
