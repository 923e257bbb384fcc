package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/flashboard/bingo-server/internal/auth"
	"github.com/flashboard/bingo-server/internal/board"
	"github.com/flashboard/bingo-server/internal/config"
	"github.com/flashboard/bingo-server/internal/engine"
	"github.com/flashboard/bingo-server/internal/httpapi"
	"github.com/flashboard/bingo-server/internal/settings"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	store := settings.NewFileStore(cfg.SettingsFile)
	loaded, err := store.Load()
	if err != nil {
		log.Warn("settings load failed, using defaults", zap.Error(err))
		loaded = settings.Defaults()
	}
	pin := loaded.BoardPin
	if pin == "" {
		pin = cfg.BoardPin
	}

	clock := clockwork.NewRealClock()
	game := engine.NewGame(cfg.MaxCards, board.NewRand(time.Now().UnixNano()))
	guard := auth.NewGuard(pin, cfg.AuthTTL, clock)

	b := board.New(context.Background(), board.Options{
		Game:           game,
		Guard:          guard,
		Clock:          clock,
		Log:            log,
		Store:          store,
		Settings:       loaded,
		MaxSubscribers: cfg.MaxSubscribers,
		PatternCycle:   clock.NewTicker(cfg.PatternCycle),
	})

	handler := httpapi.SetupRoutes(b, log)

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
