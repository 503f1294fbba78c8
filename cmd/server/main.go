package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pmehra/teamtab/internal/api"
	"github.com/pmehra/teamtab/internal/auth"
	"github.com/pmehra/teamtab/internal/config"
	"github.com/pmehra/teamtab/internal/ledger"
	"github.com/pmehra/teamtab/internal/notify"
	"github.com/pmehra/teamtab/internal/storage/sqlite"
	"github.com/pmehra/teamtab/internal/workflow"
	"github.com/pmehra/teamtab/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logger.Level)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.Database.Path)

	engine := ledger.New(ledger.Config{
		Epsilon:   cfg.Settlement.Epsilon,
		Precision: cfg.Settlement.Precision,
	})
	requests := workflow.New(store, notify.LogNotifier{}, workflow.Config{
		Expiry: cfg.Settlement.Expiry,
		Round:  engine.Round,
	})
	authn := auth.NewPasswordAuthenticator(store)
	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	server := api.NewServer(api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, store, engine, requests, authn, jwt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
