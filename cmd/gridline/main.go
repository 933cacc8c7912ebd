package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/internal/authn"
	"github.com/aldenmeer/gridline/internal/config"
	"github.com/aldenmeer/gridline/internal/event"
	"github.com/aldenmeer/gridline/internal/inventory"
	"github.com/aldenmeer/gridline/internal/live"
	"github.com/aldenmeer/gridline/internal/registry"
	"github.com/aldenmeer/gridline/internal/server"
	"github.com/aldenmeer/gridline/internal/session"
	"github.com/aldenmeer/gridline/internal/store"
	"github.com/aldenmeer/gridline/pkg/module"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Gridline server starting")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := store.New(cfg.GetString("store.path"))
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer db.Close()

	bus := event.NewBus(logger.Named("bus"))

	secret := cfg.GetString("session.secret")
	if secret == "" {
		// Sessions will not survive a restart without a configured secret.
		secret = randomSecret()
		logger.Warn("session.secret not set, using an ephemeral secret")
	}
	sessions := session.NewManager(secret, cfg.GetDuration("session.ttl"), logger.Named("session"))
	defer sessions.Close()

	reg := registry.New(logger.Named("registry"))

	// Compile-time module composition, gated by config.
	modules := []module.Module{
		inventory.New(),
		authn.New(),
		live.New(),
	}
	for _, m := range modules {
		name := m.Info().Name
		if !cfg.GetBool("modules." + name + ".enabled") {
			logger.Info("module disabled by config", zap.String("module", name))
			continue
		}
		if err := reg.Register(m); err != nil {
			logger.Fatal("failed to register module", zap.String("module", name), zap.Error(err))
		}
	}

	if err := reg.Validate(); err != nil {
		logger.Fatal("module validation failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	depsFor := func(name string) module.Dependencies {
		return module.Dependencies{
			Logger: logger.Named(name),
			Config: cfg.Sub("modules." + name),
			Store:  db,
			Bus:    bus,
		}
	}
	if err := reg.InitAll(ctx, depsFor); err != nil {
		logger.Fatal("failed to initialize modules", zap.Error(err))
	}

	if err := reg.StartAll(ctx); err != nil {
		logger.Fatal("failed to start modules", zap.Error(err))
	}

	addr := cfg.GetString("server.host") + ":" + cfg.GetString("server.port")
	srv := server.New(addr, reg, sessions, float64(cfg.GetInt("server.rate_limit")), logger.Named("http"))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("Gridline server ready", zap.String("addr", addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	reg.StopAll(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("Gridline server stopped")
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
