package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rainmaker/riskd/internal/config"
	"github.com/rainmaker/riskd/internal/database"
	"github.com/rainmaker/riskd/internal/modules/holdings"
	holdingshandlers "github.com/rainmaker/riskd/internal/modules/holdings/handlers"
	"github.com/rainmaker/riskd/internal/modules/prices"
	priceshandlers "github.com/rainmaker/riskd/internal/modules/prices/handlers"
	"github.com/rainmaker/riskd/internal/modules/profile"
	profilehandlers "github.com/rainmaker/riskd/internal/modules/profile/handlers"
	"github.com/rainmaker/riskd/internal/modules/risk"
	riskhandlers "github.com/rainmaker/riskd/internal/modules/risk/handlers"
	"github.com/rainmaker/riskd/internal/modules/snapshots"
	snapshothandlers "github.com/rainmaker/riskd/internal/modules/snapshots/handlers"
	"github.com/rainmaker/riskd/internal/scheduler"
	"github.com/rainmaker/riskd/internal/server"
	"github.com/rainmaker/riskd/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting risk server")

	// Three databases, split by access pattern: durable profile data,
	// append-heavy price history and an ephemeral snapshot cache.
	profileDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("profile"),
		Profile: database.ProfileStandard,
		Name:    "profile",
	})
	if err != nil {
		return fmt.Errorf("failed to open profile database: %w", err)
	}
	defer profileDB.Close()

	historyDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("history"),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer historyDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("cache"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{profileDB, historyDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	profileRepo := profile.NewRepository(profileDB.Conn(), log)
	holdingsRepo := holdings.NewRepository(profileDB.Conn(), log)
	pricesRepo := prices.NewRepository(historyDB.Conn(), log)
	snapshotRepo := snapshots.NewRepository(cacheDB.Conn(), log)

	riskService := risk.NewService(profileRepo, holdingsRepo, pricesRepo, risk.Params{
		VaRPercentile:     cfg.Risk.VaRPercentile,
		TierBMultiplier:   cfg.Risk.TierBMultiplier,
		TierBInnerDivisor: cfg.Risk.TierBInnerDivisor,
		DaysPerMonth:      cfg.Risk.DaysPerMonth,
	}, log)

	sched := scheduler.New(log)

	checkpointJob := scheduler.NewCheckpointJob(
		[]*database.DB{profileDB, historyDB, cacheDB}, log)
	if err := sched.AddJob("*/30 * * * *", checkpointJob); err != nil {
		return fmt.Errorf("failed to register checkpoint job: %w", err)
	}

	retention := time.Duration(cfg.SnapshotRetentionDays) * 24 * time.Hour
	cleanupJob := scheduler.NewSnapshotCleanupJob(snapshotRepo, retention, log)
	if err := sched.AddJob("30 3 * * *", cleanupJob); err != nil {
		return fmt.Errorf("failed to register snapshot cleanup job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:              log,
		Port:             cfg.Port,
		DevMode:          cfg.DevMode,
		ProfileHandlers:  profilehandlers.NewHandler(profileRepo, log),
		HoldingsHandlers: holdingshandlers.NewHandler(holdingsRepo, log),
		PriceHandlers:    priceshandlers.NewHandler(pricesRepo, log),
		RiskHandlers:     riskhandlers.NewHandler(riskService, snapshotRepo, log),
		SnapshotHandlers: snapshothandlers.NewHandler(snapshotRepo, log),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
