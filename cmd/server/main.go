package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/clinic-shift-scheduler/internal/adapters/cache"
	httpadapter "github.com/ogurasousui/clinic-shift-scheduler/internal/adapters/http"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/adapters/repository/postgres"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/exchange"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/schedule"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/platform/config"
	pg "github.com/ogurasousui/clinic-shift-scheduler/internal/platform/db/postgres"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/platform/server"
)

const shiftCacheSize = 128

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		logger = logger.Level(level)
	}
	if cfg.Log.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database pool")
	}
	defer dbPool.Close()

	tx := pg.NewTransactionManager(dbPool)

	shiftRepo := postgres.NewShiftRepository(dbPool)
	catalog, err := cache.NewShiftCatalog(shiftRepo, shiftCacheSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize shift cache")
	}

	doctorRepo := postgres.NewDoctorRepository(dbPool)
	assignmentRepo := postgres.NewAssignmentRepository(dbPool)
	exchangeRepo := postgres.NewExchangeRepository(dbPool)

	assignmentSvc := assignment.NewService(assignmentRepo, nil, tx)
	exchangeSvc := exchange.NewService(exchangeRepo, assignmentRepo, doctorRepo, nil, tx)
	projector := schedule.NewProjector(assignmentRepo, exchangeRepo, catalog, tx)

	handler := httpadapter.NewHandler(assignmentSvc, exchangeSvc, projector, logger)
	router := httpadapter.NewRouter(handler, logger)
	srv := server.New(cfg.Server.ListenAddr, router, cfg.Server.ShutdownTimeout)

	logger.Info().Str("addr", cfg.Server.ListenAddr).Msg("HTTP server listening")

	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
}
