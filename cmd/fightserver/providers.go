package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/fightsim/internal/arena"
	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/game/ai"
	"github.com/cory-johannsen/fightsim/internal/game/bout"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
	"github.com/cory-johannsen/fightsim/internal/observability"
	"github.com/cory-johannsen/fightsim/internal/scripting"
	"github.com/cory-johannsen/fightsim/internal/storage/postgres"
)

// planDir is the directory of HTN game plans registered at startup. Empty
// means none.
type planDir string

// app holds everything main needs to run the server.
type app struct {
	logger *zap.Logger
	runner *arena.Runner
	router *gin.Engine
	grpc   *grpc.Server
	health *health.Server
}

func newApp(logger *zap.Logger, runner *arena.Runner, router *gin.Engine, grpcServer *grpc.Server, healthServer *health.Server) *app {
	return &app{logger: logger, runner: runner, router: router, grpc: grpcServer, health: healthServer}
}

func provideLogger(cfg config.LoggingConfig) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func providePool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*postgres.Pool, func(), error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	logger.Info("database connected", zap.String("host", cfg.Host))
	return pool, pool.Close, nil
}

func provideResultStore(pool *postgres.Pool) *postgres.ResultStore {
	return postgres.NewResultStore(pool.DB())
}

func provideCatalog() *technique.Catalog {
	return technique.MustCatalog()
}

func provideScripts(catalog *technique.Catalog, logger *zap.Logger) (*scripting.Manager, func()) {
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewCryptoSource(), logger), logger)
	mgr.LookupTechnique = scripting.CatalogLookup(catalog)
	return mgr, mgr.Close
}

func provideRegistry(catalog *technique.Catalog, scripts *scripting.Manager, cfg config.ScriptingConfig, llm config.LLMConfig, plans planDir, logger *zap.Logger) (*ai.Registry, error) {
	reg := ai.NewRegistry(catalog, scripts, cfg.InstructionLimit, logger)
	reg.NewLLM = func() bout.DecisionProvider { return ai.NewLLM(llm) }
	if plans == "" {
		return reg, nil
	}
	domains, err := ai.LoadDomains(string(plans))
	if err != nil {
		return nil, fmt.Errorf("loading game plans: %w", err)
	}
	for _, d := range domains {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	logger.Info("registered game plans", zap.Int("count", len(domains)))
	return reg, nil
}

func provideHealthServer() *health.Server {
	return health.NewServer()
}

func provideGRPCServer(hs *health.Server) *grpc.Server {
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	return s
}
