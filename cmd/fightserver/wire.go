//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/fightsim/internal/api"
	"github.com/cory-johannsen/fightsim/internal/arena"
	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/game/ai"
	"github.com/cory-johannsen/fightsim/internal/game/bout"
	"github.com/cory-johannsen/fightsim/internal/storage/postgres"
)

var configSet = wire.NewSet(
	wire.FieldsOf(new(config.Config), "Database", "Logging", "Bout", "Arena", "LLM", "Scripting"),
)

var storageSet = wire.NewSet(
	providePool,
	provideResultStore,
	wire.Bind(new(arena.ResultStore), new(*postgres.ResultStore)),
	wire.Bind(new(api.HealthChecker), new(*postgres.Pool)),
)

var fightSet = wire.NewSet(
	provideCatalog,
	provideScripts,
	provideRegistry,
	bout.TuningFromConfig,
	arena.NewRunner,
	wire.Bind(new(arena.BrainResolver), new(*ai.Registry)),
	wire.Bind(new(api.BoutSource), new(*arena.Runner)),
)

var transportSet = wire.NewSet(
	api.NewRouter,
	provideHealthServer,
	provideGRPCServer,
)

func initializeApp(ctx context.Context, cfg config.Config, plans planDir) (*app, func(), error) {
	wire.Build(configSet, provideLogger, storageSet, fightSet, transportSet, newApp)
	return nil, nil, nil
}
