// Package main provides the fight server: it runs a card of bouts in real time,
// persists results to PostgreSQL, and serves bout status over HTTP with a gRPC
// health endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/fightsim/internal/arena"
	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	cardPath := flag.String("card", "", "fight card YAML to run at startup; empty = serve only")
	plansDir := flag.String("plans", "", "directory of HTN game plan YAML files to register")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	a, cleanup, err := initializeApp(ctx, cfg, planDir(*plansDir))
	if err != nil {
		log.Fatalf("initializing server: %v", err)
	}
	defer cleanup()
	logger := a.logger

	logger.Info("starting fight server",
		zap.String("http_addr", cfg.Arena.HTTPAddr),
		zap.String("grpc_addr", cfg.Arena.GRPCAddr),
	)

	lifecycle := server.NewLifecycle(logger, shutdownTimeout)

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func(context.Context) error {
			lis, err := net.Listen("tcp", cfg.Arena.GRPCAddr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Arena.GRPCAddr, err)
			}
			a.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			return a.grpc.Serve(lis)
		},
		StopFn: func(context.Context) {
			a.health.Shutdown()
			a.grpc.GracefulStop()
		},
	})

	httpServer := &http.Server{
		Addr:              cfg.Arena.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	lifecycle.Add("http", &server.FuncService{
		StartFn: func(context.Context) error {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		StopFn: func(ctx context.Context) {
			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
		},
	})

	if *cardPath != "" {
		name, card, err := arena.LoadCard(*cardPath)
		if err != nil {
			logger.Fatal("loading card", zap.String("path", *cardPath), zap.Error(err))
		}
		lifecycle.Go("card", func(ctx context.Context) error {
			runCard(ctx, a.runner, name, card, logger)
			return nil
		})
	}

	logger.Info("fight server ready", zap.Duration("startup", time.Since(start)))
	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("fight server stopped", zap.Error(err))
	}
}

func runCard(ctx context.Context, runner *arena.Runner, name string, card []arena.Matchup, logger *zap.Logger) {
	logger.Info("card started", zap.String("card", name), zap.Int("bouts", len(card)))
	for i, res := range runner.RunCard(ctx, card) {
		if res.Err != nil {
			logger.Error("bout failed", zap.String("matchup", card[i].ID), zap.Error(res.Err))
			continue
		}
		logger.Info("card result",
			zap.String("bout_id", res.State.ID),
			zap.String("winner", res.State.Winner),
			zap.String("method", string(res.State.Method)),
		)
	}
	logger.Info("card finished", zap.String("card", name))
}
