package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/adplanner/internal/api"
	"github.com/ignite/adplanner/internal/catalog"
	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/creative"
	"github.com/ignite/adplanner/internal/deploy"
	"github.com/ignite/adplanner/internal/events"
	"github.com/ignite/adplanner/internal/llm"
	"github.com/ignite/adplanner/internal/orchestrator"
	"github.com/ignite/adplanner/internal/pkg/logger"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err.Error())
		os.Exit(1)
	}
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logger.DEBUG)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, closeCat, err := buildCatalog(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize catalog", "error", err.Error())
		os.Exit(1)
	}
	defer closeCat()

	var completer llm.Completer
	if cfg.Bedrock.Enabled {
		bedrock, err := llm.NewBedrockClient(ctx, cfg.Bedrock)
		if err != nil {
			logger.Error("failed to initialize bedrock client", "error", err.Error())
			os.Exit(1)
		}
		completer = bedrock
		logger.Info("generation service enabled", "model_id", cfg.Bedrock.ModelID)
	} else {
		logger.Warn("generation service disabled, creative uses template fallbacks")
	}

	sink, closeSink := buildEventSink(ctx, cfg)
	defer closeSink()

	policy, err := creative.LoadPolicy(cfg.Creative.PolicyPath)
	if err != nil {
		logger.Error("failed to load creative policy", "path", cfg.Creative.PolicyPath, "error", err.Error())
		os.Exit(1)
	}
	validator := creative.NewValidator(cfg.QA)
	generator := creative.NewGenerator(completer, policy, validator, cfg.Creative, cfg.QA)

	orch := orchestrator.New(cat, generator, completer, sink, cfg.Planner)
	handlers := api.NewHandlers(orch, cat, completer, deploy.NewMetaSink())
	server := api.NewServer(cfg.Server, handlers)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	case sig := <-done:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err.Error())
		}
	}
}

func buildCatalog(ctx context.Context, cfg *config.Config) (catalog.Catalog, func(), error) {
	if cfg.Catalog.DatabaseURL != "" {
		pg, err := catalog.NewPostgres(ctx, cfg.Catalog.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("catalog source", "type", "postgres")
		return pg, func() { pg.Close() }, nil
	}
	mem, err := catalog.LoadCSV(cfg.Catalog.CSVPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("catalog source", "type", "csv", "path", cfg.Catalog.CSVPath)
	return mem, func() {}, nil
}

func buildEventSink(ctx context.Context, cfg *config.Config) (events.Sink, func()) {
	if cfg.Redis.Enabled {
		sink, err := events.NewRedisSink(ctx, cfg.Redis)
		if err == nil {
			logger.Info("event sink", "type", "redis", "stream", cfg.Redis.Stream)
			return sink, func() { sink.Close() }
		}
		logger.Warn("redis event sink unavailable, using memory sink", "error", err.Error())
	}
	return events.NewMemorySink(), func() {}
}
