package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/kweiss-dev/minerva/internal/adapters/duckdb"
	"github.com/kweiss-dev/minerva/internal/adapters/llm"
	"github.com/kweiss-dev/minerva/internal/adapters/rank"
	"github.com/kweiss-dev/minerva/internal/config"
	"github.com/kweiss-dev/minerva/internal/core/domain"
	"github.com/kweiss-dev/minerva/internal/core/services"
	"github.com/kweiss-dev/minerva/pkg/kernel"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("starting minerva")

	if err := run(logger); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	cfgPath := os.Getenv("MINERVA_CONFIG")
	if cfgPath == "" {
		cfgPath = "minerva.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, err := duckdb.NewRepository(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer repo.Close()

	provider, err := llm.Build(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("build llm provider: %w", err)
	}

	gen := services.NewGenClient(logger, provider, services.GenOptions{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxRetries:  cfg.Agent.RetryAttempts,
		RetryDelay:  cfg.Agent.RetryDelay(),
	})

	ranker := rank.NewLexicalRanker()

	toolRegistry := domain.NewToolRegistry()
	for _, tool := range []*domain.Tool{
		services.NewNotesSearchTool(repo, ranker),
		services.NewCorpusSearchTool(repo, ranker),
		services.NewWebSearchTool(),
		services.NewCalculateTool(),
		services.NewCurrentTimeTool(),
		services.NewNoOpTool(),
	} {
		if err := toolRegistry.Register(tool); err != nil {
			return fmt.Errorf("register tool %s: %w", tool.Name, err)
		}
	}
	if len(cfg.Agent.EnabledTools) > 0 {
		toolRegistry = toolRegistry.FilterByNames(cfg.Agent.EnabledTools)
	}

	schemaRegistry := domain.NewSchemaRegistry()
	classifier := services.NewClassifier(logger, gen, toolRegistry)
	synthesizer := services.NewSynthesizer(logger, gen, schemaRegistry)
	agent := services.NewAgentService(logger, gen, classifier, synthesizer, toolRegistry, services.AgentConfig{
		MaxIterations: cfg.Agent.MaxIterations,
		Timeout:       cfg.Agent.Timeout(),
	})

	apiServer := kernel.NewServer(logger, agent, toolRegistry, schemaRegistry)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: c.Handler(apiServer.Handler()),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting api server", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
