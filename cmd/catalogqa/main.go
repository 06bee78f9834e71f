package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tonehall/catalogqa/internal/config"
	"github.com/tonehall/catalogqa/internal/db"
	dbRedis "github.com/tonehall/catalogqa/internal/db/redis"
	"github.com/tonehall/catalogqa/internal/domain"
	logpkg "github.com/tonehall/catalogqa/internal/logger"
	"github.com/tonehall/catalogqa/internal/metrics"
	"github.com/tonehall/catalogqa/internal/repository/embcache"
	productrepo "github.com/tonehall/catalogqa/internal/repository/product"
	chiTransport "github.com/tonehall/catalogqa/internal/transport/chi"
	openaiTransport "github.com/tonehall/catalogqa/internal/transport/openai"
	composeruc "github.com/tonehall/catalogqa/internal/usecase/composer"
	engineuc "github.com/tonehall/catalogqa/internal/usecase/engine"
	healthuc "github.com/tonehall/catalogqa/internal/usecase/health"
	retrieveruc "github.com/tonehall/catalogqa/internal/usecase/retriever"
	routeruc "github.com/tonehall/catalogqa/internal/usecase/router"
	"github.com/tonehall/catalogqa/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalogqa API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	if cfg.Storage.KeyPrefix != "" {
		domain.KeyPrefix = cfg.Storage.KeyPrefix
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create product store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Product store not ready", zap.Error(err))
	}
	logger.Info("Connected to product store")

	if err := ensureProductIndex(ctx, store); err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}

	metrics.RegisterProviderMetrics()

	// Embedder chain: OpenAI -> cache decorator.
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		Model:      cfg.Provider.EmbeddingModel,
		Dimensions: cfg.Provider.Dimensions,
		Timeout:    time.Duration(cfg.Provider.EmbedTimeoutSec) * time.Second,
		Logger:     logger,
	})
	embedder := embcache.New(baseEmbedder, store, 0, metrics.EmbeddingCacheTotal, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Provider.EmbeddingModel),
		zap.Int("dimensions", cfg.Provider.Dimensions),
	)

	llm := openaiTransport.NewLLM(&openaiTransport.LLMConfig{
		APIKey:          cfg.Provider.APIKey,
		BaseURL:         cfg.Provider.BaseURL,
		Model:           cfg.Provider.ChatModel,
		ClassifyTimeout: time.Duration(cfg.Provider.ClassifyTimeoutSec) * time.Second,
		GenerateTimeout: time.Duration(cfg.Provider.GenerateTimeoutSec) * time.Second,
		Logger:          logger,
	})

	productRepo := productrepo.New(store, productrepo.Combinator(cfg.Retrieval.FilterCombinator))

	routerSvc := routeruc.New(llm, logger)
	retrieverSvc := retrieveruc.New(productRepo, embedder, retrieveruc.Config{
		SimilarityFloor: cfg.Retrieval.SimilarityFloor,
		CandidateCap:    cfg.Retrieval.CandidateCap,
		ResultLimit:     cfg.Retrieval.ResultLimit,
	}, logger)
	composerSvc := composeruc.New(llm, composeruc.Config{
		StrictThreshold: cfg.Retrieval.StrictThreshold,
	}, logger)
	engineSvc := engineuc.New(routerSvc, retrieverSvc, composerSvc, logger)
	healthSvc := healthuc.New(store, baseEmbedder, store, productrepo.IndexName())

	server := chiTransport.NewServer(engineSvc, retrieverSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// ensureProductIndex creates the FT index over product hashes when absent.
// Product records themselves are written by the ingestion pipeline; only the
// index is owned here.
func ensureProductIndex(ctx context.Context, store db.Store) error {
	def, err := productrepo.IndexDefinition()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}
	if err := store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}
