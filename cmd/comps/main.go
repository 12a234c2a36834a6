package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/config"
	"github.com/homegrid-io/comps/internal/domain/search/mode"
	"github.com/homegrid-io/comps/internal/encode"
	encodecache "github.com/homegrid-io/comps/internal/encode/cache"
	"github.com/homegrid-io/comps/internal/encode/clip"
	encodeopenai "github.com/homegrid-io/comps/internal/encode/openai"
	logpkg "github.com/homegrid-io/comps/internal/logger"
	"github.com/homegrid-io/comps/internal/metrics"
	"github.com/homegrid-io/comps/internal/store"
	storeqdrant "github.com/homegrid-io/comps/internal/store/qdrant"
	storeredis "github.com/homegrid-io/comps/internal/store/redis"
	"github.com/homegrid-io/comps/internal/transport/httpapi"
	embeduc "github.com/homegrid-io/comps/internal/usecase/embed"
	indexuc "github.com/homegrid-io/comps/internal/usecase/index"
	searchuc "github.com/homegrid-io/comps/internal/usecase/search"
	"github.com/homegrid-io/comps/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting comps API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
	)

	// Create vector store based on driver
	var (
		vectorStore store.Store
		redisStore  *storeredis.Store
	)
	switch cfg.Store.Driver {
	case "qdrant":
		vectorStore, err = storeqdrant.NewStore(storeqdrant.Config{
			Addr:   cfg.Store.Qdrant.Addr,
			APIKey: cfg.Store.Qdrant.APIKey,
		})
	case "redis":
		redisStore, err = storeredis.NewStore(storeredis.Config{
			Addrs:    cfg.Store.Redis.Addrs,
			Password: cfg.Store.Redis.Password,
		})
		vectorStore = redisStore
	default:
		logger.Fatal("Unknown store driver", zap.String("driver", cfg.Store.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer vectorStore.Close()

	// Wait for the store to be ready
	ctx := context.Background()
	if err := vectorStore.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector store not ready", zap.Error(err))
	}
	logger.Info("Connected to vector store")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Build encoder chain — composition root
	var textEncoder encode.TextEncoder = encodeopenai.NewEncoder(&encodeopenai.Config{
		APIKey:     cfg.Encoding.Text.APIKey,
		BaseURL:    cfg.Encoding.Text.BaseURL,
		Model:      cfg.Encoding.Text.Model,
		Dimensions: cfg.Encoding.Text.Dimensions,
		Logger:     logger,
	})
	if cfg.Encoding.Cache.Enabled && redisStore != nil {
		textEncoder = encodecache.New(textEncoder, redisStore, metrics.EmbeddingCacheTotal, logger)
	}

	imageEncoder := clip.NewClient(
		cfg.Encoding.Image.BaseURL,
		cfg.Encoding.Image.Model,
		time.Duration(cfg.Encoding.Image.TimeoutSec)*time.Second,
	)
	logger.Info("Encoders created",
		zap.String("text_model", cfg.Encoding.Text.Model),
		zap.String("image_model", cfg.Encoding.Image.Model),
		zap.Bool("cache", cfg.Encoding.Cache.Enabled),
	)

	fetcher := embeduc.NewHTTPPhotoFetcher(time.Duration(cfg.Encoding.PhotoFetch.TimeoutSec) * time.Second)
	generator := embeduc.NewGenerator(textEncoder, imageEncoder, fetcher, cfg.Encoding.PhotoFetch.Workers, logger)

	// Create use case services
	indexSvc := indexuc.New(vectorStore, generator, logger)
	if err := indexSvc.EnsureCollections(ctx); err != nil {
		logger.Fatal("Failed to ensure collections", zap.Error(err))
	}

	searchSvc, err := searchuc.New(vectorStore, nil, logger)
	if err != nil {
		logger.Fatal("Failed to create search service", zap.Error(err))
	}
	searchSvc.WithVisualRetrieval(cfg.Search.UseVisual)

	// Create HTTP server
	server := httpapi.NewServer(indexSvc, searchSvc, vectorStore, httpapi.Options{
		DefaultMode:  mode.Mode(cfg.Search.DefaultMode),
		DefaultTopK:  cfg.Search.DefaultTopK,
		MaxBatchSize: cfg.Index.MaxBatchSize,
		BatchWorkers: cfg.Index.Workers,
	}, logger)

	r := chi.NewRouter()
	r.Use(httpapi.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(httpapi.WideEvent(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
