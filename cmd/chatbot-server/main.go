// cmd/chatbot-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"retail-chatbot/internal/analytics"
	"retail-chatbot/internal/cache"
	"retail-chatbot/internal/chatbot"
	"retail-chatbot/internal/classifier"
	"retail-chatbot/internal/common/auth"
	"retail-chatbot/internal/common/config"
	"retail-chatbot/internal/common/database"
	"retail-chatbot/internal/common/llm"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/common/observability"
	"retail-chatbot/internal/handlers"
	"retail-chatbot/internal/handlers/general"
	"retail-chatbot/internal/handlers/giftcard"
	"retail-chatbot/internal/handlers/order"
	"retail-chatbot/internal/handlers/policy"
	"retail-chatbot/internal/handlers/profile"
	"retail-chatbot/internal/handlers/storelocator"
	"retail-chatbot/internal/retrieval"
	"retail-chatbot/internal/server"
	"retail-chatbot/internal/tools"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chatbot server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("model", cfg.LLM.Model),
	)

	obs := observability.New("retail-chatbot")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Commerce auth + tool clients ---
	authClient := auth.NewClient(auth.Config{
		TokenURL:     cfg.Auth.TokenURL,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		GrantType:    cfg.Auth.GrantType,
		Timeout:      time.Duration(cfg.Auth.Timeout) * time.Millisecond,
	}, log)

	toolClient := tools.New(authClient, tools.Options{
		OrderRefineCode: strconv.Itoa(cfg.Commerce.OrderRefine),
		StoreLimit:      cfg.Commerce.StoreLimit,
	}, log)

	// --- LLM + intent classifier ---
	llmClient := llm.NewOpenAIClient(llm.Options{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: time.Duration(cfg.LLM.Timeout) * time.Millisecond,
	}, log)

	intentClassifier, err := classifier.New(llmClient, cfg.Caches.Classifier.Size, log)
	if err != nil {
		zapLog.Fatal("classifier init failed", zap.Error(err))
	}

	// --- Policy document store ---
	embedding := chromem.NewEmbeddingFuncOpenAI(cfg.LLM.APIKey, chromem.EmbeddingModelOpenAI3Small)
	store := retrieval.NewStore(embedding, retrieval.Options{
		TopK:           cfg.Retrieval.TopK,
		ContextDocs:    cfg.Retrieval.ContextDocs,
		ChunkSentences: cfg.Retrieval.ChunkSentences,
	}, log)
	if cfg.Retrieval.WarmOnStart {
		if err := store.InitializeAll(); err != nil {
			zapLog.Fatal("policy store warm-up failed", zap.Error(err))
		}
		zapLog.Info("Policy collections created for all brands")
	}

	// --- Response cache ---
	var responseCache cache.ResponseCache
	switch cfg.Caches.Response.Backend {
	case "redis":
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			// Test the connection with context
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		responseCache = cache.NewRedisCache(
			redisClient.GetClient(),
			time.Duration(cfg.Caches.Response.TTL)*time.Second,
			log,
		)
		zapLog.Info("Redis response cache connected successfully")
	default:
		responseCache, err = cache.NewMemoryCache(cfg.Caches.Response.Size)
		if err != nil {
			zapLog.Fatal("memory cache init failed", zap.Error(err))
		}
		zapLog.Info("In-memory response cache initialized",
			zap.Int("size", cfg.Caches.Response.Size))
	}

	// --- Analytics sinks ---
	recorder := analytics.Recorder(analytics.NewNoopRecorder())
	serverOpts := server.Options{}
	if cfg.Analytics.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			// Test the connection with context
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			// Test the connection
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		stats := analytics.NewPostgresRecorder(pg.GetDB(), cfg.Analytics.Table, log)
		search := analytics.NewElasticRecorder(esClient.Client, cfg.Analytics.Index, log)
		recorder = analytics.NewMultiRecorder(stats, search)
		serverOpts.Stats = stats
		serverOpts.Search = search
	}

	// --- Intent handlers ---
	registry := handlers.NewRegistry(
		order.New(toolClient, log),
		storelocator.New(toolClient, log),
		profile.New(toolClient, log),
		giftcard.New(toolClient, log),
		policy.New(store, llmClient, log),
		general.New(llmClient, log),
	)

	router := chatbot.NewService(intentClassifier, registry, responseCache, recorder, obs, log)

	srv := server.New(cfg.Server, router, store, serverOpts, log)

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.Start(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLog.Info("Shutting down chatbot server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown error", zap.Error(err))
	}

	zapLog.Info("Chatbot server stopped")
}
