// cmd/searchbot/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"searchbot/internal/bot"
	"searchbot/internal/citation"
	"searchbot/internal/common/config"
	"searchbot/internal/common/database"
	"searchbot/internal/common/logger"
	"searchbot/internal/common/observability"
	"searchbot/internal/llm"
	"searchbot/internal/pipeline"
	"searchbot/internal/render"
	"searchbot/internal/search"
	"searchbot/pkg/registry"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting searchbot...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("searchbot")
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init Redis (citation cache) ---
	// The bot runs without the cache when Redis is down; replies that quote
	// an answer simply fall through to normal dispatch.
	var citationCache *citation.Cache
	if cfg.Cache.Enabled {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Cache.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, running without citation cache", zap.Error(err))
		} else {
			defer redis.Close()
			citationCache = citation.New(redis, config.GetDuration(cfg.Cache.MaxAge), log)
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Init API Clients ---
	llmClient := llm.NewClient(cfg.APIs.OpenAI, log)
	searchClient := search.NewClient(cfg.APIs.Search, log)

	var renderer pipeline.Renderer
	if cfg.APIs.Render.Enabled {
		renderer = render.NewClient(cfg.APIs.Render, log)
		zapLog.Info("Render service enabled", zap.String("baseURL", cfg.APIs.Render.BaseURL))
	}

	// --- Load Command Registry ---
	reg, err := registry.LoadRegistry(cfg.Registry)
	if err != nil {
		zapLog.Fatal("command registry load failed", zap.Error(err), zap.String("path", cfg.Registry))
	}
	if _, ok := reg.Find(cfg.Bot.Command); !ok {
		reg.Commands = append(reg.Commands, registry.Command{
			Name:        cfg.Bot.Command,
			Aliases:     cfg.Bot.Aliases,
			Description: "Answer a question using live web search results.",
			Usage:       cfg.Bot.Command + " <question>",
		})
	}
	zapLog.Info("Command registry loaded",
		zap.String("version", reg.Version),
		zap.Strings("commands", reg.Names()),
	)

	// --- Wire Pipeline & Dispatcher ---
	orchestrator := pipeline.New(llmClient, searchClient, renderer, citationCache, pipeline.Config{
		Persona:  cfg.APIs.OpenAI.Prompt,
		TextMode: cfg.Bot.TextMode,
		Verbose:  cfg.Bot.VerboseOutput,
	}, log)

	dispatcher := bot.NewDispatcher(orchestrator, citationCache, reg, obs, log)

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := http.ListenAndServe(cfg.App.MetricsAddr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Console Session ---
	console := bot.NewConsole(log)
	listenDone := make(chan error, 1)
	go func() {
		listenDone <- console.Listen(ctx, dispatcher.Handle)
	}()
	zapLog.Info("Console session ready, type a command",
		zap.String("command", cfg.Bot.Command),
		zap.Strings("aliases", cfg.Bot.Aliases),
	)

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received, stopping...")
		cancel()
	case err := <-listenDone:
		if err != nil {
			zapLog.Error("Console session ended", zap.Error(err))
		}
	}

	zapLog.Info("Searchbot stopped gracefully")
}
