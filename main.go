package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ai-english-tutor/server/internal/core"
	"github.com/ai-english-tutor/server/internal/tutor/conversations"
	"github.com/ai-english-tutor/server/internal/tutor/gateway"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/observers"
	"github.com/ai-english-tutor/server/internal/tutor/prompts"
	"github.com/ai-english-tutor/server/internal/tutor/providers"
	"github.com/ai-english-tutor/server/internal/tutor/ratelimit"
	"github.com/ai-english-tutor/server/internal/tutor/server"
	logx "github.com/ai-english-tutor/server/pkg/logger"
	pkgredis "github.com/ai-english-tutor/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the tutor server,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Server model.ServerConfig
	Redis  pkgredis.Config

	// LLM providers
	Providers  model.ProviderConfig
	Generation model.GenerationConfig

	Gateway   model.GatewayConfig
	RateLimit model.RateLimitConfig
}

func main() {
	// Load .env file
	envErr := godotenv.Load(".env")

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Init()
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})
	if envErr != nil {
		logx.Debug().Err(envErr).Msg("no .env file loaded")
	}

	if cfg.Environment.IsProduction() && slices.Contains(cfg.Server.AllowedOrigins, "*") {
		logx.Warn().Msg("CORS_ALLOWED_ORIGINS allows every origin in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handlers := observers.NewAllCallbacks()
	registry, err := providers.NewFromConfig(ctx, cfg.Providers, cfg.Generation, handlers)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build provider registry")
	}

	gw := gateway.New(registry, prompts.NewBuilder(handlers), conversations.NewMessagesManager(cfg.Gateway), cfg.Gateway)

	var limiter ratelimit.Limiter
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to initialise Redis client")
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimit)
		logx.Info().Msg("using Redis rate limiter")
	} else {
		mem := ratelimit.NewMemoryLimiter(cfg.RateLimit, time.Now)
		go mem.RunSweeper(ctx, cfg.RateLimit.SweepInterval)
		limiter = mem
	}

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: server.NewRouter(server.Deps{
			Chat:            gw,
			Models:          registry,
			Limiter:         limiter,
			RateLimitWindow: cfg.RateLimit.Window,
			AllowedOrigins:  cfg.Server.AllowedOrigins,
			Logger:          logx.Logger(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		logx.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.Environment.String()).
			Msg("tutor server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logx.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	}
}
