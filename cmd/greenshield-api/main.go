package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Sunny2307/GreenShield/internal/api"
	"github.com/Sunny2307/GreenShield/internal/config"
	"github.com/Sunny2307/GreenShield/internal/decision"
	"github.com/Sunny2307/GreenShield/internal/fusion"
	"github.com/Sunny2307/GreenShield/internal/model"
	"github.com/Sunny2307/GreenShield/internal/photo"
	"github.com/Sunny2307/GreenShield/internal/pipeline"
	"github.com/Sunny2307/GreenShield/internal/report"
	"github.com/Sunny2307/GreenShield/internal/satellite"
)

var version = "dev"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("greenshield-api exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// ── Configuration ────────────────────────────────────────────────────────
	v := viper.New()
	v.SetConfigName("greenshield")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath(".")
	v.SetEnvPrefix("greenshield")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgNotFound) {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Warn("no config file found, using defaults and env vars")
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// ── Wire up the pipeline ─────────────────────────────────────────────────
	fetcher := photo.NewHTTPFetcher(
		time.Duration(cfg.Processing.FetchTimeoutSeconds)*time.Second,
		cfg.Processing.MaxDownloadBytes,
	)
	extractor := photo.NewExtractor(cfg.Processing, fetcher, logger)
	normalizer := report.NewNormalizer(extractor, logger)
	assessor := report.NewAssessor()
	segmenter := model.NewVegetationSegmenter(cfg.Model.InputSize)

	var provider satellite.Provider = satellite.NewSentinelProvider(
		cfg.Satellite.Endpoint, logger,
	)
	if cfg.Satellite.Endpoint == "" {
		logger.Warn("no satellite endpoint configured, using synthetic reference imagery")
	}
	if ttl := time.Duration(cfg.Satellite.CacheTTLSeconds) * time.Second; ttl > 0 {
		provider = satellite.NewCachingProvider(provider, ttl)
	}

	engine := fusion.NewEngine(cfg.Model, model.NewRuleBasedScorer(), logger)
	synthesizer := decision.NewSynthesizer(cfg.Gamification, logger)

	pipe := pipeline.New(cfg, normalizer, assessor, segmenter, provider, engine, synthesizer, logger)

	// ── HTTP server ──────────────────────────────────────────────────────────
	router := api.NewRouter(cfg.Server, pipe, version, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("greenshield HTTP listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP listen error", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	<-quit
	logger.Info("shutting down greenshield-api...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("greenshield-api stopped")
	return nil
}
