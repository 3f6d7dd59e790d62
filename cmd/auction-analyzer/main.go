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

	"github.com/rs/zerolog"

	"auction-analyzer/internal/analysis"
	"auction-analyzer/internal/auth"
	"auction-analyzer/internal/config"
	"auction-analyzer/internal/db"
	httphandler "auction-analyzer/internal/http"
	"auction-analyzer/internal/http/middleware"
	"auction-analyzer/internal/logger"
	"auction-analyzer/internal/providers/market"
	"auction-analyzer/internal/providers/vision"
	"auction-analyzer/internal/repository"
	"auction-analyzer/internal/service"
	"auction-analyzer/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	vehicleRepo := repository.NewVehicleRepository(database)

	// Initialize R2 client (optional, won't fail if not configured)
	r2Client, err := storage.NewR2Client(cfg.Storage)
	if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
		appLogger.Fatal().Err(err).Msg("failed to initialize R2 client")
	}
	if err != nil {
		appLogger.Warn().Msg("R2 storage not configured, photo uploads will be disabled")
		r2Client = nil
	}

	orchestrator := buildPipeline(cfg, appLogger)
	vehicleService := service.NewVehicleService(vehicleRepo, orchestrator, r2Client, appLogger, cfg.Pipeline.MaxPhotos)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(vehicleService, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, database)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting auction analyzer")

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited")
}

// buildPipeline assembles the analysis orchestrator from the configured
// providers. Providers without credentials are left out of their cascade;
// the local heuristics cover whatever remains.
func buildPipeline(cfg *config.Config, log zerolog.Logger) *analysis.Orchestrator {
	var (
		identifySources []analysis.IdentifySource
		damageSources   []analysis.DamageSource
		priceSources    []analysis.PriceSource
	)

	if cfg.Providers.GeminiAPIKey != "" {
		gemini, err := vision.NewGemini(context.Background(), cfg.Providers.GeminiAPIKey, log)
		if err != nil {
			log.Warn().Err(err).Msg("gemini provider disabled")
		} else {
			identifySources = append(identifySources, analysis.IdentifySource{Provider: gemini, Threshold: 0.7, YearOffset: 3})
			damageSources = append(damageSources, analysis.DamageSource{Provider: gemini, Threshold: 0.6})
		}
	}

	if cfg.Providers.OpenAIAPIKey != "" {
		openAI := vision.NewOpenAI(cfg.Providers.OpenAIAPIKey, log)
		identifySources = append(identifySources, analysis.IdentifySource{Provider: openAI, Threshold: 0.6, YearOffset: 4})
		damageSources = append(damageSources, analysis.DamageSource{Provider: openAI, Threshold: 0.5})
	}

	if cfg.Providers.ImaggaAPIKey != "" {
		imagga := vision.NewImagga(cfg.Providers.ImaggaAPIKey, cfg.Providers.ImaggaAPISecret, log)
		identifySources = append(identifySources, analysis.IdentifySource{Provider: imagga, Threshold: 0.5, YearOffset: 5})
		damageSources = append(damageSources, analysis.DamageSource{Provider: imagga, Threshold: 0.4})
	}

	if cfg.Providers.KBBAPIKey != "" {
		priceSources = append(priceSources, analysis.PriceSource{Provider: market.NewKBB(cfg.Providers.KBBAPIKey, log), Threshold: 0.5})
	}
	if cfg.Providers.EdmundsAPIKey != "" {
		priceSources = append(priceSources, analysis.PriceSource{Provider: market.NewEdmunds(cfg.Providers.EdmundsAPIKey, log), Threshold: 0.5})
	}

	log.Info().
		Int("identify_providers", len(identifySources)).
		Int("damage_providers", len(damageSources)).
		Int("price_providers", len(priceSources)).
		Msg("analysis pipeline configured")

	p := cfg.Pipeline
	return analysis.NewOrchestrator(
		log,
		analysis.NewPreprocessor(log),
		analysis.NewIdentifier(log, identifySources, p.ProviderTimeout),
		analysis.NewDamageDetector(log, damageSources, p.ProviderTimeout, p.LaborRateBody),
		analysis.NewCostEstimator(p.LaborRateBody, p.LaborRatePaint),
		analysis.NewPriceResolver(log, priceSources, p.ProviderTimeout, p.PriceCacheTTL),
		p.RunDeadline,
	)
}
