package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/urbsense/location-insight-service/internal/analysis"
	"github.com/urbsense/location-insight-service/internal/cache"
	"github.com/urbsense/location-insight-service/internal/config"
	"github.com/urbsense/location-insight-service/internal/demographics"
	"github.com/urbsense/location-insight-service/internal/environment"
	"github.com/urbsense/location-insight-service/internal/geocode"
	"github.com/urbsense/location-insight-service/internal/health"
	httphandler "github.com/urbsense/location-insight-service/internal/http"
	"github.com/urbsense/location-insight-service/internal/ibge"
	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
	"github.com/urbsense/location-insight-service/internal/synthetic"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	placesClient := geocode.NewPlacesClient(cfg.PlacesAPIKey, cfg.PlacesAPIURL, cfg.PlacesReverseURL, cfg.PlacesTimeout)
	ibgeClient := ibge.NewClient(cfg.IBGELocalitiesURL, cfg.IBGEAggregatesURL, cfg.IBGETimeout)
	weatherClient := environment.NewOpenWeatherClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherAPIURL, cfg.OpenWeatherTimeout)

	monitor := health.NewMonitor(cfg.HealthTTL, cfg.ProbeTimeout, logger,
		health.ProberFunc(models.ProviderPlaces, placesClient.Ping),
		health.ProberFunc(models.ProviderIBGE, ibgeClient.Ping),
		health.ProberFunc(models.ProviderOpenWeather, weatherClient.Ping),
	)

	resolver := geocode.NewResolver(monitor, cfg.MaxSearchResults, logger,
		placesClient,
		geocode.NewIBGEStrategy(ibgeClient),
	)

	engine := synthetic.NewEngine(cfg.SyntheticSeed)
	envAdapter := environment.NewAdapter(weatherClient, logger)
	demoAdapter := demographics.NewAdapter(ibgeClient, logger)
	builder := analysis.NewBuilder(monitor, envAdapter, demoAdapter, engine, logger)

	var analysisCache cache.Cache
	var memcacheCloser *cache.MemcachedCache
	var cachePing func() error
	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		memcacheCloser = mc
		analysisCache = mc
		cachePing = mc.Ping
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		analysisCache = cache.NewInMemoryCache()
		logger.Info("cache backend: in_memory")
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	handler := httphandler.NewHandler(resolver, builder, monitor, placesClient, analysisCache, cfg.CacheTTL, cfg.CacheBackend, cachePing, logger)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(httphandler.RateLimitMiddleware(limiter))
	apiRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	apiRouter.HandleFunc("/locations/search", handler.SearchLocations).Methods("GET")
	apiRouter.HandleFunc("/analysis", handler.GetAnalysis).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if memcacheCloser != nil {
		if err := memcacheCloser.Close(); err != nil {
			logger.Error("memcached close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
