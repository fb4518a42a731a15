package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/itinerary"
	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/common"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/config"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/errors"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/httpclient"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/middleware"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/ratelimit"
	redisClient "github.com/MellowMango/wnb-hackathon-adam-max/pkg/redis"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/swagger"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/tracing"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	serviceName = "itinerary-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.InitWithOptions(cfg.Server.Environment, logger.Options{
		Level:       cfg.Server.LogLevel,
		ServiceName: serviceName,
		Version:     version,
	}); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting itinerary service",
		zap.String("service", serviceName),
		zap.String("version", version),
	)

	// Initialize Sentry for error tracking
	sentryConfig := errors.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     version,
		ServerName:  serviceName,
		SampleRate:  cfg.Sentry.SampleRate,
	}
	if sentryConfig.Enabled() {
		if err := errors.InitSentry(sentryConfig); err != nil {
			logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
		} else {
			defer errors.Flush(2 * time.Second)
			logger.Info("Sentry error tracking initialized successfully")
		}
	}

	// Initialize OpenTelemetry tracer
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(tracing.Config{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Environment:    cfg.Server.Environment,
			OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
			SampleRate:     cfg.Tracing.SampleRate,
			Enabled:        true,
		}, logger.Get())
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Warn("Failed to shutdown tracer", zap.Error(err))
				}
			}()
			logger.Info("OpenTelemetry tracing initialized successfully")
		}
	}

	readinessChecks := make(map[string]common.CheckFunc)

	var limiter *ratelimit.Limiter
	if cfg.Redis.Enabled {
		redis, err := redisClient.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()
		logger.Info("Connected to Redis")

		readinessChecks["redis"] = redis.HealthCheck
		if cfg.RateLimit.Enabled {
			limiter = ratelimit.NewLimiter(redis.Client, cfg.RateLimit)
			logger.Info("Rate limiting enabled",
				zap.Int("anonymous_limit", cfg.RateLimit.AnonymousLimit),
				zap.Int("window_seconds", cfg.RateLimit.WindowSeconds),
			)
		}
	} else if cfg.RateLimit.Enabled {
		logger.Warn("RATE_LIMIT_ENABLED is set but Redis is disabled, rate limiting is off")
	}

	if cfg.Maps.APIKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, itineraries will use estimated legs")
	}
	provider := maps.NewGoogleDirectionsProvider(maps.ProviderConfig{
		Provider: maps.ProviderGoogle,
		APIKey:   cfg.Maps.APIKey,
		BaseURL:  cfg.Maps.BaseURL,
		Timeout:  cfg.Maps.Timeout(),
	}, httpclient.WithRateLimit(cfg.Maps.QPS))

	serviceConfig := itinerary.ConfigFrom(cfg)
	if serviceConfig.CircuitBreaker != nil {
		logger.Info("Circuit breaker enabled for directions provider")
	}
	service := itinerary.NewService(provider, serviceConfig)
	if cfg.Maps.HealthCheckEnabled {
		readinessChecks["directions"] = service.HealthCheck
	}

	handler := itinerary.NewHandler(service)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithSentry()) // Custom recovery with Sentry
	router.Use(middleware.SentryMiddleware())   // Sentry integration
	router.Use(middleware.CorrelationID())
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware(serviceName))
	}
	router.Use(middleware.RequestLogger(serviceName, "/healthz", "/health/live", "/health/ready", "/metrics"))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins()))
	router.Use(middleware.RequestTimeout(cfg.Server.RequestDeadline()))
	if limiter != nil {
		router.Use(middleware.RateLimit(limiter))
	}

	// Add Sentry error handler (should be near the end of middleware chain)
	router.Use(middleware.ErrorHandler())

	// Health check endpoints
	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, readinessChecks))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "version": version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	swagger.RegisterRoutes(router)

	handler.RegisterRoutes(router.Group("/api/v1"))
	handler.RegisterToolRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
