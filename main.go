package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xtopay/checkout-backend/cache"
	"github.com/xtopay/checkout-backend/common/logger"
	commonmw "github.com/xtopay/checkout-backend/common/middleware"
	"github.com/xtopay/checkout-backend/config"
	"github.com/xtopay/checkout-backend/controllers"
	"github.com/xtopay/checkout-backend/database"
	awspkg "github.com/xtopay/checkout-backend/pkg/aws"
	"github.com/xtopay/checkout-backend/repository"
	"github.com/xtopay/checkout-backend/routes"
	"github.com/xtopay/checkout-backend/services"
)

func main() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// AWS clients
	awsCfg, awsErr := awspkg.LoadAWSConfig(ctx)

	var cwWriter io.Writer
	var cwLogs *awspkg.CloudWatchLogsClient
	if awsErr == nil && cfg.CloudWatchEnabled {
		cwLogs, err = awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, routes.ServiceName)
		if err != nil {
			log.Printf("CloudWatch Logs unavailable, logging to stdout only: %v", err)
		} else {
			cwWriter = cwLogs
			go cwLogs.Run(ctx, 5*time.Second)
		}
	}

	appLogger, err := logger.New(cfg.AppEnv, cwWriter)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	var snsClient awspkg.SNSPublisher
	var serviceMetrics services.MetricsRecorder
	var httpMetrics commonmw.MetricsRecorder

	if awsErr != nil {
		appLogger.Warn("AWS config unavailable, SNS and CloudWatch disabled", zap.Error(awsErr))
	} else {
		snsClient = awspkg.NewSNSClient(awsCfg)
		if cfg.CloudWatchEnabled {
			metricsClient := awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, true)
			serviceMetrics = metricsClient
			httpMetrics = metricsClient
		}
		if cfg.UseSecrets {
			if err := cfg.ApplySecrets(ctx, awspkg.NewSecretsClient(awsCfg)); err != nil {
				appLogger.Warn("Secrets Manager lookup failed, using environment credentials", zap.Error(err))
			} else {
				appLogger.Info("Database credentials loaded from Secrets Manager")
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	db, err := database.ConnectPostgres(ctx, appLogger, cfg.PostgresDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Warn("Redis unavailable, business cache disabled", zap.Error(err))
		redisClient = nil
	} else if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		appLogger.Info("Business cache enabled", zap.Duration("ttl", cfg.BusinessCacheTTL))
	}

	// DI chain
	businessRepo := repository.NewGormBusinessRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	checkoutRepo := repository.NewGormCheckoutRepository(db)

	businessService := services.NewBusinessService(
		businessRepo,
		cache.NewRedisBusinessCache(redisClient, cfg.BusinessCacheTTL),
		serviceMetrics,
		appLogger,
	)
	checkoutService := services.NewCheckoutService(
		checkoutRepo,
		customerRepo,
		snsClient,
		serviceMetrics,
		services.CheckoutSettings{
			BaseURL:           cfg.CheckoutBaseURL,
			DefaultBusinessID: cfg.DefaultBusinessID,
			SNSTopicARN:       cfg.CheckoutSNSTopicARN,
		},
		appLogger,
	)

	r := routes.NewEngine(ctx, routes.EngineConfig{
		Logger:         appLogger,
		AllowedOrigins: commonmw.ParseOrigins(cfg.AllowedOrigins),
		RequestTimeout: cfg.RequestTimeout,
		Metrics:        httpMetrics,
		RateLimit:      true,
	})
	routes.RegisterRoutes(r, routes.Controllers{
		Business: controllers.NewBusinessController(businessService),
		Checkout: controllers.NewCheckoutController(checkoutService),
		Webhook:  controllers.NewWebhookController(appLogger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	appLogger.Info("Checkout service started",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)
	<-quit
	appLogger.Info("Shutting down checkout service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()
	if cwLogs != nil {
		_ = cwLogs.Sync()
	}
	appLogger.Info("Server exited cleanly")
}
