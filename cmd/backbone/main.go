package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	appNotification "github.com/bazaarly/backbone/pkg/app/notification"
	appRatelimit "github.com/bazaarly/backbone/pkg/app/ratelimit"
	"github.com/bazaarly/backbone/pkg/config"
	"github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/bazaarly/backbone/pkg/domain/ratelimit"
	handlers "github.com/bazaarly/backbone/pkg/handlers/http"
	"github.com/bazaarly/backbone/pkg/infra/auth"
	"github.com/bazaarly/backbone/pkg/infra/auth/jwt"
	infraCache "github.com/bazaarly/backbone/pkg/infra/cache"
	"github.com/bazaarly/backbone/pkg/infra/channels"
	"github.com/bazaarly/backbone/pkg/infra/database"
	"github.com/bazaarly/backbone/pkg/infra/httpx"
	infraLogger "github.com/bazaarly/backbone/pkg/infra/logger"
	_ "github.com/bazaarly/backbone/pkg/infra/migrations"
	"github.com/bazaarly/backbone/pkg/infra/prometheus"
	"github.com/bazaarly/backbone/pkg/infra/repository"
	"github.com/bazaarly/backbone/pkg/infra/telemetry"
	"github.com/bazaarly/backbone/pkg/infra/telemetry/kafka"
	"github.com/bazaarly/backbone/pkg/middleware"
	"github.com/bazaarly/backbone/pkg/server"
	"github.com/bazaarly/backbone/pkg/server/router"
	"github.com/bazaarly/backbone/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	modeServer  = "server"
	modeProcess = "process"

	// postgresSweepInterval keeps the expired-row delete off the hot path.
	postgresSweepInterval = time.Second
	shutdownTimeout       = 10 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	mode := getMode()
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, closeLogger := infraLogger.NewLogger(mode, infraLogger.Options{
		FileDir: os.Getenv("LOG_DIR"),
		Console: true,
	})
	defer closeLogger()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config"
	}
	if err := config.Load(configPath); err != nil {
		logger.Errorf("failed to load config: %v", err)
		return 1
	}
	cfg := config.GetConfig()

	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Errorf("failed to initialize database: %v", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("failed to close database")
		}
	}()

	// repositories
	jobRepository := repository.NewNotificationJobRepository(db.DB)
	contactRepository := repository.NewContactRepository(db.DB)
	inAppRepository := repository.NewInAppNotificationRepository(db.DB)

	// notification delivery
	exporter := telemetry.NewOutcomeExporter(logger, telemetry.ExporterConfig{
		KafkaEnabled: cfg.Events.Kafka.Enabled,
		Kafka: kafka.Config{
			Brokers: cfg.Events.Kafka.Brokers,
			Topic:   cfg.Events.Kafka.Topic,
		},
	})
	defer exporter.Close()

	prometheus.Initialize()
	processor := appNotification.NewProcessor(
		logger,
		jobRepository,
		contactRepository,
		newChannelRegistry(logger, cfg, inAppRepository),
		appNotification.ProcessorConfig{
			BatchSize:           cfg.Queue.BatchSize,
			MaxBatchSize:        cfg.Queue.MaxBatchSize,
			BaseDelay:           cfg.Queue.BaseDelay,
			ClaimTimeout:        cfg.Queue.ClaimTimeout,
			DispatchConcurrency: cfg.Queue.DispatchConcurrency,
		},
		appNotification.WithOutcomeExporter(exporter),
		appNotification.WithProcessorRecorder(prometheus.QueueRecorder{}),
	)

	if mode == modeProcess {
		return runProcessOnce(logger, processor)
	}

	// rate limiting
	durable, sweepInterval, err := newDurableCounterStore(logger, cfg, db)
	if err != nil {
		logger.Errorf("failed to initialize rate limit store: %v", err)
		return 1
	}
	limiter := appRatelimit.NewLimiter(
		logger,
		durable,
		infraCache.NewMemoryCounterCache(),
		appRatelimit.WithStoreTimeout(cfg.RateLimit.StoreTimeout),
		appRatelimit.WithSweepInterval(sweepInterval),
		appRatelimit.WithRecorder(prometheus.LimiterRecorder{}),
	)
	policies, err := appRatelimit.NewPolicyTable(cfg.RateLimit.PolicyOverrides()...)
	if err != nil {
		logger.Errorf("invalid rate limit policies: %v", err)
		return 1
	}

	resolver := auth.NewIdentityResolver(
		logger,
		jwt.NewJwtManager(cfg.Auth.SecretKey),
		cfg.Auth.ServiceSecret,
		cfg.Auth.ServiceName,
	)

	middlewareTransport := &middleware.Transport{
		PanicRecoverMiddleware:   middleware.NewPanicRecoverMiddleware(logger),
		MetricsMiddleware:        middleware.NewMetricsMiddleware(),
		CallerIdentityMiddleware: middleware.NewCallerIdentityMiddleware(logger, resolver),
		QueueTriggerMiddleware:   middleware.NewQueueTriggerMiddleware(logger),
		RateLimit: func(name string) middleware.Middleware {
			return middleware.NewRateLimitMiddleware(logger, limiter, policies.MustGet(name))
		},
	}

	handlerTransport := &handlers.HandlerTransport{
		GetVersionHandler:          handlers.NewGetVersionHandler(logger),
		EnqueueNotificationHandler: handlers.NewEnqueueNotificationHandler(logger, appNotification.NewEnqueuer(logger, jobRepository), limiter, policies),
		GetNotificationHandler:     handlers.NewGetNotificationHandler(logger, jobRepository),
		RunQueueHandler:            handlers.NewRunQueueHandler(logger, processor),
		CheckRateLimitHandler:      handlers.NewCheckRateLimitHandler(logger, limiter, policies),
	}

	servers := []server.Server{
		server.NewAPIServer(server.APIServerDI{
			Config:  cfg,
			Logger:  logger,
			Routers: []router.ServerRouter{router.NewAPIRouter(middlewareTransport, handlerTransport)},
		}),
	}
	if cfg.Metrics.Enabled {
		servers = append(servers, server.NewMetricsServer(cfg, logger))
	} else {
		logger.Info("prometheus metrics are disabled by configuration")
	}

	logger.WithFields(logrus.Fields{
		"version":       version.Version,
		"rate_store":    cfg.RateLimit.Store,
		"policies":      policies.Names(),
		"kafka_enabled": cfg.Events.Kafka.Enabled,
	}).Info("backbone starting")

	if err := serve(logger, servers); err != nil {
		logger.WithError(err).Error("server stopped with error")
		return 1
	}
	logger.Info("server gracefully stopped")
	return 0
}

func getMode() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return modeServer
}

// runProcessOnce drains one batch for the external scheduler and returns the exit code.
func runProcessOnce(logger *logrus.Logger, processor appNotification.Processor) int {
	batchSize := 0
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 0 {
			logger.Errorf("invalid batch size %q", os.Args[2])
			return 2
		}
		batchSize = n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := processor.Run(ctx, batchSize)
	if err != nil {
		logger.WithError(err).Error("queue run failed")
		return 1
	}
	logger.WithFields(logrus.Fields{
		"processed":   result.Processed,
		"succeeded":   result.Succeeded,
		"retried":     result.Retried,
		"exhausted":   result.Exhausted,
		"unpersisted": result.Unpersisted,
		"requeued":    result.Requeued,
	}).Info("queue run finished")
	return 0
}

func newDurableCounterStore(
	logger *logrus.Logger,
	cfg *config.Config,
	db *database.DB,
) (ratelimit.CounterStore, time.Duration, error) {
	switch cfg.RateLimit.Store {
	case "", "postgres":
		return repository.NewRateLimitEntryRepository(db.DB), postgresSweepInterval, nil
	case "redis":
		client, err := infraCache.NewRedisClient(infraCache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      cfg.Redis.TLS,
		}, logger)
		if err != nil {
			return nil, 0, err
		}
		return infraCache.NewRedisCounterStore(client), 0, nil
	default:
		return nil, 0, fmt.Errorf("unknown rate limit store %q", cfg.RateLimit.Store)
	}
}

// newChannelRegistry registers a provider adapter for each configured channel.
// Unconfigured channels resolve to ChannelNotImplemented.
func newChannelRegistry(
	logger *logrus.Logger,
	cfg *config.Config,
	inApp notification.InAppRepository,
) *channels.Registry {
	dispatchers := []notification.Dispatcher{channels.NewInAppDispatcher(inApp)}

	email := cfg.Providers.Email
	if email.BaseURL != "" && email.APIKey != "" {
		dispatchers = append(dispatchers, channels.NewEmailDispatcher(
			logger,
			httpx.NewFastHTTPClient(httpx.WithTimeout(email.Timeout), httpx.WithUserAgent(version.AppName+"/"+version.Version)),
			channels.EmailConfig{
				BaseURL:       email.BaseURL,
				APIKey:        email.APIKey,
				From:          email.From,
				RatePerSecond: email.RatePerSecond,
			},
		))
	}

	sms := cfg.Providers.SMS
	if sms.BaseURL != "" && sms.AccountSID != "" {
		dispatchers = append(dispatchers, channels.NewSMSDispatcher(
			logger,
			httpx.NewFastHTTPClient(httpx.WithTimeout(sms.Timeout), httpx.WithUserAgent(version.AppName+"/"+version.Version)),
			channels.SMSConfig{
				BaseURL:       sms.BaseURL,
				AccountSID:    sms.AccountSID,
				AuthToken:     sms.AuthToken,
				From:          sms.From,
				RatePerSecond: sms.RatePerSecond,
			},
		))
	}

	registry := channels.NewRegistry(dispatchers...)
	logger.WithField("channels", registry.Implemented()).Info("notification channels registered")
	return registry
}

// serve runs every server until one fails or a termination signal arrives,
// then shuts all of them down.
func serve(logger *logrus.Logger, servers []server.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(srv.Run)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers...")
		done := make(chan struct{})
		var errs []error
		go func() {
			defer close(done)
			for _, srv := range servers {
				if err := srv.Shutdown(); err != nil {
					errs = append(errs, err)
				}
			}
		}()
		select {
		case <-done:
		case <-time.After(shutdownTimeout):
			return errors.New("shutdown timed out")
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}
