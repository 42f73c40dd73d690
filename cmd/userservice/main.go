package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	userapp "github.com/orgsync/backend/internal/application/user"
	"github.com/orgsync/backend/internal/domain/propagation"
	"github.com/orgsync/backend/internal/infrastructure/cache"
	"github.com/orgsync/backend/internal/infrastructure/client"
	"github.com/orgsync/backend/internal/infrastructure/config"
	"github.com/orgsync/backend/internal/infrastructure/logger"
	"github.com/orgsync/backend/internal/infrastructure/messaging"
	"github.com/orgsync/backend/internal/infrastructure/persistence"
	"github.com/orgsync/backend/internal/interfaces/http/handler"
	"github.com/orgsync/backend/internal/interfaces/http/router"
	"github.com/orgsync/backend/internal/interfaces/http/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8081"
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting user service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.MigrateUserService(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Redis client shared by the broker, consumer and idempotency store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	pingCancel()
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	log.Info("Redis connected")

	// Initialize repositories and services
	userRepo := persistence.NewGormUserRepository(db.DB)
	broker := messaging.NewRedisBroker(redisClient, cfg.Messaging.MaxStreamLen, log)
	companyClient := client.NewCompanyClient(cfg.Clients.CompanyServiceURL, cfg.Clients.Timeout)
	userService := userapp.NewUserService(userRepo, broker, log).
		WithCompanyDirectory(companyClient)

	// Consume company events and reconcile the local user mirror
	group := cfg.Messaging.ConsumerGroup
	if group == "" {
		group = propagation.GroupUserService
	}
	reconciler := userapp.NewCompanyEventReconciler(userRepo, log)
	dispatcher := messaging.NewDispatcher(propagation.ChannelCompanyEvents, group, reconciler, log)
	if cfg.Idempotency.Enabled {
		store := cache.NewRedisIdempotencyStoreWithClient(redisClient, "")
		dispatcher = dispatcher.WithIdempotencyStore(store, cfg.Idempotency.TTL)
	}

	consumer := messaging.NewRedisConsumer(redisClient, messaging.RedisConsumerOptions{
		Channel:   propagation.ChannelCompanyEvents,
		Group:     group,
		Consumer:  cfg.Messaging.ConsumerName,
		Workers:   cfg.Messaging.Workers,
		BatchSize: int64(cfg.Messaging.BatchSize),
		Block:     cfg.Messaging.BlockTimeout,
	}, dispatcher, log)

	if err := consumer.Start(context.Background()); err != nil {
		log.Fatal("Failed to start consumer", zap.Error(err))
	}
	defer consumer.Stop()

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	systemHandler := handler.NewSystemHandler("userservice").
		WithChecker("database", db).
		WithChecker("redis", handler.HealthCheckFunc(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		}))

	engine := server.NewEngine(cfg, log)

	// Health check endpoint (outside API versioning)
	systemHandler.RegisterRoutes(&engine.RouterGroup)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(userHandler)
	r.Setup()

	server.Run(engine, cfg, log)
}
