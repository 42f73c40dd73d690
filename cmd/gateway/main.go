package main

import (
	"go.uber.org/zap"

	gatewayapp "github.com/orgsync/backend/internal/application/gateway"
	"github.com/orgsync/backend/internal/infrastructure/client"
	"github.com/orgsync/backend/internal/infrastructure/config"
	"github.com/orgsync/backend/internal/infrastructure/logger"
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
		cfg.App.Port = "8080"
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

	log.Info("Starting aggregation gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("user_service", cfg.Clients.UserServiceURL),
		zap.String("company_service", cfg.Clients.CompanyServiceURL),
	)

	// Initialize peer service clients and the aggregation service
	userClient := client.NewUserClient(cfg.Clients.UserServiceURL, cfg.Clients.Timeout)
	companyClient := client.NewCompanyClient(cfg.Clients.CompanyServiceURL, cfg.Clients.Timeout)
	aggregationService := gatewayapp.NewAggregationService(userClient, companyClient, log)

	// Initialize handlers
	aggregationHandler := handler.NewAggregationHandler(aggregationService)
	systemHandler := handler.NewSystemHandler("gateway")

	engine := server.NewEngine(cfg, log)

	// Health check endpoint (outside API versioning)
	systemHandler.RegisterRoutes(&engine.RouterGroup)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(aggregationHandler)
	r.Setup()

	server.Run(engine, cfg, log)
}
