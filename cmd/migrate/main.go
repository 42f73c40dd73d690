package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/orgsync/backend/internal/infrastructure/config"
	"github.com/orgsync/backend/internal/infrastructure/logger"
	"github.com/orgsync/backend/internal/infrastructure/persistence"
)

// Applies the schema for one service's database. The services also migrate
// at startup; this tool exists for preparing a database ahead of a deploy.
func main() {
	var (
		service  string
		logLevel string
	)

	flag.StringVar(&service, "service", "", "Which schema to apply: user or company")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if service != "user" && service != "company" {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	switch service {
	case "user":
		err = db.MigrateUserService()
	case "company":
		err = db.MigrateCompanyService()
	}
	if err != nil {
		log.Fatal("Migration failed", zap.String("service", service), zap.Error(err))
	}

	log.Info("Schema applied", zap.String("service", service), zap.String("database", cfg.Database.DBName))
}

func printUsage() {
	fmt.Println(`Database schema tool

Usage:
  migrate -service <user|company> [flags]

Flags:
  -service string       Which schema to apply: user or company
  -log-level string     Log level: debug, info, warn, error (default: info)

Connection settings come from config.toml or ORGSYNC_DATABASE_* environment
variables, the same way the services read them.`)
}
