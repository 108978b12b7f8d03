package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	_ "presupuesto_xpto/docs"
	"presupuesto_xpto/internal/adapter/http/routes"
	"presupuesto_xpto/internal/config"
	"presupuesto_xpto/internal/infrastructure/logger"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

// @title           Budget Service API
// @version         1.0
// @description     Budget pricing and lifecycle service (budgets + payments) backed by DynamoDB.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

// @securityDefinitions.apikey UserID
// @in header
// @name X-User-ID
// @description Identifier of the caller, set by the gateway in front of the service.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	l, err := logger.New(cfg.Log.Level, cfg.Log.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := routes.Run(ctx, cfg, l); err != nil {
		l.Fatal("service stopped", zap.Error(err))
	}
}
