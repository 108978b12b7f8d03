package routes

import (
	"context"
	"fmt"
	"time"

	_ "presupuesto_xpto/docs"
	"presupuesto_xpto/internal/adapter/catalog"
	"presupuesto_xpto/internal/adapter/http/handlers"
	"presupuesto_xpto/internal/adapter/persistence/repository"
	"presupuesto_xpto/internal/config"
	"presupuesto_xpto/internal/domain/budget"
	"presupuesto_xpto/internal/domain/validity"
	"presupuesto_xpto/internal/infrastructure/database"
	"presupuesto_xpto/internal/infrastructure/logger"
	"presupuesto_xpto/internal/infrastructure/payments"
	"presupuesto_xpto/internal/usecase"
	"presupuesto_xpto/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted under /v1.
type Handlers struct {
	Budgets  *handlers.BudgetHandler
	Payments *handlers.BillingPaymentHandler
}

// Run wires the service against DynamoDB and Mercado Pago and blocks
// serving HTTP.
func Run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	log = logger.OrNop(log)

	h, err := buildHandlers(ctx, cfg, log)
	if err != nil {
		return err
	}

	router := NewRouter(h, log)
	log.Info("http server starting", zap.String("addr", cfg.Addr()))
	if err := router.Run(cfg.Addr()); err != nil {
		return fmt.Errorf("failed to start the application: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine with middlewares, swagger and the /v1
// routes.
func NewRouter(h Handlers, log *zap.Logger) *gin.Engine {
	log = logger.OrNop(log)

	router := gin.New()
	router.Use(RequestLogger(log.Named("http")))
	router.Use(Recovery(log.Named("http")))
	router.Use(handlers.ActorMiddleware())

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addBudgetRoutes(v1, h.Budgets, h.Payments)
	return router
}

func buildHandlers(ctx context.Context, cfg config.Config, log *zap.Logger) (Handlers, error) {
	ddb, err := database.ConnectDynamoDB(ctx, cfg.DynamoDB)
	if err != nil {
		return Handlers{}, err
	}

	budgetRepo := repository.NewBudgetDynamoRepository(ddb, cfg.DynamoDB.BudgetsTable)
	catalogRepo, err := buildCatalog(ddb, cfg, log)
	if err != nil {
		return Handlers{}, err
	}
	paymentRepo := repository.NewBillingPaymentDynamoRepository(ddb, cfg.DynamoDB.PaymentsTable)

	service := budget.NewService(validity.NewResolver(time.Now))
	budgetUseCase := usecase.NewBudgetUseCase(budgetRepo, catalogRepo, service, log)

	// Without a gateway the payment routes answer 503; budgets keep working.
	var paymentGateway interfaces.IPaymentGateway
	mpGateway, err := payments.NewMercadoPagoGateway(cfg.Payments, log)
	if err != nil {
		log.Warn("mercado pago gateway not configured", zap.Error(err))
	} else {
		paymentGateway = mpGateway
	}
	paymentUseCase := usecase.NewBillingPaymentUseCase(paymentRepo, budgetRepo, paymentGateway, log)

	return Handlers{
		Budgets:  handlers.NewBudgetHandler(budgetUseCase, log),
		Payments: handlers.NewBillingPaymentHandler(paymentUseCase, cfg.Payments.Mock, log),
	}, nil
}

func buildCatalog(ddb repository.DynamoAPI, cfg config.Config, log *zap.Logger) (interfaces.ICatalogRepository, error) {
	if cfg.Catalog.File == "" {
		return repository.NewCatalogDynamoRepository(ddb, repository.CatalogTables{
			Products:   cfg.DynamoDB.ProductsTable,
			Services:   cfg.DynamoDB.ServicesTable,
			Taxes:      cfg.DynamoDB.TaxesTable,
			Currencies: cfg.DynamoDB.CurrenciesTable,
		}), nil
	}

	fc, err := catalog.LoadFile(cfg.Catalog.File)
	if err != nil {
		return nil, err
	}
	log.Info("using file catalog", zap.String("file", cfg.Catalog.File))
	return fc, nil
}
