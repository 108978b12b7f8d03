package routes

import (
	"presupuesto_xpto/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathBudgets  = "/budgets"
	PathPayments = "/payments"
)

func addBudgetRoutes(rg *gin.RouterGroup, budgetHandler *handlers.BudgetHandler, paymentHandler *handlers.BillingPaymentHandler) {
	budgets := rg.Group(PathBudgets)
	{
		budgets.POST("/compute", budgetHandler.Preview)
		budgets.POST("", budgetHandler.Create)
		budgets.GET("", budgetHandler.List)
		budgets.GET("/:id", budgetHandler.GetByID)
		budgets.GET("/:id/computed", budgetHandler.Recalculate)
		budgets.PUT("/:id", budgetHandler.Update)
		budgets.POST("/:id/transitions", budgetHandler.Transition)
		budgets.DELETE("/:id", budgetHandler.Delete)
	}

	payments := rg.Group(PathPayments)
	{
		payments.POST("/:budget_id", paymentHandler.CreatePaymentByBudgetID)
		payments.GET("/:budget_id", paymentHandler.GetPaymentByBudgetID)
	}
}
