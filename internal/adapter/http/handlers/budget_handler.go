package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	request "presupuesto_xpto/internal/adapter/http/dto/request"
	response "presupuesto_xpto/internal/adapter/http/dto/response"
	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/infrastructure/logger"
	"presupuesto_xpto/internal/usecase"
	"presupuesto_xpto/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errInvalidBudgetPayload = pkg.NewDomainErrorSimple("INVALID_BUDGET_INPUT", "Invalid budget payload", http.StatusBadRequest)
	errMissingVersion       = pkg.NewDomainErrorSimple("MISSING_VERSION", "expected_version is required", http.StatusBadRequest)
)

// BudgetHandler handles HTTP requests for budgets.
type BudgetHandler struct {
	usecase usecase.IBudgetUseCase
	log     *zap.Logger
}

func NewBudgetHandler(uc usecase.IBudgetUseCase, l *zap.Logger) *BudgetHandler {
	return &BudgetHandler{usecase: uc, log: logger.OrNop(l).Named("budget.handler")}
}

// Preview computes a draft and returns the result without saving it.
// Invalid drafts are still answered with 200: the errors are part of the
// computation.
func (h *BudgetHandler) Preview(c *gin.Context) {
	_, draft, ok := h.bindDraft(c)
	if !ok {
		return
	}

	computed, err := h.usecase.Preview(c.Request.Context(), actorFrom(c), draft)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromComputed(computed))
}

func (h *BudgetHandler) Create(c *gin.Context) {
	_, draft, ok := h.bindDraft(c)
	if !ok {
		return
	}

	result, err := h.usecase.Create(c.Request.Context(), actorFrom(c), draft)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromBudgetResult(result))
}

func (h *BudgetHandler) GetByID(c *gin.Context) {
	b, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBudget(b))
}

// List returns the budgets of owner_id, or of the caller when absent.
func (h *BudgetHandler) List(c *gin.Context) {
	ownerID := strings.TrimSpace(c.Query("owner_id"))
	if ownerID == "" {
		ownerID = actorFrom(c).ID
	}

	budgets, err := h.usecase.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBudgets(budgets))
}

func (h *BudgetHandler) Recalculate(c *gin.Context) {
	computed, err := h.usecase.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromComputed(computed))
}

func (h *BudgetHandler) Update(c *gin.Context) {
	payload, draft, ok := h.bindDraft(c)
	if !ok {
		return
	}
	version, err := payload.ResolveVersion()
	if err != nil {
		c.JSON(errMissingVersion.HTTPStatus, errMissingVersion.ToHTTPError())
		return
	}

	result, err := h.usecase.Update(c.Request.Context(), actorFrom(c), c.Param("id"), draft, version)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBudgetResult(result))
}

func (h *BudgetHandler) Transition(c *gin.Context) {
	var payload request.TransitionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidBudgetPayload.HTTPStatus, errInvalidBudgetPayload.ToHTTPError())
		return
	}
	to, err := payload.ResolveState()
	if err != nil {
		appErr := pkg.NewDomainError("INVALID_STATE", err.Error(), err, http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	b, err := h.usecase.Transition(c.Request.Context(), actorFrom(c), c.Param("id"), to, *payload.ExpectedVersion)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBudget(b))
}

// Delete reads the expected version from the expected_version query
// parameter.
func (h *BudgetHandler) Delete(c *gin.Context) {
	version, err := strconv.ParseInt(strings.TrimSpace(c.Query("expected_version")), 10, 64)
	if err != nil {
		c.JSON(errMissingVersion.HTTPStatus, errMissingVersion.ToHTTPError())
		return
	}

	if err := h.usecase.Delete(c.Request.Context(), actorFrom(c), c.Param("id"), version); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BudgetHandler) bindDraft(c *gin.Context) (request.BudgetRequest, entities.BudgetDraft, bool) {
	var payload request.BudgetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidBudgetPayload.HTTPStatus, errInvalidBudgetPayload.ToHTTPError())
		return payload, entities.BudgetDraft{}, false
	}
	draft, err := payload.ToDraft()
	if err != nil {
		appErr := pkg.NewDomainError("INVALID_BUDGET_INPUT", err.Error(), err, http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return payload, entities.BudgetDraft{}, false
	}
	return payload, draft, true
}

func (h *BudgetHandler) fail(c *gin.Context, err error) {
	appErr := mapBudgetError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

// mapBudgetError checks staleness before validation: a stale update wraps
// both ErrInvalidBudget and ErrStaleSnapshot.
func mapBudgetError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidBudgetID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrMissingActor):
		return pkg.NewDomainErrorSimple("MISSING_ACTOR", "Caller identity is required", http.StatusUnauthorized)
	case errors.Is(err, entities.ErrStaleSnapshot):
		return pkg.NewDomainErrorSimple("STALE_SNAPSHOT", "Budget was modified by another request", http.StatusConflict)
	case errors.Is(err, usecase.ErrInvalidBudget):
		appErr := pkg.NewDomainError("INVALID_BUDGET", "Budget is not valid", err, http.StatusBadRequest)
		var ve entities.ValidationErrors
		if errors.As(err, &ve) {
			appErr.WithDetails(response.FromValidationErrors(ve))
		}
		return appErr
	case errors.Is(err, usecase.ErrBudgetNotFound):
		return pkg.NewDomainErrorSimple("BUDGET_NOT_FOUND", "Budget not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrForbidden):
		return pkg.NewDomainErrorSimple("FORBIDDEN", "Operation not allowed for this role and state", http.StatusForbidden)
	case errors.Is(err, entities.ErrInvalidTransition):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", "State transition not allowed", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
