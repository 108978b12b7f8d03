package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"presupuesto_xpto/internal/adapter/http/handlers/mocks"
	"presupuesto_xpto/internal/domain/budget"
	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

const draftBody = `{"client_id":"c-1","currency_id":"ARS","lines":[{"product_id":"p-1","quantity":"2"}],"tax_ids":["iva21"]}`

func newBudgetRouter(t *testing.T) (*gin.Engine, *mocks.MockIBudgetUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIBudgetUseCase(ctrl)
	h := NewBudgetHandler(uc, nil)

	r := gin.New()
	r.Use(ActorMiddleware())
	r.POST("/v1/budgets/compute", h.Preview)
	r.POST("/v1/budgets", h.Create)
	r.GET("/v1/budgets", h.List)
	r.GET("/v1/budgets/:id", h.GetByID)
	r.GET("/v1/budgets/:id/computed", h.Recalculate)
	r.PUT("/v1/budgets/:id", h.Update)
	r.POST("/v1/budgets/:id/transitions", h.Transition)
	r.DELETE("/v1/budgets/:id", h.Delete)
	return r, uc
}

func doRequest(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var ownerHeaders = map[string]string{HeaderUserID: "u-1", HeaderUserRole: "editor"}

func storedBudget() entities.Budget {
	return entities.Budget{
		ID:         "b-1",
		OwnerID:    "u-1",
		ClientID:   "c-1",
		CurrencyID: "ARS",
		State:      entities.StateDraft,
		Totals: entities.Totals{
			Subtotal:   decimal.RequireFromString("250"),
			TaxTotal:   decimal.RequireFromString("60"),
			GrandTotal: decimal.RequireFromString("310"),
		},
		Version: 1,
	}
}

func TestBudgetHandler_Preview(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		r, _ := newBudgetRouter(t)
		w := doRequest(r, http.MethodPost, "/v1/budgets/compute", "{", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		r, _ := newBudgetRouter(t)
		w := doRequest(r, http.MethodPost, "/v1/budgets/compute", `{"validity":{"start":"yesterday"}}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid draft answers 200 with errors", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		idx := 0
		uc.EXPECT().Preview(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, _ entities.Actor, d entities.BudgetDraft) (budget.Computed, error) {
			if len(d.Lines) != 1 || d.Lines[0].Ref != entities.ProductRef("p-1") {
				t.Fatalf("unexpected draft: %+v", d)
			}
			return budget.Computed{
				Currency: entities.Currency{ID: "ARS", MinorUnitDigits: 2},
				Errors: entities.ValidationErrors{
					entities.NewLineError(idx, entities.ErrNotFound, "ref", "product p-1 not found"),
				},
			}, nil
		})

		w := doRequest(r, http.MethodPost, "/v1/budgets/compute", draftBody, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["valid"] != false {
			t.Fatalf("expected valid=false, got %s", w.Body.String())
		}
		errs, _ := body["errors"].([]any)
		if len(errs) != 1 {
			t.Fatalf("expected one error, got %s", w.Body.String())
		}
	})

	t.Run("catalog failure", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().Preview(gomock.Any(), gomock.Any(), gomock.Any()).Return(budget.Computed{}, errors.New("dynamo down"))

		w := doRequest(r, http.MethodPost, "/v1/budgets/compute", draftBody, nil)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})
}

func TestBudgetHandler_Create(t *testing.T) {
	t.Run("passes actor from headers", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().Create(gomock.Any(), entities.Actor{ID: "u-1", Role: entities.RoleEditor}, gomock.Any()).
			Return(usecase.BudgetResult{Budget: storedBudget(), Computed: budget.Computed{Currency: entities.Currency{ID: "ARS", MinorUnitDigits: 2}}}, nil)

		w := doRequest(r, http.MethodPost, "/v1/budgets", draftBody, ownerHeaders)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var body struct {
			ID     string `json:"id"`
			Totals struct {
				GrandTotal string `json:"grand_total"`
			} `json:"totals"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body.ID != "b-1" || body.Totals.GrandTotal != "310.00" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("validation errors become details", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		verrs := entities.ValidationErrors{entities.NewValidationError(entities.ErrMissingClient, "client_id", "client is required")}
		uc.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(usecase.BudgetResult{}, fmt.Errorf("%w: %w", usecase.ErrInvalidBudget, verrs))

		w := doRequest(r, http.MethodPost, "/v1/budgets", draftBody, ownerHeaders)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var body struct {
			Code    string `json:"code"`
			Details []struct {
				Code  string `json:"code"`
				Field string `json:"field"`
			} `json:"details"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body.Code != "INVALID_BUDGET" || len(body.Details) != 1 || body.Details[0].Field != "client_id" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("missing actor", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().Create(gomock.Any(), entities.Actor{Role: entities.RoleViewer}, gomock.Any()).Return(usecase.BudgetResult{}, usecase.ErrMissingActor)

		w := doRequest(r, http.MethodPost, "/v1/budgets", draftBody, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestBudgetHandler_Reads(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().GetByID(gomock.Any(), "b-1").Return(storedBudget(), nil)

		w := doRequest(r, http.MethodGet, "/v1/budgets/b-1", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("get not found", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().GetByID(gomock.Any(), "nope").Return(entities.Budget{}, usecase.ErrBudgetNotFound)

		w := doRequest(r, http.MethodGet, "/v1/budgets/nope", "", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("list defaults to caller", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().ListByOwner(gomock.Any(), "u-1").Return([]entities.Budget{storedBudget()}, nil)

		w := doRequest(r, http.MethodGet, "/v1/budgets", "", ownerHeaders)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body []map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if len(body) != 1 {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("list by owner query", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().ListByOwner(gomock.Any(), "u-9").Return([]entities.Budget{}, nil)

		w := doRequest(r, http.MethodGet, "/v1/budgets?owner_id=u-9", "", ownerHeaders)
		if w.Code != http.StatusOK || w.Body.String() != "[]" {
			t.Fatalf("expected empty list, got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("recalculate", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().Recalculate(gomock.Any(), "b-1").Return(budget.Computed{
			Currency:   entities.Currency{ID: "ARS", MinorUnitDigits: 2},
			Subtotal:   decimal.RequireFromString("250"),
			GrandTotal: decimal.RequireFromString("310"),
		}, nil)

		w := doRequest(r, http.MethodGet, "/v1/budgets/b-1/computed", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestBudgetHandler_Update(t *testing.T) {
	t.Run("missing version", func(t *testing.T) {
		r, _ := newBudgetRouter(t)
		w := doRequest(r, http.MethodPut, "/v1/budgets/b-1", draftBody, ownerHeaders)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("stale", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		body := `{"client_id":"c-1","currency_id":"ARS","lines":[{"product_id":"p-1","quantity":"2"}],"expected_version":1}`
		uc.EXPECT().Update(gomock.Any(), gomock.Any(), "b-1", gomock.Any(), int64(1)).
			Return(usecase.BudgetResult{}, fmt.Errorf("budget b-1 moved past version 1: %w", entities.ErrStaleSnapshot))

		w := doRequest(r, http.MethodPut, "/v1/budgets/b-1", body, ownerHeaders)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("forbidden", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		body := `{"client_id":"c-1","expected_version":2}`
		uc.EXPECT().Update(gomock.Any(), gomock.Any(), "b-1", gomock.Any(), int64(2)).
			Return(usecase.BudgetResult{}, fmt.Errorf("%w: role viewer cannot edit a DRAFT budget", entities.ErrForbidden))

		w := doRequest(r, http.MethodPut, "/v1/budgets/b-1", body, nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})
}

func TestBudgetHandler_Transition(t *testing.T) {
	t.Run("missing version", func(t *testing.T) {
		r, _ := newBudgetRouter(t)
		w := doRequest(r, http.MethodPost, "/v1/budgets/b-1/transitions", `{"to":"SENT"}`, ownerHeaders)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown state", func(t *testing.T) {
		r, _ := newBudgetRouter(t)
		w := doRequest(r, http.MethodPost, "/v1/budgets/b-1/transitions", `{"to":"PAID","expected_version":1}`, ownerHeaders)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("rejected by state machine", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().Transition(gomock.Any(), gomock.Any(), "b-1", entities.StateInvoiced, int64(1)).
			Return(entities.Budget{}, &entities.StateTransitionError{From: entities.StateDraft, To: entities.StateInvoiced, Role: entities.RoleEditor, Err: entities.ErrInvalidTransition})

		w := doRequest(r, http.MethodPost, "/v1/budgets/b-1/transitions", `{"to":"invoiced","expected_version":1}`, ownerHeaders)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		sent := storedBudget()
		sent.State = entities.StateSent
		sent.Version = 2
		uc.EXPECT().Transition(gomock.Any(), entities.Actor{ID: "u-1", Role: entities.RoleEditor}, "b-1", entities.StateSent, int64(1)).Return(sent, nil)

		w := doRequest(r, http.MethodPost, "/v1/budgets/b-1/transitions", `{"to":"SENT","expected_version":1}`, ownerHeaders)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["state"] != "SENT" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestBudgetHandler_Delete(t *testing.T) {
	t.Run("missing version", func(t *testing.T) {
		r, _ := newBudgetRouter(t)
		w := doRequest(r, http.MethodDelete, "/v1/budgets/b-1", "", ownerHeaders)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newBudgetRouter(t)
		uc.EXPECT().Delete(gomock.Any(), gomock.Any(), "b-1", int64(3)).Return(nil)

		w := doRequest(r, http.MethodDelete, "/v1/budgets/b-1?expected_version=3", "", ownerHeaders)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})
}

func TestMapBudgetError(t *testing.T) {
	stale := fmt.Errorf("%w: %w", usecase.ErrInvalidBudget, entities.ValidationErrors{
		entities.NewValidationError(entities.ErrStaleSnapshot, "version", "stale"),
	})

	cases := []struct {
		err  error
		code int
	}{
		{usecase.ErrInvalidBudgetID, http.StatusBadRequest},
		{usecase.ErrMissingActor, http.StatusUnauthorized},
		{usecase.ErrInvalidBudget, http.StatusBadRequest},
		{stale, http.StatusConflict},
		{usecase.ErrBudgetNotFound, http.StatusNotFound},
		{entities.ErrForbidden, http.StatusForbidden},
		{&entities.StateTransitionError{Err: entities.ErrForbidden}, http.StatusForbidden},
		{entities.ErrInvalidTransition, http.StatusConflict},
		{entities.ErrStaleSnapshot, http.StatusConflict},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		got := mapBudgetError(tc.err)
		if got.HTTPStatus != tc.code {
			t.Fatalf("for err %v expected %d got %d", tc.err, tc.code, got.HTTPStatus)
		}
	}
}

func TestActorFrom_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set(HeaderUserID, " u-2 ")
	c.Request.Header.Set(HeaderUserRole, "ADMIN")

	got := actorFrom(c)
	if got.ID != "u-2" || got.Role != entities.RoleAdmin {
		t.Fatalf("unexpected actor: %+v", got)
	}
}
