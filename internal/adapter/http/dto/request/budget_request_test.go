package request

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"presupuesto_xpto/internal/domain/entities"
)

func TestBudgetRequest_ToDraft(t *testing.T) {
	body := `{
		"client_id": " c-1 ",
		"currency_id": "ARS",
		"lines": [
			{"product_id": "p-1", "quantity": "2", "unit_price": "100.00"},
			{"service_id": "s-1", "quantity": 1.5},
			{"product_id": "p-2", "service_id": "s-2", "quantity": "1"}
		],
		"tax_ids": ["iva21"],
		"agency_margin": {"percent": "10"},
		"validity": {"start": "2026-01-31", "preset": "3m"},
		"requested_state": "sent"
	}`
	var r BudgetRequest
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	d, err := r.ToDraft()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ClientID != "c-1" || d.CurrencyID != "ARS" {
		t.Fatalf("unexpected header: %+v", d)
	}
	if len(d.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(d.Lines))
	}
	if d.Lines[0].Ref != entities.ProductRef("p-1") || d.Lines[0].UnitPrice == nil || d.Lines[0].UnitPrice.StringFixed(2) != "100.00" {
		t.Fatalf("unexpected line 0: %+v", d.Lines[0])
	}
	if !d.Lines[1].Ref.IsService() || d.Lines[1].Quantity.String() != "1.5" {
		t.Fatalf("unexpected line 1: %+v", d.Lines[1])
	}
	if d.Lines[2].Ref.Valid() {
		t.Fatalf("line with both ids must carry an invalid ref, got %s", d.Lines[2].Ref)
	}
	if d.AgencyMargin.Percent == nil || d.AgencyMargin.Percent.String() != "10" || d.AgencyMargin.Amount != nil {
		t.Fatalf("unexpected agency margin: %+v", d.AgencyMargin)
	}
	want := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	if d.Period.Start == nil || !d.Period.Start.Equal(want) || d.Period.Preset != entities.PresetThreeMonths || d.Period.End != nil {
		t.Fatalf("unexpected period: %+v", d.Period)
	}
	if d.RequestedState == nil || *d.RequestedState != entities.StateSent {
		t.Fatalf("unexpected requested state: %v", d.RequestedState)
	}
}

func TestBudgetRequest_ToDraftErrors(t *testing.T) {
	cases := []struct {
		name string
		req  BudgetRequest
		want error
	}{
		{"bad start", BudgetRequest{Validity: &ValidityRequest{Start: "31/01/2026"}}, ErrInvalidDate},
		{"bad end", BudgetRequest{Validity: &ValidityRequest{End: "tomorrow"}}, ErrInvalidDate},
		{"bad state", BudgetRequest{RequestedState: "ARCHIVED"}, ErrInvalidRequestedState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.req.ToDraft(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBudgetRequest_ToDraftRFC3339(t *testing.T) {
	r := BudgetRequest{Validity: &ValidityRequest{Start: "2026-01-31T10:00:00-03:00", End: "2026-02-14"}}
	d, err := r.ToDraft()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Period.Start.UTC().Hour() != 13 || d.Period.End == nil || d.Period.End.Day() != 14 {
		t.Fatalf("unexpected period: %+v", d.Period)
	}
}

func TestBudgetRequest_ResolveVersion(t *testing.T) {
	if _, err := (BudgetRequest{}).ResolveVersion(); !errors.Is(err, ErrMissingVersion) {
		t.Fatalf("expected ErrMissingVersion, got %v", err)
	}
	v := int64(4)
	got, err := BudgetRequest{ExpectedVersion: &v}.ResolveVersion()
	if err != nil || got != 4 {
		t.Fatalf("expected 4, got %d err=%v", got, err)
	}
}

func TestTransitionRequest_ResolveState(t *testing.T) {
	st, err := TransitionRequest{To: " approved "}.ResolveState()
	if err != nil || st != entities.StateApproved {
		t.Fatalf("expected APPROVED, got %s err=%v", st, err)
	}
	if _, err := (TransitionRequest{To: "paid"}).ResolveState(); !errors.Is(err, ErrInvalidRequestedState) {
		t.Fatalf("expected ErrInvalidRequestedState, got %v", err)
	}
}
