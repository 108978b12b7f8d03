package entities

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment processing outcome.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusDenied   PaymentStatus = "denied"
)

// BillingPayment is a charge collected for an approved budget.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (budget_id-index): budget_id
//
// ProviderPayloadRaw keeps the provider response body for audit;
// ProviderPayload is its parsed form.
type BillingPayment struct {
	ID         string          `json:"id"`
	BudgetID   string          `json:"budget_id"`
	Amount     decimal.Decimal `json:"amount"`
	CurrencyID string          `json:"currency_id"`
	Date       time.Time       `json:"date"`
	Status     PaymentStatus   `json:"status"`

	ProviderPayloadRaw json.RawMessage `json:"provider_payload_raw,omitempty"`
	ProviderPayload    map[string]any  `json:"provider_payload,omitempty"`
}
