package request

import "encoding/json"

// BillingPaymentCreateRequest documents the payment route body.
//
// `mp_payload` is forwarded as-is (raw JSON) to support varying Mercado Pago
// schemas. The amount is always taken from the budget, any
// transaction_amount sent here is overwritten.
type BillingPaymentCreateRequest struct {
	MPPayload json.RawMessage `json:"mp_payload" swaggertype:"object"`
}
