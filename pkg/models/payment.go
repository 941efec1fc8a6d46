package models

import (
	"encoding/json"
	"time"
)

// OrderRecord holds the gateway order fields this service reads. Raw keeps the
// gateway's body so fields not listed here survive storage and replay.
type OrderRecord struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity,omitempty"`
	Amount     int64             `json:"amount"`
	AmountPaid int64             `json:"amount_paid"`
	AmountDue  int64             `json:"amount_due"`
	Currency   string            `json:"currency"`
	Receipt    string            `json:"receipt"`
	OfferID    *string           `json:"offer_id"`
	Status     string            `json:"status,omitempty"`
	Attempts   int               `json:"attempts"`
	Notes      map[string]string `json:"notes"`
	CreatedAt  int64             `json:"created_at,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type orderFields OrderRecord

func (o *OrderRecord) UnmarshalJSON(data []byte) error {
	var f orderFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*o = OrderRecord(f)
	o.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the gateway body unchanged when one was decoded.
func (o OrderRecord) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	return json.Marshal(orderFields(o))
}

type CreateOrderParams struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type PaymentVerification struct {
	OrderID     string `json:"razorpay_order_id"`
	PaymentID   string `json:"razorpay_payment_id"`
	Signature   string `json:"razorpay_signature"`
	DonorName   string `json:"donor_name,omitempty"`
	PaymentMode string `json:"payment_mode,omitempty"`
}

type PaymentVerifiedMessage struct {
	OrderID       string    `json:"order_id"`
	PaymentID     string    `json:"payment_id"`
	UserID        string    `json:"user_id,omitempty"`
	DonorName     string    `json:"donor_name,omitempty"`
	PaymentMode   string    `json:"payment_mode,omitempty"`
	VerifiedAt    time.Time `json:"verified_at"`
	CorrelationID string    `json:"correlation_id"`
}

type PaymentOrder struct {
	IdempotencyKey string    `json:"idempotency_key"`
	GatewayOrderID string    `json:"gateway_order_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
}
