package billing

import (
	"encoding/json"
	"fmt"
)

// Event types the webhook endpoint handles. Anything else is acknowledged
// and ignored.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventInvoicePaid         = "invoice.payment_succeeded"
	EventPaymentSucceeded    = "payment_intent.succeeded"
	EventCheckoutCompleted   = "checkout.session.completed"
)

// Event is the provider's webhook envelope.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    EventData       `json:"data"`
	Raw     json.RawMessage `json:"-"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

// EventObject is the union of the fields we read across event types.
// Amounts arrive in the provider's smallest currency unit (cents).
type EventObject struct {
	ID             string `json:"id"`
	CustomerID     string `json:"customer"`
	SubscriptionID string `json:"subscription"`
	AmountTotal    int64  `json:"amount_total"` // checkout.session
	AmountPaid     int64  `json:"amount_paid"`  // invoice
	Amount         int64  `json:"amount"`       // payment_intent
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	TrialEnd       int64  `json:"trial_end"`
	PeriodStart    int64  `json:"current_period_start"`
	PeriodEnd      int64  `json:"current_period_end"`
	Mode           string `json:"mode"` // checkout.session: "payment" or "subscription"

	Metadata map[string]string `json:"metadata"`
}

// ParseEvent decodes the envelope and keeps the raw payload around.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("webhook event missing id or type")
	}
	event.Raw = payload
	return &event, nil
}

// AmountDollars normalizes the event's cent amount to dollars, picking
// whichever amount field the event type populates.
func (e *Event) AmountDollars() float64 {
	cents := e.Data.Object.AmountPaid
	if cents == 0 {
		cents = e.Data.Object.AmountTotal
	}
	if cents == 0 {
		cents = e.Data.Object.Amount
	}
	return float64(cents) / 100.0
}
