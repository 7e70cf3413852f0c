package models

import "time"

// Checkout event types published to SNS.
const (
	EventCheckoutInitiated = "checkout_initiated"
	EventCheckoutCancelled = "checkout_cancelled"
)

// CheckoutEvent is published to SNS after a checkout lifecycle write.
type CheckoutEvent struct {
	EventType       string    `json:"event_type"`
	CheckoutID      string    `json:"checkout_id,omitempty"`
	BusinessID      string    `json:"business_id,omitempty"`
	ClientReference string    `json:"client_reference"`
	Amount          float64   `json:"amount,omitempty"`
	Currency        string    `json:"currency,omitempty"`
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
}
