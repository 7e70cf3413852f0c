package models

import "time"

// Payment records a completed payment against a checkout. Rows are written
// by an external collaborator (or the seed tool), never by the webhook.
type Payment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CheckoutID       string    `gorm:"column:checkout_id;type:varchar(64);index;not null" json:"checkout_id"`
	PaidAt           time.Time `gorm:"not null" json:"paid_at"`
	Channel          string    `gorm:"type:varchar(32)" json:"channel"`
	TransactionID    string    `gorm:"column:transaction_id;type:varchar(128)" json:"transaction_id"`
	CustomerPhone    string    `gorm:"column:customer_phone;type:varchar(32)" json:"customer_phone"`
	Fees             float64   `gorm:"type:numeric(14,2);not null;default:0" json:"fees"`
	SettlementAmount float64   `gorm:"column:settlement_amount;type:numeric(14,2);not null;default:0" json:"settlement_amount"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "payment" }
