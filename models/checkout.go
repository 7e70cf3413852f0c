package models

import (
	"time"

	"github.com/google/uuid"
)

// Checkout status values. Only pending and cancelled are ever written;
// paid is derived from the presence of a payment row.
const (
	CheckoutStatusPending   = "pending"
	CheckoutStatusCancelled = "cancelled"
	CheckoutStatusPaid      = "paid"
)

// CheckoutIDPrefix prefixes every generated checkout identifier.
const CheckoutIDPrefix = "xtp_"

// CheckoutTTL is the fixed window between creation and expiry.
const CheckoutTTL = 30 * time.Minute

// Checkout is a single payment request created on behalf of a business.
type Checkout struct {
	CheckoutID      string     `gorm:"column:checkout_id;type:varchar(64);primaryKey" json:"checkout_id"`
	BusinessID      string     `gorm:"column:business_id;type:varchar(64);index;not null" json:"business_id"`
	ClientReference string     `gorm:"column:client_reference;type:varchar(128);uniqueIndex;not null" json:"client_reference"`
	Amount          float64    `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency        string     `gorm:"type:varchar(10);not null" json:"currency"`
	Description     string     `gorm:"type:varchar(512)" json:"description"`
	CustomerID      *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Channels        []string   `gorm:"serializer:json;type:jsonb" json:"channels"`
	CallbackURL     string     `gorm:"column:callback_url;type:varchar(1024)" json:"callback_url"`
	ReturnURL       string     `gorm:"column:return_url;type:varchar(1024)" json:"return_url"`
	CancelURL       string     `gorm:"column:cancel_url;type:varchar(1024)" json:"cancel_url"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt       time.Time  `gorm:"not null" json:"expires_at"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	Payments        []Payment  `gorm:"foreignKey:CheckoutID;references:CheckoutID" json:"payments,omitempty"`
}

func (Checkout) TableName() string { return "checkout" }

// FirstPayment returns the first recorded payment, or nil when none exists.
func (c *Checkout) FirstPayment() *Payment {
	if len(c.Payments) == 0 {
		return nil
	}
	return &c.Payments[0]
}

// EffectiveStatus applies the read-time precedence: a payment row makes the
// checkout paid regardless of the stored status column.
func (c *Checkout) EffectiveStatus() string {
	if c.FirstPayment() != nil {
		return CheckoutStatusPaid
	}
	return c.Status
}

// InitiateCheckoutRequest is the payload for POST /checkout/initiate.
// Either Customer or PayeeName/PayeePhone may describe the payer; both may
// be absent for an anonymous checkout.
type InitiateCheckoutRequest struct {
	Amount          float64        `json:"amount" binding:"required,gt=0"`
	Currency        string         `json:"currency" binding:"required,len=3,alpha"`
	ClientReference string         `json:"clientReference" binding:"required,max=128"`
	Description     string         `json:"description" binding:"max=512"`
	Customer        *CustomerInput `json:"customer"`
	PayeeName       string         `json:"payeeName" binding:"max=255"`
	PayeePhone      string         `json:"payeePhone" binding:"max=32"`
	Channels        []string       `json:"channels" binding:"dive,required,max=32"`
	CallbackURL     string         `json:"callbackUrl" binding:"omitempty,url"`
	ReturnURL       string         `json:"returnUrl" binding:"omitempty,url"`
	CancelURL       string         `json:"cancelUrl" binding:"omitempty,url"`
	BusinessID      string         `json:"business_id" binding:"max=64"`
}

// CustomerData resolves the payer details: the structured customer object
// wins, then the flat payee fields when a phone is present.
func (r *InitiateCheckoutRequest) CustomerData() *CustomerInput {
	if r.Customer != nil {
		return r.Customer
	}
	if r.PayeePhone != "" {
		return &CustomerInput{Name: r.PayeeName, Phone: r.PayeePhone}
	}
	return nil
}

// InitiateCheckoutResult is returned after a checkout has been persisted.
type InitiateCheckoutResult struct {
	CheckoutID      string    `json:"checkoutId"`
	CheckoutURL     string    `json:"checkoutUrl"`
	ExpiresAt       time.Time `json:"expiresAt"`
	ClientReference string    `json:"clientReference"`
}

// CheckoutStatus is the derived status payload for GET /checkout/status.
// Payment fields are only set when the effective status is paid.
type CheckoutStatus struct {
	Status           string     `json:"status"`
	CheckoutID       string     `json:"checkoutId"`
	BusinessID       string     `json:"businessId"`
	ClientReference  string     `json:"clientReference"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	Channel          string     `json:"channel,omitempty"`
	TransactionID    string     `json:"transactionId,omitempty"`
	CustomerPhone    string     `json:"customerPhone,omitempty"`
	Fees             *float64   `json:"fees,omitempty"`
	SettlementAmount *float64   `json:"settlementAmount,omitempty"`
}

// NewCheckoutStatus builds the status payload from a checkout and its payments.
func NewCheckoutStatus(c *Checkout) *CheckoutStatus {
	status := &CheckoutStatus{
		Status:          c.EffectiveStatus(),
		CheckoutID:      c.CheckoutID,
		BusinessID:      c.BusinessID,
		ClientReference: c.ClientReference,
		Amount:          c.Amount,
		Currency:        c.Currency,
		ExpiresAt:       c.ExpiresAt,
	}
	if p := c.FirstPayment(); p != nil {
		paidAt := p.PaidAt
		fees := p.Fees
		settlement := p.SettlementAmount
		status.PaidAt = &paidAt
		status.Channel = p.Channel
		status.TransactionID = p.TransactionID
		status.CustomerPhone = p.CustomerPhone
		status.Fees = &fees
		status.SettlementAmount = &settlement
	}
	return status
}

// CancelResult is returned by POST /checkout/cancel.
type CancelResult struct {
	Status      string    `json:"status"`
	CancelledAt time.Time `json:"cancelledAt"`
}
