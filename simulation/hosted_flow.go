package simulation

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xtopay/checkout-backend/models"
)

// Method is a payment method offered on the hosted page.
type Method string

const (
	MethodMobileMoney Method = "mobileMoney"
	MethodCard        Method = "card"
	MethodWallet      Method = "wallet"
	MethodPayLater    Method = "bnpl"
)

// MethodOption describes one entry of the method picker.
type MethodOption struct {
	Method Method
	Title  string
	Brands []string
}

// MethodOptions lists the picker entries in display order.
var MethodOptions = []MethodOption{
	{Method: MethodMobileMoney, Title: "Mobile Money", Brands: []string{"momo", "telecel", "at"}},
	{Method: MethodCard, Title: "Bank Card", Brands: []string{"visa", "mastercard", "verve"}},
	{Method: MethodWallet, Title: "Wallet", Brands: []string{"xtopay", "hubtel", "gmoney", "zeepay"}},
	{Method: MethodPayLater, Title: "Pay Later", Brands: []string{"xtopay"}},
}

// Stage is a step of the hosted checkout.
type Stage string

const (
	StageLoading     Stage = "loading"
	StageUnavailable Stage = "unavailable"
	StageSelecting   Stage = "selecting"
	StageFormFilling Stage = "formFilling"
	StageOTPPending  Stage = "otpPending"
	StageResolved    Stage = "resolved"
)

// Outcome is the simulated result of a payment attempt.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeFailed       Outcome = "failed"
	OutcomeInsufficient Outcome = "insufficient"
)

// Modal is the status dialog shown once a payment resolves.
type Modal struct {
	Outcome     Outcome
	Title       string
	Description string
}

// CanRetry reports whether the modal offers another OTP attempt.
func (m Modal) CanRetry() bool { return m.Outcome == OutcomeFailed }

var cardSuccessModal = Modal{
	Outcome:     OutcomeSuccess,
	Title:       "Payment Successful",
	Description: "Your card payment has been processed successfully.",
}

var otpModals = map[Outcome]Modal{
	OutcomeSuccess: {
		Outcome:     OutcomeSuccess,
		Title:       "Payment Successful",
		Description: "Your payment has been verified and completed successfully.",
	},
	OutcomeFailed: {
		Outcome:     OutcomeFailed,
		Title:       "Verification Failed",
		Description: "The code you entered is invalid. Please try again.",
	},
	OutcomeInsufficient: {
		Outcome:     OutcomeInsufficient,
		Title:       "Insufficient Funds",
		Description: "You don't have enough funds to complete this transaction.",
	},
}

// otpOutcomes is indexed by rand.Intn.
var otpOutcomes = []Outcome{OutcomeSuccess, OutcomeFailed, OutcomeInsufficient}

// Messages and fallbacks shown by the hosted page.
const (
	LoadFailedMessage     = "Payment not found or expired."
	FallbackMerchantName  = "Demo Merchant"
	FallbackMerchantEmail = "merchant@example.com"
	FallbackMerchantLogo  = "/merchant/favicon.png"
)

var (
	// ErrMethodUnavailable is returned for methods that have no form.
	ErrMethodUnavailable = errors.New("payment method not available")
	// ErrWrongDetails is returned when details do not belong to the selected method.
	ErrWrongDetails = errors.New("details do not match selected method")
)

// MobileMoneyDetails is the mobile money form.
type MobileMoneyDetails struct {
	Provider string `validate:"required,oneof=momo telecel at"`
	Phone    string `validate:"required,numeric,min=9,max=15"`
}

// CardDetails is the bank card form.
type CardDetails struct {
	HolderName string `validate:"required,max=255"`
	Number     string `validate:"required,credit_card"`
	Expiry     string `validate:"required,len=5"`
	CVV        string `validate:"required,numeric,min=3,max=4"`
}

// WalletDetails is the wallet form.
type WalletDetails struct {
	Provider string `validate:"required,oneof=xtopay hubtel gmoney zeepay"`
	Account  string `validate:"required,max=64"`
}

type otpInput struct {
	Code string `validate:"required,numeric,len=6"`
}

// PaymentSummary is the header of the hosted page.
type PaymentSummary struct {
	Amount        float64
	Currency      string
	MerchantName  string
	MerchantEmail string
	MerchantLogo  string
	PhoneNumber   string
}

// HostedCheckout simulates the hosted payment page. Outcomes are decided
// locally and never reported to the backend.
type HostedCheckout struct {
	api    CheckoutAPI
	rng    *rand.Rand
	logger *zap.Logger

	mu       sync.Mutex
	stage    Stage
	method   Method
	loadErr  string
	checkout *models.CheckoutStatus
	branding *models.BusinessInfo
	modal    *Modal
}

// NewHostedCheckout creates a page in the loading stage. rng decides OTP
// outcomes; nil seeds one from the clock.
func NewHostedCheckout(api CheckoutAPI, rng *rand.Rand, logger *zap.Logger) *HostedCheckout {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &HostedCheckout{api: api, rng: rng, logger: logger, stage: StageLoading}
}

// Load fetches the checkout and the merchant branding. A failed checkout
// lookup moves the page to unavailable; a failed branding lookup only
// falls back to the demo merchant.
func (h *HostedCheckout) Load(ctx context.Context, clientReference string) error {
	status, err := h.api.Status(ctx, clientReference)
	if err != nil {
		h.logger.Warn("Checkout load failed", zap.String("client_reference", clientReference), zap.Error(err))
		h.mu.Lock()
		h.stage = StageUnavailable
		h.loadErr = LoadFailedMessage
		h.mu.Unlock()
		return err
	}

	var branding *models.BusinessInfo
	if status.BusinessID != "" {
		branding, err = h.api.BusinessInfo(ctx, status.BusinessID)
		if err != nil {
			h.logger.Debug("Branding unavailable, using fallback", zap.String("business_id", status.BusinessID), zap.Error(err))
			branding = nil
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkout = status
	h.branding = branding
	h.loadErr = ""
	h.stage = StageSelecting
	return nil
}

// Summary returns the page header, or false before a successful Load.
func (h *HostedCheckout) Summary() (PaymentSummary, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.checkout == nil {
		return PaymentSummary{}, false
	}

	s := PaymentSummary{
		Amount:        h.checkout.Amount,
		Currency:      h.checkout.Currency,
		MerchantName:  FallbackMerchantName,
		MerchantEmail: FallbackMerchantEmail,
		MerchantLogo:  FallbackMerchantLogo,
		PhoneNumber:   h.checkout.CustomerPhone,
	}
	if s.Currency == "" {
		s.Currency = DemoCurrency
	}
	if b := h.branding; b != nil {
		if b.BusinessName != "" {
			s.MerchantName = b.BusinessName
		}
		if b.BusinessEmail != "" {
			s.MerchantEmail = b.BusinessEmail
		}
		if b.LogoURL != "" {
			s.MerchantLogo = b.LogoURL
		}
	}
	return s, true
}

// Stage returns the current step.
func (h *HostedCheckout) Stage() Stage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stage
}

// LoadError is the message shown in the unavailable stage.
func (h *HostedCheckout) LoadError() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadErr
}

// Method returns the selected method, or "" while selecting.
func (h *HostedCheckout) Method() Method {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.method
}

// Modal returns the resolved outcome dialog, or nil.
func (h *HostedCheckout) Modal() *Modal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.modal
}

// SelectMethod opens the form for m.
func (h *HostedCheckout) SelectMethod(m Method) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stage != StageSelecting {
		return ErrInvalidTransition
	}
	if !knownMethod(m) {
		return ErrMethodUnavailable
	}
	h.method = m
	h.stage = StageFormFilling
	return nil
}

// Back returns from a method form to the picker.
func (h *HostedCheckout) Back() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stage != StageFormFilling {
		return ErrInvalidTransition
	}
	h.method = ""
	h.stage = StageSelecting
	return nil
}

// SubmitDetails validates the form for the selected method. Card payments
// resolve immediately as successful; the others wait for an OTP.
func (h *HostedCheckout) SubmitDetails(details interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stage != StageFormFilling {
		return ErrInvalidTransition
	}

	switch details.(type) {
	case CardDetails, *CardDetails:
		if h.method != MethodCard {
			return ErrWrongDetails
		}
	case MobileMoneyDetails, *MobileMoneyDetails:
		if h.method != MethodMobileMoney {
			return ErrWrongDetails
		}
	case WalletDetails, *WalletDetails:
		if h.method != MethodWallet {
			return ErrWrongDetails
		}
	default:
		if h.method == MethodPayLater {
			return ErrMethodUnavailable
		}
		return ErrWrongDetails
	}

	if err := formValidator().Struct(details); err != nil {
		return err
	}

	if h.method == MethodCard {
		modal := cardSuccessModal
		h.modal = &modal
		h.stage = StageResolved
		h.logger.Info("Simulated card payment resolved", zap.String("outcome", string(modal.Outcome)))
		return nil
	}
	h.stage = StageOTPPending
	return nil
}

// VerifyOTP accepts a six digit code and picks an outcome uniformly at
// random. A malformed code leaves the page waiting for another attempt.
func (h *HostedCheckout) VerifyOTP(code string) (*Modal, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stage != StageOTPPending {
		return nil, ErrInvalidTransition
	}
	if err := formValidator().Struct(otpInput{Code: code}); err != nil {
		return nil, err
	}

	modal := otpModals[otpOutcomes[h.rng.Intn(len(otpOutcomes))]]
	h.modal = &modal
	h.stage = StageResolved
	h.logger.Info("Simulated OTP payment resolved",
		zap.String("method", string(h.method)),
		zap.String("outcome", string(modal.Outcome)),
	)
	return &modal, nil
}

// Retry reopens the OTP step after a failed verification.
func (h *HostedCheckout) Retry() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stage != StageResolved || h.modal == nil || !h.modal.CanRetry() {
		return ErrInvalidTransition
	}
	h.modal = nil
	h.stage = StageOTPPending
	return nil
}

func knownMethod(m Method) bool {
	for _, o := range MethodOptions {
		if o.Method == m {
			return true
		}
	}
	return false
}
