package simulation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xtopay/checkout-backend/models"
)

// Fixed integration demo parameters.
const (
	DemoBusinessID   = "0800000"
	DemoCurrency     = "GHS"
	DemoDescription  = "Integration Demo Payment"
	DemoCallbackURL  = "https://merchant.com/callback"
	DemoReturnURL    = "https://merchant.com/thank-you"
	DemoCancelURL    = "https://merchant.com/cancelled"
	DemoAmount       = "20.00"
	ProductionHost   = "https://pay.xtopay.co/"
	DemoReferenceTag = "DEMO-"
)

// DemoChannels are the channels every demo checkout requests.
var DemoChannels = []string{"mtn", "card"}

// ErrInvalidTransition is returned when an action is not allowed in the
// current state.
var ErrInvalidTransition = errors.New("action not allowed in current state")

// ErrNoCheckoutURL means the backend accepted the checkout but sent no URL.
var ErrNoCheckoutURL = errors.New("no checkoutUrl returned")

const createFailedMessage = "Failed to create payment"

// DemoForm is what the payer types into the integration demo. Amount is
// prefilled with DemoAmount by NewDemoForm.
type DemoForm struct {
	Amount string `validate:"required,positive_amount"`
	Name   string `validate:"required,max=255"`
	Phone  string `validate:"required,max=32"`
}

// NewDemoForm returns a form with the default amount.
func NewDemoForm() DemoForm {
	return DemoForm{Amount: DemoAmount}
}

// Validate trims the fields and checks them.
func (f *DemoForm) Validate() error {
	f.Amount = strings.TrimSpace(f.Amount)
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	return formValidator().Struct(f)
}

// DemoState is a step of the integration demo.
type DemoState string

const (
	DemoStateForm        DemoState = "form"
	DemoStateSubmitting  DemoState = "submitting"
	DemoStateRedirecting DemoState = "redirecting"
	DemoStateError       DemoState = "error"
)

// IntegrationDemo simulates a merchant site creating a checkout and
// redirecting the payer to the hosted page.
type IntegrationDemo struct {
	api    CheckoutAPI
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    DemoState
	errMsg   string
	redirect string
	result   *models.InitiateCheckoutResult
}

// NewIntegrationDemo starts a demo in the form state.
func NewIntegrationDemo(api CheckoutAPI, logger *zap.Logger) *IntegrationDemo {
	return &IntegrationDemo{api: api, logger: logger, now: time.Now, state: DemoStateForm}
}

// State returns the current step.
func (d *IntegrationDemo) State() DemoState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Error returns the message shown in the error state.
func (d *IntegrationDemo) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}

// RedirectURL is set once the demo reaches redirecting.
func (d *IntegrationDemo) RedirectURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.redirect
}

// Result is the created checkout, or nil before a successful submit.
func (d *IntegrationDemo) Result() *models.InitiateCheckoutResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result
}

// Submit creates a checkout from the form. It is allowed from the form and
// error states. On success the demo moves to redirecting and returns the
// local redirect path.
func (d *IntegrationDemo) Submit(ctx context.Context, form DemoForm) (string, error) {
	d.mu.Lock()
	if d.state != DemoStateForm && d.state != DemoStateError {
		d.mu.Unlock()
		return "", ErrInvalidTransition
	}
	d.state = DemoStateSubmitting
	d.errMsg = ""
	d.mu.Unlock()

	if err := form.Validate(); err != nil {
		d.fail("Please enter a valid amount, name and phone number.")
		return "", err
	}
	amount, _ := strconv.ParseFloat(form.Amount, 64)

	req := d.buildRequest(amount, form)
	res, err := d.api.Initiate(ctx, req)
	if err != nil {
		d.logger.Warn("Demo checkout failed", zap.String("client_reference", req.ClientReference), zap.Error(err))
		d.fail(failureMessage(err))
		return "", err
	}
	if res.CheckoutURL == "" {
		d.fail("No checkoutUrl returned")
		return "", ErrNoCheckoutURL
	}

	redirect := LocalCheckoutPath(res.CheckoutURL)
	d.logger.Info("Demo checkout created",
		zap.String("checkout_id", res.CheckoutID),
		zap.String("redirect", redirect),
	)

	d.mu.Lock()
	d.state = DemoStateRedirecting
	d.redirect = redirect
	d.result = res
	d.mu.Unlock()
	return redirect, nil
}

// failureMessage prefers the message from the API's error envelope.
func failureMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return createFailedMessage
}

func (d *IntegrationDemo) buildRequest(amount float64, form DemoForm) *models.InitiateCheckoutRequest {
	return &models.InitiateCheckoutRequest{
		Amount:          amount,
		Currency:        DemoCurrency,
		ClientReference: fmt.Sprintf("%s%d", DemoReferenceTag, d.now().UnixMilli()),
		Description:     DemoDescription,
		Customer:        &models.CustomerInput{Name: form.Name, Phone: form.Phone},
		Channels:        append([]string(nil), DemoChannels...),
		CallbackURL:     DemoCallbackURL,
		ReturnURL:       DemoReturnURL,
		CancelURL:       DemoCancelURL,
		BusinessID:      DemoBusinessID,
	}
}

func (d *IntegrationDemo) fail(msg string) {
	d.mu.Lock()
	d.state = DemoStateError
	d.errMsg = msg
	d.mu.Unlock()
}

// LocalCheckoutPath rewrites a production checkout URL to a path on the
// local frontend. Other URLs are returned unchanged.
func LocalCheckoutPath(checkoutURL string) string {
	if rest, ok := strings.CutPrefix(checkoutURL, ProductionHost); ok {
		return "/" + rest
	}
	return checkoutURL
}
