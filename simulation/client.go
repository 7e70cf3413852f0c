package simulation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/xtopay/checkout-backend/auth"
	apperrors "github.com/xtopay/checkout-backend/common/errors"
	"github.com/xtopay/checkout-backend/models"
)

// DefaultAPIBase is where the local backend listens.
const DefaultAPIBase = "http://localhost:4000/api"

// DemoCredentials are the API credentials provisioned by tools/seed.
var DemoCredentials = auth.Credentials{APIID: "demo_id", APIKey: "demo_key"}

// APIError is a non-2xx response from the checkout API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("checkout api: %d %s", e.StatusCode, e.Message)
}

// CheckoutAPI is the part of the backend the payer flows talk to.
type CheckoutAPI interface {
	Initiate(ctx context.Context, req *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResult, error)
	Status(ctx context.Context, clientReference string) (*models.CheckoutStatus, error)
	BusinessInfo(ctx context.Context, businessID string) (*models.BusinessInfo, error)
	Cancel(ctx context.Context, clientReference string) (*models.CancelResult, error)
}

// APIClient calls the checkout HTTP surface.
type APIClient struct {
	http  *resty.Client
	creds auth.Credentials
}

// NewAPIClient creates a client for baseURL. creds are sent only on the
// business info call, which is the sole authenticated endpoint.
func NewAPIClient(baseURL string, creds auth.Credentials) *APIClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json")
	return &APIClient{http: client, creds: creds}
}

type initiateResponse struct {
	Status string                        `json:"status"`
	Data   models.InitiateCheckoutResult `json:"data"`
}

type businessResponse struct {
	Status string              `json:"status"`
	Data   models.BusinessInfo `json:"data"`
}

// Initiate handles POST /checkout/initiate.
func (c *APIClient) Initiate(ctx context.Context, req *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResult, error) {
	var out initiateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apperrors.Envelope{}).
		Post("/checkout/initiate")
	if err := check(resp, err, "Failed to create payment"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Status handles GET /checkout/status/:clientReference.
func (c *APIClient) Status(ctx context.Context, clientReference string) (*models.CheckoutStatus, error) {
	var out models.CheckoutStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ref", clientReference).
		SetResult(&out).
		SetError(&apperrors.Envelope{}).
		Get("/checkout/status/{ref}")
	if err := check(resp, err, "Failed to load payment"); err != nil {
		return nil, err
	}
	return &out, nil
}

// BusinessInfo handles POST /business/info.
func (c *APIClient) BusinessInfo(ctx context.Context, businessID string) (*models.BusinessInfo, error) {
	var out businessResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.creds.Header()).
		SetBody(models.BusinessInfoRequest{BusinessID: businessID}).
		SetResult(&out).
		SetError(&apperrors.Envelope{}).
		Post("/business/info")
	if err := check(resp, err, "Business not found"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Cancel handles POST /checkout/cancel/:clientReference.
func (c *APIClient) Cancel(ctx context.Context, clientReference string) (*models.CancelResult, error) {
	var out models.CancelResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ref", clientReference).
		SetResult(&out).
		SetError(&apperrors.Envelope{}).
		Post("/checkout/cancel/{ref}")
	if err := check(resp, err, "Failed to cancel payment"); err != nil {
		return nil, err
	}
	return &out, nil
}

// check turns transport failures and error envelopes into errors. fallback
// is used when the body carries no message.
func check(resp *resty.Response, err error, fallback string) error {
	if err != nil {
		if resp != nil && resp.IsError() {
			return &APIError{StatusCode: resp.StatusCode(), Message: fallback}
		}
		return fmt.Errorf("%s: %w", fallback, err)
	}
	if !resp.IsError() {
		return nil
	}

	msg := fallback
	if env, ok := resp.Error().(*apperrors.Envelope); ok && env.Error != "" {
		msg = env.Error
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
