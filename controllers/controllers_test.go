package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xtopay/checkout-backend/auth"
	apperrors "github.com/xtopay/checkout-backend/common/errors"
	"github.com/xtopay/checkout-backend/controllers"
	"github.com/xtopay/checkout-backend/middleware"
	"github.com/xtopay/checkout-backend/models"
	"github.com/xtopay/checkout-backend/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock services ---

type mockBusinessService struct {
	getFn func(ctx context.Context, id string, creds auth.Credentials) (*models.BusinessInfo, *services.ServiceError)
}

func (m *mockBusinessService) GetBusinessInfo(ctx context.Context, id string, creds auth.Credentials) (*models.BusinessInfo, *services.ServiceError) {
	return m.getFn(ctx, id, creds)
}

type mockCheckoutService struct {
	initiateFn func(ctx context.Context, req *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResult, *services.ServiceError)
	statusFn   func(ctx context.Context, ref string) (*models.CheckoutStatus, *services.ServiceError)
	cancelFn   func(ctx context.Context, ref string) (*models.CancelResult, *services.ServiceError)
}

func (m *mockCheckoutService) Initiate(ctx context.Context, req *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResult, *services.ServiceError) {
	return m.initiateFn(ctx, req)
}
func (m *mockCheckoutService) GetStatus(ctx context.Context, ref string) (*models.CheckoutStatus, *services.ServiceError) {
	return m.statusFn(ctx, ref)
}
func (m *mockCheckoutService) Cancel(ctx context.Context, ref string) (*models.CancelResult, *services.ServiceError) {
	return m.cancelFn(ctx, ref)
}

// --- Helpers ---

func setupBusinessRouter(svc services.BusinessService) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(apperrors.NoMethod())
	bc := controllers.NewBusinessController(svc)
	r.POST("/business/info", middleware.BasicAuth(), bc.GetBusinessInfo)
	return r
}

func setupCheckoutRouter(svc services.CheckoutService) *gin.Engine {
	r := gin.New()
	cc := controllers.NewCheckoutController(svc)
	r.POST("/checkout/initiate", cc.Initiate)
	r.GET("/checkout/status/:clientReference", cc.GetStatus)
	r.POST("/checkout/cancel/:clientReference", cc.Cancel)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}, header string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var demoHeader = auth.Credentials{APIID: "demo_id", APIKey: "demo_key"}.Header()

// --- Business info ---

func TestGetBusinessInfo_Success(t *testing.T) {
	var got auth.Credentials
	svc := &mockBusinessService{getFn: func(_ context.Context, id string, creds auth.Credentials) (*models.BusinessInfo, *services.ServiceError) {
		got = creds
		return &models.BusinessInfo{BusinessName: "Demo Merchant", BusinessEmail: "merchant@example.com", BusinessID: id, Currency: "GHS"}, nil
	}}

	w := doJSON(setupBusinessRouter(svc), http.MethodPost, "/business/info", gin.H{"business_id": "0800000"}, demoHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, auth.Credentials{APIID: "demo_id", APIKey: "demo_key"}, got)
	body := decode(t, w)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Demo Merchant", data["businessName"])
	assert.Equal(t, "0800000", data["businessId"])
	assert.NotContains(t, data, "api_id")
	assert.NotContains(t, data, "api_key")
}

func TestGetBusinessInfo_MissingAuth(t *testing.T) {
	called := false
	svc := &mockBusinessService{getFn: func(context.Context, string, auth.Credentials) (*models.BusinessInfo, *services.ServiceError) {
		called = true
		return nil, nil
	}}

	w := doJSON(setupBusinessRouter(svc), http.MethodPost, "/business/info", gin.H{"business_id": "0800000"}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
	assert.Equal(t, "error", decode(t, w)["status"])
}

func TestGetBusinessInfo_MissingBusinessID(t *testing.T) {
	svc := &mockBusinessService{}
	w := doJSON(setupBusinessRouter(svc), http.MethodPost, "/business/info", gin.H{}, demoHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Invalid request", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestGetBusinessInfo_ServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		svcErr *services.ServiceError
	}{
		{"forbidden", &services.ServiceError{StatusCode: http.StatusForbidden, Message: "Invalid credentials"}},
		{"not found", &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Business not found"}},
		{"persistence", &services.ServiceError{StatusCode: http.StatusInternalServerError, Message: "connection refused"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockBusinessService{getFn: func(context.Context, string, auth.Credentials) (*models.BusinessInfo, *services.ServiceError) {
				return nil, tc.svcErr
			}}
			w := doJSON(setupBusinessRouter(svc), http.MethodPost, "/business/info", gin.H{"business_id": "0800000"}, demoHeader)

			assert.Equal(t, tc.svcErr.StatusCode, w.Code)
			body := decode(t, w)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, tc.svcErr.Message, body["error"])
		})
	}
}

func TestGetBusinessInfo_WrongMethod(t *testing.T) {
	w := doJSON(setupBusinessRouter(&mockBusinessService{}), http.MethodGet, "/business/info", nil, demoHeader)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", decode(t, w)["error"])
}

// --- Checkout lifecycle ---

func validInitiate() gin.H {
	return gin.H{
		"amount":          20,
		"currency":        "GHS",
		"clientReference": "DEMO-1700000000000",
		"description":     "Integration Demo Payment",
		"channels":        []string{"mtn", "card"},
		"callbackUrl":     "https://merchant.com/callback",
		"payeeName":       "Ama",
		"payeePhone":      "0241111111",
	}
}

func TestInitiate_Success(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	var got *models.InitiateCheckoutRequest
	svc := &mockCheckoutService{initiateFn: func(_ context.Context, req *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResult, *services.ServiceError) {
		got = req
		return &models.InitiateCheckoutResult{
			CheckoutID:      "xtp_abc",
			CheckoutURL:     "https://pay.xtopay.co/xtp_abc",
			ExpiresAt:       expires,
			ClientReference: req.ClientReference,
		}, nil
	}}

	w := doJSON(setupCheckoutRouter(svc), http.MethodPost, "/checkout/initiate", validInitiate(), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20.0, got.Amount)
	assert.Equal(t, "0241111111", got.PayeePhone)
	body := decode(t, w)
	assert.Equal(t, "pending", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "xtp_abc", data["checkoutId"])
	assert.Equal(t, "https://pay.xtopay.co/xtp_abc", data["checkoutUrl"])
	assert.Equal(t, "2026-03-01T12:30:00Z", data["expiresAt"])
	assert.Equal(t, "DEMO-1700000000000", data["clientReference"])
}

func TestInitiate_ValidationErrors(t *testing.T) {
	mutate := map[string]func(gin.H){
		"missing amount":    func(b gin.H) { delete(b, "amount") },
		"negative amount":   func(b gin.H) { b["amount"] = -5 },
		"bad currency":      func(b gin.H) { b["currency"] = "GH" },
		"missing reference": func(b gin.H) { delete(b, "clientReference") },
		"bad callback url":  func(b gin.H) { b["callbackUrl"] = "not a url" },
		"customer no phone": func(b gin.H) { b["customer"] = gin.H{"name": "Ama"} },
		"amount as string":  func(b gin.H) { b["amount"] = "20" },
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			called := false
			svc := &mockCheckoutService{initiateFn: func(context.Context, *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResult, *services.ServiceError) {
				called = true
				return nil, nil
			}}
			body := validInitiate()
			fn(body)

			w := doJSON(setupCheckoutRouter(svc), http.MethodPost, "/checkout/initiate", body, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, called)
			assert.Equal(t, "Invalid request", decode(t, w)["error"])
		})
	}
}

func TestInitiate_PersistenceFailure(t *testing.T) {
	svc := &mockCheckoutService{initiateFn: func(context.Context, *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResult, *services.ServiceError) {
		return nil, &services.ServiceError{StatusCode: http.StatusInternalServerError, Message: "duplicate key value"}
	}}

	w := doJSON(setupCheckoutRouter(svc), http.MethodPost, "/checkout/initiate", validInitiate(), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","error":"duplicate key value"}`, w.Body.String())
}

func TestGetStatus_Paid(t *testing.T) {
	paidAt := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	fees := 0.4
	var gotRef string
	svc := &mockCheckoutService{statusFn: func(_ context.Context, ref string) (*models.CheckoutStatus, *services.ServiceError) {
		gotRef = ref
		return &models.CheckoutStatus{Status: "paid", ClientReference: ref, Amount: 20, Currency: "GHS", PaidAt: &paidAt, Channel: "mtn", TransactionID: "tx-42", Fees: &fees}, nil
	}}

	w := doJSON(setupCheckoutRouter(svc), http.MethodGet, "/checkout/status/DEMO-1", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DEMO-1", gotRef)
	body := decode(t, w)
	assert.Equal(t, "paid", body["status"])
	assert.Equal(t, "tx-42", body["transactionId"])
	assert.Equal(t, "2026-03-01T12:05:00Z", body["paidAt"])
	assert.NotContains(t, body, "settlementAmount")
}

func TestGetStatus_PendingOmitsPaymentFields(t *testing.T) {
	svc := &mockCheckoutService{statusFn: func(_ context.Context, ref string) (*models.CheckoutStatus, *services.ServiceError) {
		return &models.CheckoutStatus{Status: "pending", ClientReference: ref}, nil
	}}

	w := doJSON(setupCheckoutRouter(svc), http.MethodGet, "/checkout/status/DEMO-2", nil, "")

	body := decode(t, w)
	assert.Equal(t, "pending", body["status"])
	for _, k := range []string{"paidAt", "channel", "transactionId", "customerPhone", "fees", "settlementAmount"} {
		assert.NotContains(t, body, k)
	}
}

func TestGetStatus_NotFound(t *testing.T) {
	svc := &mockCheckoutService{statusFn: func(context.Context, string) (*models.CheckoutStatus, *services.ServiceError) {
		return nil, &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Checkout not found"}
	}}

	w := doJSON(setupCheckoutRouter(svc), http.MethodGet, "/checkout/status/UNKNOWN", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Checkout not found", decode(t, w)["error"])
}

func TestCancel_Success(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)
	svc := &mockCheckoutService{cancelFn: func(_ context.Context, ref string) (*models.CancelResult, *services.ServiceError) {
		assert.Equal(t, "DEMO-3", ref)
		return &models.CancelResult{Status: "cancelled", CancelledAt: at}, nil
	}}

	w := doJSON(setupCheckoutRouter(svc), http.MethodPost, "/checkout/cancel/DEMO-3", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"cancelled","cancelledAt":"2026-03-01T12:10:00Z"}`, w.Body.String())
}

func TestCancel_Failure(t *testing.T) {
	svc := &mockCheckoutService{cancelFn: func(context.Context, string) (*models.CancelResult, *services.ServiceError) {
		return nil, &services.ServiceError{StatusCode: http.StatusInternalServerError, Message: "deadlock detected"}
	}}

	w := doJSON(setupCheckoutRouter(svc), http.MethodPost, "/checkout/cancel/DEMO-4", nil, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "deadlock detected", decode(t, w)["error"])
}

// --- Webhook ---

func TestWebhook_AcknowledgesAnything(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	wc := controllers.NewWebhookController(zap.New(core))
	r := gin.New()
	r.POST("/webhook", wc.Receive)

	for _, payload := range []string{`{"event":"payment.success"}`, `not json at all`, ``} {
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(payload))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	}
	assert.Equal(t, 3, logs.FilterMessage("Webhook received").Len())
}
