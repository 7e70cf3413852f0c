package errors_test

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xtopay/checkout-backend/common/errors"
)

func TestWrap_DoesNotMutateSentinel(t *testing.T) {
	cause := fmt.Errorf("duplicate key")
	wrapped := apperrors.ErrPersistence.Wrap(cause)

	assert.Nil(t, apperrors.ErrPersistence.Err)
	assert.Equal(t, cause, wrapped.Err)
	assert.True(t, stderrors.Is(wrapped, apperrors.ErrPersistence))
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.False(t, stderrors.Is(wrapped, apperrors.ErrNotFound))
}

func TestClassify_DefaultsToPersistence(t *testing.T) {
	appErr := apperrors.Classify(fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)

	nf := apperrors.ErrNotFound.WithMessage("Checkout not found")
	classified := apperrors.Classify(fmt.Errorf("lookup: %w", nf))
	assert.Equal(t, http.StatusNotFound, classified.Code)
	assert.Equal(t, "Checkout not found", classified.Message)
}

func TestRespond_WritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	apperrors.Respond(c, apperrors.ErrForbidden)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Invalid credentials", body["error"])
	_, hasDetails := body["details"]
	assert.False(t, hasDetails)
}

func TestNoMethod_Returns405Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(apperrors.NoMethod())
	r.POST("/business/info", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/business/info", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"status":"error","error":"Method not allowed"}`, w.Body.String())
}
