package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so a wrapped copy still matches its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Wrap returns a copy of e carrying err as its cause. Sentinels are never mutated.
func (e *Error) Wrap(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// WithMessage returns a copy of e with a different client-facing message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error kinds surfaced by the checkout API.
var (
	ErrAuthMissing      = New(http.StatusUnauthorized, "Missing or invalid Authorization header", nil)
	ErrForbidden        = New(http.StatusForbidden, "Invalid credentials", nil)
	ErrNotFound         = New(http.StatusNotFound, "Not found", nil)
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "Method not allowed", nil)
	ErrValidation       = New(http.StatusBadRequest, "Invalid request", nil)
	ErrPersistence      = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrRouteNotFound    = New(http.StatusNotFound, "Route not found", nil)
	ErrRateLimited      = New(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
	ErrOriginNotAllowed = New(http.StatusForbidden, "Origin not allowed", nil)
)

// Envelope is the uniform error body: {"status":"error","error":...}.
type Envelope struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Classify converts any error into an *Error, defaulting to ErrPersistence.
func Classify(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrPersistence.Wrap(err)
}

// Respond writes err as the error envelope and aborts the chain.
func Respond(c *gin.Context, err error) {
	appErr := Classify(err)
	c.AbortWithStatusJSON(appErr.Code, Envelope{Status: "error", Error: appErr.Message})
}

// RespondValidation writes a 400 envelope carrying the binder's detail text.
func RespondValidation(c *gin.Context, err error) {
	env := Envelope{Status: "error", Error: ErrValidation.Message}
	if err != nil {
		env.Details = err.Error()
	}
	c.AbortWithStatusJSON(ErrValidation.Code, env)
}

// NoMethod is installed as the engine's NoMethod handler.
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		Respond(c, ErrMethodNotAllowed)
	}
}

// NoRoute is installed as the engine's NoRoute handler.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		Respond(c, ErrRouteNotFound)
	}
}
