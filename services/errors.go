package services

import (
	"net/http"

	apperrors "github.com/xtopay/checkout-backend/common/errors"
)

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.Err }

var errorKinds = map[int]*apperrors.Error{
	http.StatusBadRequest:          apperrors.ErrValidation,
	http.StatusForbidden:           apperrors.ErrForbidden,
	http.StatusNotFound:            apperrors.ErrNotFound,
	http.StatusInternalServerError: apperrors.ErrPersistence,
}

// AppError converts e into the shared error type rendered by controllers,
// keeping the service's message.
func (e *ServiceError) AppError() *apperrors.Error {
	kind, ok := errorKinds[e.StatusCode]
	if !ok {
		return apperrors.New(e.StatusCode, e.Message, e.Err)
	}
	return kind.Wrap(e.Err).WithMessage(e.Message)
}

func validationError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

func notFoundError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: msg}
}

func forbiddenError() *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Message: apperrors.ErrForbidden.Message}
}

// persistenceError passes the datastore message through to the caller.
func persistenceError(err error) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: err.Error(), Err: err}
}
