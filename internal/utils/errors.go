package utils

import "net/http"

// AppError is an error that knows which HTTP status it maps to. Action, when
// set, names a remediation the client can offer (e.g. opening the key
// configuration flow).
type AppError struct {
	StatusCode int
	Message    string
	Action     string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Message: message}
}

func NewBadGatewayError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message}
}

// NewConfigurationError reports a missing credential together with the
// remediation action the client should surface.
func NewConfigurationError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusServiceUnavailable,
		Message:    message,
		Action:     "configure_api_key",
	}
}
