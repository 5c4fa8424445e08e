package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Causa original, útil para logs, no se expone al cliente
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap crea un AppError envolviendo un error existente
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// WithDetail agrega detalle al error. Devuelve una COPIA para no mutar
// las variables globales del catálogo.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause adjunta la causa original. Devuelve una COPIA.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// ---------------------------------------------------------------------------------
// 400 Bad Request
// ---------------------------------------------------------------------------------

var (
	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingField = &AppError{
		Code:       "MISSING_FIELD",
		Message:    "A required field is missing.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidParameter = &AppError{
		Code:       "INVALID_PARAMETER",
		Message:    "A URL or query string parameter is invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrReasonTooShort = &AppError{
		Code:       "REASON_TOO_SHORT",
		Message:    "A reason of at least 10 characters is required.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingIdempotencyKey = &AppError{
		Code:       "MISSING_IDEMPOTENCY_KEY",
		Message:    "The Idempotency-Key header is required for this operation.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidIdempotencyKey = &AppError{
		Code:       "INVALID_IDEMPOTENCY_KEY_FORMAT",
		Message:    "The Idempotency-Key must be a UUID of at most 64 characters.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidTransferRequest = &AppError{
		Code:       "INVALID_TRANSFER_REQUEST",
		Message:    "The transfer request is invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrEmptyOrder = &AppError{
		Code:       "EMPTY_ORDER",
		Message:    "The order has no valid line items.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// ---------------------------------------------------------------------------------
// 401 Unauthorized
// ---------------------------------------------------------------------------------

var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "The provided credentials are invalid.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrSessionExpired = &AppError{
		Code:       "SESSION_EXPIRED",
		Message:    "The session has expired, please log in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// ---------------------------------------------------------------------------------
// 403 Forbidden
// ---------------------------------------------------------------------------------

var (
	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "You do not have permission to perform this action.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrNotOwner = &AppError{
		Code:       "NOT_OWNER",
		Message:    "Only the current owner of the warranty can perform this action.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrInvalidCSRF = &AppError{
		Code:       "INVALID_CSRF_TOKEN",
		Message:    "CSRF token missing or mismatched.",
		HTTPStatus: http.StatusForbidden,
	}
)

// ---------------------------------------------------------------------------------
// 404 Not Found
// ---------------------------------------------------------------------------------

var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "The requested resource was not found.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrWarrantyNotFound = &AppError{
		Code:       "WARRANTY_NOT_FOUND",
		Message:    "The specified warranty does not exist.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "The requested route does not exist.",
		HTTPStatus: http.StatusNotFound,
	}
)

// ---------------------------------------------------------------------------------
// 409 Conflict — el corazón del manejo de concurrencia: el cliente debe
// recargar el estado, nunca reintentar a ciegas.
// ---------------------------------------------------------------------------------

var (
	ErrStaleState = &AppError{
		Code:       "STALE_STATE",
		Message:    "The warranty status changed while processing; reload and review before retrying.",
		HTTPStatus: http.StatusConflict,
	}

	ErrAlreadyRefunded = &AppError{
		Code:       "ALREADY_REFUNDED",
		Message:    "This warranty has already been refunded.",
		HTTPStatus: http.StatusConflict,
	}

	ErrActiveCannotRefund = &AppError{
		Code:       "ACTIVE_WARRANTY_CANNOT_REFUND",
		Message:    "An active warranty cannot be refunded.",
		HTTPStatus: http.StatusConflict,
	}

	ErrInvalidWarrantyStatus = &AppError{
		Code:       "INVALID_WARRANTY_STATUS",
		Message:    "The warranty is not in a status that allows this action.",
		HTTPStatus: http.StatusConflict,
	}

	ErrOwnerChanged = &AppError{
		Code:       "OWNER_CHANGED",
		Message:    "The warranty owner changed since the transfer was requested.",
		HTTPStatus: http.StatusConflict,
	}

	ErrTransferAlreadyExists = &AppError{
		Code:       "TRANSFER_ALREADY_EXISTS",
		Message:    "A pending transfer already exists for this warranty.",
		HTTPStatus: http.StatusConflict,
	}

	ErrEmailMismatch = &AppError{
		Code:       "EMAIL_MISMATCH",
		Message:    "The transfer was addressed to a different email.",
		HTTPStatus: http.StatusConflict,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "The request conflicts with the current state of the resource.",
		HTTPStatus: http.StatusConflict,
	}

	ErrOutOfStock = &AppError{
		Code:       "OUT_OF_STOCK",
		Message:    "Not enough stock to fulfill the order.",
		HTTPStatus: http.StatusConflict,
	}
)

// ---------------------------------------------------------------------------------
// 422 Unprocessable Entity
// ---------------------------------------------------------------------------------

var (
	ErrInvalidTransferCode = &AppError{
		Code:       "INVALID_TRANSFER_CODE",
		Message:    "The transfer code is invalid or the transfer has expired.",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
)

// ---------------------------------------------------------------------------------
// 429 Too Many Requests
// ---------------------------------------------------------------------------------

var (
	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, slow down.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// ---------------------------------------------------------------------------------
// 5xx
// ---------------------------------------------------------------------------------

var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "The service is temporarily unavailable.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
