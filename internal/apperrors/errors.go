package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the requested change conflicts with the current state of a resource.
var ErrConflict = errors.New("conflict with current state")

// ErrInternal is returned when an unexpected infrastructure failure happens.
var ErrInternal = errors.New("internal error")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Ledger error kinds. Each one wraps one of the broad classes above so that
// transport code can map them with errors.Is without knowing every kind.
var (
	ErrInvalidAmount          = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrOverPayment            = fmt.Errorf("%w: over payment", ErrConflict)
	ErrAccountNotFound        = fmt.Errorf("%w: account not found", ErrNotFound)
	ErrInvoiceNotFound        = fmt.Errorf("%w: invoice not found", ErrNotFound)
	ErrExpenseNotFound        = fmt.Errorf("%w: expense not found", ErrNotFound)
	ErrAllocationMismatch     = fmt.Errorf("%w: allocation mismatch", ErrConflict)
	ErrDuplicateLinkSuspected = fmt.Errorf("%w: duplicate link suspected", ErrConflict)
	ErrExpenseHasPayments     = fmt.Errorf("%w: expense has payments", ErrConflict)
	ErrInvoiceCancelled       = fmt.Errorf("%w: invoice cancelled", ErrConflict)
	ErrAccountInactive        = fmt.Errorf("%w: account inactive", ErrValidation)
	ErrInvalidTransition      = fmt.Errorf("%w: invalid status transition", ErrConflict)
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrOverPayment, "OverPayment"},
	{ErrAccountNotFound, "AccountNotFound"},
	{ErrInvoiceNotFound, "InvoiceNotFound"},
	{ErrExpenseNotFound, "ExpenseNotFound"},
	{ErrAllocationMismatch, "AllocationMismatch"},
	{ErrDuplicateLinkSuspected, "DuplicateLinkSuspected"},
	{ErrExpenseHasPayments, "ExpenseHasPayments"},
	{ErrInvoiceCancelled, "InvoiceCancelled"},
	{ErrAccountInactive, "AccountInactive"},
	{ErrInvalidTransition, "InvalidTransition"},
	{ErrDuplicate, "Duplicate"},
	{ErrNotFound, "NotFound"},
	{ErrValidation, "Validation"},
	{ErrConflict, "Conflict"},
	{ErrUnauthorized, "Unauthorized"},
}

// Kind returns the most specific ledger error kind name found in err's chain,
// or "Internal" when none matches.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

// HTTPStatus maps an error chain to the status code used by the HTTP layer.
func HTTPStatus(err error) int {
	var appErr *AppError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAllocationMismatch), errors.Is(err, ErrOverPayment):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &appErr):
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// AppError carries an HTTP-ish status code together with the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that wraps ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}
