package services

import "errors"

// DomainError is a business-rule failure with a stable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Error codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeBelowMinimum        = "BELOW_MINIMUM"
)

var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrForbidden           = NewDomainError(CodeForbidden, "You are not allowed to access this resource")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Not enough stock for this product")
	ErrInsufficientBalance = NewDomainError(CodeInsufficientBalance, "Amount exceeds your withdrawable balance")
	ErrBelowMinimum        = NewDomainError(CodeBelowMinimum, "Minimum withdrawal amount is 1000")
	ErrWithdrawInProgress  = NewDomainError(CodeConflict, "Another withdrawal request is being processed")
	ErrEmptyCart           = NewDomainError(CodeInvalidInput, "Cart is empty")
)

// Invalid builds an INVALID_INPUT error with a specific message
func Invalid(message string) *DomainError {
	return NewDomainError(CodeInvalidInput, message)
}

// CodeOf returns the domain code of err, or "" for non-domain errors
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
