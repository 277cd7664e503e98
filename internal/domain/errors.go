package domain

import (
	"errors"
	"net/http"
)

// Error codes for business logic errors.
const (
	CodeNotFound      = 1
	CodeAlreadyExists = 2
	CodeValidation    = 3
	CodeInternal      = 4
	CodeUnauthorized  = 5
	CodeForbidden     = 6

	// CodeInvalidParameter and its specialisations report violated business
	// rules on otherwise well-formed input.
	CodeInvalidParameter     = 7
	CodeInvalidCreator       = 8
	CodeInvalidRecipient     = 9
	CodeInvalidInvitee       = 10
	CodeUnavailableInvitable = 11
)

// AppError represents a business logic error with a code, message, and optional wrapped error.
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined business errors.
//
// Use the Is* helpers rather than errors.Is to match a category: they compare
// codes, so freshly built errors from NewAppError match as well.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden     = &AppError{Code: CodeForbidden, Message: "access denied"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a validation AppError carrying per-field messages.
func NewValidationError(message string, fields map[string]string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Fields: fields}
}

// NewInvalidParameter reports a business rule violation.
func NewInvalidParameter(message string) *AppError {
	return NewAppError(CodeInvalidParameter, message, nil)
}

// NewInvalidCreator reports that a user cannot create the requested resource.
func NewInvalidCreator(message string) *AppError {
	return NewAppError(CodeInvalidCreator, message, nil)
}

// NewInvalidRecipient reports that a user cannot receive an invitation.
func NewInvalidRecipient(message string) *AppError {
	return NewAppError(CodeInvalidRecipient, message, nil)
}

// NewInvalidInvitee reports that a user cannot join an invitable.
func NewInvalidInvitee(message string) *AppError {
	return NewAppError(CodeInvalidInvitee, message, nil)
}

// NewUnavailableInvitable reports that an invitable no longer accepts invitations.
func NewUnavailableInvitable(message string) *AppError {
	return NewAppError(CodeUnavailableInvitable, message, nil)
}

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsAlreadyExists reports whether err is or wraps an AppError with CodeAlreadyExists.
func IsAlreadyExists(err error) bool {
	return hasCode(err, CodeAlreadyExists)
}

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

// IsUnauthorized reports whether err is or wraps an AppError with CodeUnauthorized.
func IsUnauthorized(err error) bool {
	return hasCode(err, CodeUnauthorized)
}

// IsForbidden reports whether err is or wraps an AppError with CodeForbidden.
func IsForbidden(err error) bool {
	return hasCode(err, CodeForbidden)
}

// IsInvalidParameter reports whether err is an invalid parameter error or one
// of its specialisations (creator, recipient, invitee).
func IsInvalidParameter(err error) bool {
	return hasCode(err, CodeInvalidParameter) ||
		hasCode(err, CodeInvalidCreator) ||
		hasCode(err, CodeInvalidRecipient) ||
		hasCode(err, CodeInvalidInvitee)
}

// IsInvalidCreator reports whether err is or wraps an AppError with CodeInvalidCreator.
func IsInvalidCreator(err error) bool {
	return hasCode(err, CodeInvalidCreator)
}

// IsInvalidRecipient reports whether err is or wraps an AppError with CodeInvalidRecipient.
func IsInvalidRecipient(err error) bool {
	return hasCode(err, CodeInvalidRecipient)
}

// IsUnavailableInvitable reports whether err is or wraps an AppError with CodeUnavailableInvitable.
func IsUnavailableInvitable(err error) bool {
	return hasCode(err, CodeUnavailableInvitable)
}

// hasCode checks whether err is or wraps an *AppError with the given code.
func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// If the error is an *AppError, the code is mapped; otherwise http.StatusInternalServerError is returned.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		case CodeInvalidParameter, CodeInvalidCreator, CodeInvalidRecipient,
			CodeInvalidInvitee, CodeUnavailableInvitable:
			return http.StatusUnprocessableEntity
		case CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
