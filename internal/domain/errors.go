// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation   ErrorType = iota // Input validation errors (400 Bad Request)
	ErrorTypeUnauthorized                  // Missing or mismatched credentials (401 Unauthorized)
	ErrorTypeForbidden                     // Caller lacks standing on the record (403 Forbidden)
	ErrorTypeNotFound                      // Resource not found errors (404 Not Found)
	ErrorTypeConflict                      // Resource conflict errors (409 Conflict)
	ErrorTypeInternal                      // Internal server errors (500 Internal Server Error)
	ErrorTypeUnavailable                   // Service unavailable errors (503 Service Unavailable)
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewUnauthorizedError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnauthorized, Message: message, Err: errors.Join(err...)}
}

func NewForbiddenError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeForbidden, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

// Sentinel errors for the lifecycle and its collaborators. Services return
// these so transports can map them to status codes with GetErrorType.
var (
	ErrMeetingNotFound  = NewNotFoundError("meeting not found")
	ErrEventNotFound    = NewNotFoundError("calendar event not found")
	ErrUserNotFound     = NewNotFoundError("user not found")
	ErrNotInvited       = NewForbiddenError("you are not invited to this meeting")
	ErrNotAParticipant  = NewForbiddenError("you are not a participant in this meeting")
	ErrMeetingNotActive = NewConflictError("meeting is not active")
	// Repeating meetings end through recurrence expiry, never manually.
	ErrRepeatingMeetingEnd   = NewValidationError("a repeating meeting cannot be manually ended")
	ErrMalformedRoomName     = NewValidationError("malformed room name")
	ErrWebhookUnauthorized   = NewUnauthorizedError("webhook token mismatch")
	ErrIntegrationDisabled   = NewUnauthorizedError("meeting integration is disabled")
	ErrTranscriptionDisabled = NewUnauthorizedError("transcription is disabled")
	ErrSessionIDTaken        = NewConflictError("session id already in use")
	ErrRevisionMismatch      = NewConflictError("record was modified concurrently")
	ErrUnmarshal             = NewInternalError("failed to unmarshal record")
	ErrInternal              = NewInternalError("internal error")
	ErrServiceUnavailable    = NewUnavailableError("service unavailable")
)
