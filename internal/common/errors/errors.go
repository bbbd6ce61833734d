package errors

import (
	"fmt"
	"time"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeConflict   ErrorCode = "CONFLICT"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserPaused   ErrorCode = "USER_PAUSED"

	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeNoPendingSession   ErrorCode = "NO_PENDING_SESSION"
	ErrCodeDuplicateAck       ErrorCode = "DUPLICATE_ACK"
	ErrCodeSessionExpired     ErrorCode = "SESSION_EXPIRED"
	ErrCodeNotAcknowledgeable ErrorCode = "NOT_ACKNOWLEDGEABLE"

	ErrCodeInvalidInterval ErrorCode = "INVALID_INTERVAL"
	ErrCodeDeliveryFailure ErrorCode = "DELIVERY_FAILURE"

	ErrCodeStorageError ErrorCode = "STORAGE_ERROR"
)

// AppError is the typed error carried across the engine's services.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    int64                  `json:"user_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error is a missing-resource error.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeUserNotFound ||
		e.Code == ErrCodeSessionNotFound
}

// IsIgnorable reports whether the error is one of the ack-path errors the
// engine swallows as an idempotent no-op (stale tap, nothing pending).
func (e *AppError) IsIgnorable() bool {
	return e.Code == ErrCodeDuplicateAck ||
		e.Code == ErrCodeNoPendingSession ||
		e.Code == ErrCodeSessionExpired ||
		e.Code == ErrCodeNotAcknowledgeable
}

// IsInternal reports whether the error should be surfaced as a server fault.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeStorageError
}

// WithDetail attaches a key/value pair to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithUserID attaches the owning user to the error.
func (e *AppError) WithUserID(userID int64) *AppError {
	e.UserID = userID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewUserNotFoundError reports a missing user record.
func NewUserNotFoundError(userID int64) *AppError {
	return New(ErrCodeUserNotFound, fmt.Sprintf("User not found: %d", userID)).
		WithUserID(userID)
}

// NewNoPendingSessionError reports an acknowledgement with nothing pending.
func NewNoPendingSessionError(userID int64) *AppError {
	return New(ErrCodeNoPendingSession, "No pending card session for user").
		WithUserID(userID)
}

// NewDuplicateAckError reports a stale or replayed acknowledgement.
func NewDuplicateAckError(sessionID string) *AppError {
	return New(ErrCodeDuplicateAck, "Card session already resolved").
		WithDetail("session_id", sessionID)
}

// NewInvalidIntervalError reports an interval outside the entitled set.
func NewInvalidIntervalError(userID int64, minutes int) *AppError {
	return New(ErrCodeInvalidInterval, fmt.Sprintf("Interval not allowed: %d minutes", minutes)).
		WithUserID(userID).
		WithDetail("minutes", minutes)
}

// NewDeliveryFailureError reports a failed card delivery attempt.
func NewDeliveryFailureError(sessionID string, err error) *AppError {
	return Wrap(err, ErrCodeDeliveryFailure, "Card delivery failed").
		WithDetail("session_id", sessionID)
}

// NewStorageError wraps a failed store operation.
func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageError, fmt.Sprintf("Storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewValidationError reports a failed field validation.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// IsAppError checks whether err is an AppError.
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError converts err to an AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
