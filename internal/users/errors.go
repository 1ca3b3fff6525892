package users

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// UserError represents errors related to a single user record
type UserError struct {
	Type    string
	UserID  int64
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("user error [%s] for user %d: %s (caused by: %v)", e.Type, e.UserID, e.Message, e.Cause)
	}
	return fmt.Sprintf("user error [%s] for user %d: %s", e.Type, e.UserID, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// User error types
const (
	UserErrorTypeNotFound = "not_found"
)

// NewUserNotFoundError creates an error for when a user is not found
func NewUserNotFoundError(userID int64) *UserError {
	return &UserError{
		Type:    UserErrorTypeNotFound,
		UserID:  userID,
		Message: "user not found",
	}
}

// IsNotFound reports whether err (or anything it wraps) is a not-found UserError
func IsNotFound(err error) bool {
	var userErr *UserError
	return errors.As(err, &userErr) && userErr.Type == UserErrorTypeNotFound
}

// FieldErrors maps a field name to its ordered list of messages
type FieldErrors map[string][]string

// Add appends a message for field
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// ValidationError represents a rejected request payload
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError wraps field errors
func NewValidationError(fields FieldErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidationError extracts the field errors carried by err, if any
func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// StorageError represents errors related to storage operations
type StorageError struct {
	Type      string
	Operation string
	Message   string
	Cause     error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error [%s] during %s on users: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error [%s] during %s on users: %s", e.Type, e.Operation, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Storage error types
const (
	StorageErrorTypeQueryFailed         = "query_failed"
	StorageErrorTypeConstraintViolation = "constraint_violation"
)

// NewStorageQueryError creates an error for storage query failures
func NewStorageQueryError(operation string, cause error) *StorageError {
	return &StorageError{
		Type:      StorageErrorTypeQueryFailed,
		Operation: operation,
		Message:   "storage query failed",
		Cause:     cause,
	}
}

// NewStorageConstraintError creates an error for constraint violations
func NewStorageConstraintError(operation string, cause error) *StorageError {
	return &StorageError{
		Type:      StorageErrorTypeConstraintViolation,
		Operation: operation,
		Message:   "storage constraint violation",
		Cause:     cause,
	}
}
