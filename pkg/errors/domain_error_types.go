package errors

import (
	"fmt"
	"strings"
	"time"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainBusinessRuleError indicates a business rule violation
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"

	// DomainNotFoundError indicates a resource was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainConflictError indicates a conflict with existing state
	DomainConflictError DomainErrorType = "CONFLICT"

	// DomainInfrastructureError indicates an infrastructure-level failure
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"

	// DomainAuthorizationError indicates insufficient permissions
	DomainAuthorizationError DomainErrorType = "AUTHORIZATION_ERROR"

	// DomainAuthenticationError indicates authentication failure
	DomainAuthenticationError DomainErrorType = "AUTHENTICATION_ERROR"

	// DomainRateLimitError indicates rate limit exceeded
	DomainRateLimitError DomainErrorType = "RATE_LIMIT_ERROR"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		Retryable:  false,
		StatusCode: domainErrorTypeToStatusCode(errorType),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// WithCause adds a cause to the error
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// WithRetryable sets whether the error is retryable
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	e.Retryable = retryable
	return e
}

// WithStatusCode sets a custom HTTP status code
func (e *DomainError) WithStatusCode(code int) *DomainError {
	e.StatusCode = code
	return e
}

// Is checks if the error is of a specific type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// domainErrorTypeToStatusCode maps error types to HTTP status codes
func domainErrorTypeToStatusCode(errorType DomainErrorType) int {
	switch errorType {
	case DomainValidationError:
		return 400 // Bad Request
	case DomainBusinessRuleError:
		return 422 // Unprocessable Entity
	case DomainNotFoundError:
		return 404 // Not Found
	case DomainConflictError:
		return 409 // Conflict
	case DomainAuthenticationError:
		return 401 // Unauthorized
	case DomainAuthorizationError:
		return 403 // Forbidden
	case DomainRateLimitError:
		return 429 // Too Many Requests
	case DomainInfrastructureError:
		return 500 // Internal Server Error
	default:
		return 500 // Internal Server Error
	}
}

// Common domain errors - these are pre-defined errors that can be reused.
// Use the New*Error constructors below when the error needs per-call details.

var (
	// Person errors
	ErrAccountNotFound = NewDomainError(
		DomainNotFoundError,
		"ACCOUNT_NOT_FOUND",
		"The requested account does not exist",
	)

	ErrMemberNotFound = NewDomainError(
		DomainNotFoundError,
		"MEMBER_NOT_FOUND",
		"The requested family member does not exist",
	)

	ErrMemberNameRequired = NewDomainError(
		DomainValidationError,
		"MEMBER_NAME_REQUIRED",
		"Family member name is required",
	)

	ErrInvalidDateOfBirth = NewDomainError(
		DomainValidationError,
		"INVALID_DATE_OF_BIRTH",
		"Date of birth must be a valid date",
	)

	// Relationship errors
	ErrRelationshipNotFound = NewDomainError(
		DomainNotFoundError,
		"RELATIONSHIP_NOT_FOUND",
		"The requested relationship does not exist",
	)

	ErrSelfRelationship = NewDomainError(
		DomainBusinessRuleError,
		"SELF_RELATIONSHIP",
		"Cannot create a relationship from a person to themselves",
	)

	ErrDuplicateRelationship = NewDomainError(
		DomainConflictError,
		"DUPLICATE_RELATIONSHIP",
		"A relationship of this type already exists between these people",
	)

	ErrUnsupportedRelationshipType = NewDomainError(
		DomainValidationError,
		"UNSUPPORTED_RELATIONSHIP_TYPE",
		"Relationship type must be PARENT, CHILD, SPOUSE or SIBLING",
	)

	ErrNotRelationshipInitiator = NewDomainError(
		DomainAuthorizationError,
		"NOT_RELATIONSHIP_INITIATOR",
		"Only the person who created a relationship may delete it",
	)

	// Manual member linking errors
	ErrAlreadyLinked = NewDomainError(
		DomainConflictError,
		"ALREADY_LINKED",
		"This family member is already linked to a different account",
	)

	ErrNotMemberAdder = NewDomainError(
		DomainAuthorizationError,
		"NOT_MEMBER_ADDER",
		"Only the person who added this member, or the account being claimed, may link it",
	)

	// Transaction errors
	ErrConcurrentModification = NewDomainError(
		DomainConflictError,
		"CONCURRENT_MODIFICATION",
		"The resource was modified by another process",
	).WithRetryable(true)

	ErrTransactionFailed = NewDomainError(
		DomainInfrastructureError,
		"TRANSACTION_FAILED",
		"Database transaction failed",
	).WithRetryable(true)

	// Rate limiting errors
	ErrRateLimitExceeded = NewDomainError(
		DomainRateLimitError,
		"RATE_LIMIT_EXCEEDED",
		"Too many requests, please try again later",
	).WithRetryable(true)

	// Infrastructure errors
	ErrDatabaseConnection = NewDomainError(
		DomainInfrastructureError,
		"DATABASE_CONNECTION_ERROR",
		"Failed to connect to database",
	).WithRetryable(true)

	ErrEventPublishFailed = NewDomainError(
		DomainInfrastructureError,
		"EVENT_PUBLISH_FAILED",
		"Failed to publish domain event",
	).WithRetryable(true)
)

// NewUnsupportedTypeError builds an unsupported-type error carrying the
// rejected input. Predefined errors share a Details map, so per-call
// context needs a fresh instance.
func NewUnsupportedTypeError(got string) *DomainError {
	return NewDomainError(
		DomainValidationError,
		"UNSUPPORTED_RELATIONSHIP_TYPE",
		"Relationship type must be PARENT, CHILD, SPOUSE or SIBLING",
	).WithDetail("type", got)
}

// NewAlreadyLinkedError builds an already-linked error naming the account
// the member is currently linked to
func NewAlreadyLinkedError(linkedAccountID string) *DomainError {
	return NewDomainError(
		DomainConflictError,
		"ALREADY_LINKED",
		"This family member is already linked to a different account",
	).WithDetail("linked_account_id", linkedAccountID)
}

// NewDuplicateRelationshipError builds a duplicate-edge error for a
// specific (initiator, target, type) triple
func NewDuplicateRelationshipError(initiatorID, targetID, relType string) *DomainError {
	return NewDomainError(
		DomainConflictError,
		"DUPLICATE_RELATIONSHIP",
		"A relationship of this type already exists between these people",
	).WithDetail("initiator_id", initiatorID).
		WithDetail("target_id", targetID).
		WithDetail("relationship_type", relType)
}

// ValidationErrors aggregates multiple validation errors
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*DomainError, 0),
	}
}

// Add adds a validation error
func (v *ValidationErrors) Add(field string, message string) {
	err := NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field)
	v.Errors = append(v.Errors, err)
}

// AddError adds a pre-existing domain error
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// ToMap converts validation errors to a map for JSON serialization
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)

	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}

		if _, exists := result[field]; !exists {
			result[field] = make([]string, 0)
		}
		result[field] = append(result[field], err.Message)
	}

	return result
}

// DomainErrorResponse represents the API error response format for domain errors
type DomainErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      DomainErrorType        `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// NewDomainErrorResponse creates an error response from a domain error
func NewDomainErrorResponse(err *DomainError, requestID string) *DomainErrorResponse {
	return &DomainErrorResponse{
		Error:     true,
		Type:      err.Type,
		Code:      err.Code,
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		RequestID: requestID,
		Timestamp: fmt.Sprintf("%d", timeNow().Unix()),
	}
}

// Helper function for testing (can be mocked)
var timeNow = func() time.Time {
	return time.Now()
}
