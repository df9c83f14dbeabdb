package providers

import "fmt"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem is an instruction message that frames the conversation
	RoleSystem Role = "system"

	// RoleUser is an end-user message
	RoleUser Role = "user"

	// RoleAssistant is a model-generated message
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation
type Message struct {
	// Role can be "system", "user", or "assistant"
	Role Role `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// Result is the normalized outcome of a successful completion
type Result struct {
	// Content is the generated text extracted from the provider response
	Content string `json:"content"`

	// Provider is the name of the provider that produced the content
	Provider string `json:"provider"`
}

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// StatusCode is the HTTP status code (0 when the request never got a response)
	StatusCode int

	// Retryable indicates if the request can be retried
	Retryable bool

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider string, statusCode int, retryable bool, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Retryable:  retryable,
		Message:    message,
		Cause:      cause,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if provErr, ok := err.(*ProviderError); ok {
		return provErr.Retryable
	}
	return false
}
