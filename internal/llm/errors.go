package llm

import (
	"fmt"
	"net/http"
	"strings"
)

// AuthError reports missing or rejected credentials. Never retried.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("llm: %s authentication: %v", e.Provider, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

// TransientError marks provider failures that are safe to retry
// (network, timeout, rate limit, 5xx).
type TransientError struct {
	Provider string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("llm: %s transient failure: %v", e.Provider, e.Err)
}
func (e *TransientError) Unwrap() error { return e.Err }

// MalformedError reports a response the gateway could not normalize to text.
type MalformedError struct {
	Provider string
	Reason   string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("llm: %s returned malformed response: %s", e.Provider, e.Reason)
}

// classifyStatus maps an HTTP status from a provider SDK to an error kind.
func classifyStatus(provider string, status int, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Provider: provider, Err: err}
	case status == http.StatusTooManyRequests || status >= 500:
		return &TransientError{Provider: provider, Err: err}
	}
	return err
}

// classifyMessage falls back to string matching for SDKs that do not
// expose typed errors.
func classifyMessage(provider string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "authentication") || strings.Contains(msg, "api key") {
		return &AuthError{Provider: provider, Err: err}
	}
	return &TransientError{Provider: provider, Err: err}
}
