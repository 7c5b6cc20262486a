package asana

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is returned for any failed Asana request: a non-200 response or a
// transport failure, in which case StatusCode is 0.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("asana request failed: %s - URL: %s", e.Message, e.URL)
	}
	return fmt.Sprintf("asana API request failed with code: %d - Error: %s - URL: %s", e.StatusCode, e.Message, e.URL)
}

// IsAPIError reports whether err wraps an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// errorMessage prefers the first message from Asana's error envelope and
// falls back to the raw body.
func errorMessage(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && len(resp.Errors) > 0 && resp.Errors[0].Message != "" {
		return resp.Errors[0].Message
	}
	return strings.TrimSpace(string(body))
}
