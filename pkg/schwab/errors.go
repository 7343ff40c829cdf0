package schwab

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrEmptyResult marks a lookup that failed and produced an empty value.
// Batch callers can test for it with errors.Is and move on.
var ErrEmptyResult = errors.New("empty result")

// EmptyResultError describes why a lookup came back empty.
type EmptyResultError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Symbol, ErrEmptyResult, e.Err)
}

// Unwrap exposes both ErrEmptyResult and the underlying cause.
func (e *EmptyResultError) Unwrap() []error {
	return []error{ErrEmptyResult, e.Err}
}

// APIError represents an error response from the Schwab API.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, msg)
}

// IsNotFound returns true if the error is a 404 Not Found.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if the error is a 401 Unauthorized.
// Callers typically refresh the session and try again.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsForbidden returns true if the error is a 403 Forbidden.
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// errorResponse covers the error shapes the API returns: a top-level
// message, or an errors array with detail strings.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Errors  []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// CheckResponse checks the API response for errors.
// If the status code is outside 2xx, it reads the body and returns an
// *APIError. Otherwise, returns nil.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return apiErr
	}
	apiErr.Body = string(body)

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return apiErr
	}

	switch {
	case errResp.Message != "":
		apiErr.Message = errResp.Message
	case errResp.Error != "":
		apiErr.Message = errResp.Error
	case len(errResp.Errors) > 0:
		apiErr.Message = errResp.Errors[0].Detail
		if apiErr.Message == "" {
			apiErr.Message = errResp.Errors[0].Title
		}
	}

	return apiErr
}

// DecodeJSON decodes a JSON response body into the given target.
func DecodeJSON(resp *http.Response, target any) error {
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
