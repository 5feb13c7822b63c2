package tdapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError represents a non-success response from the API.
type APIError struct {
	StatusCode int
	Message    string
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
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsForbidden returns true if the error is a 403 Forbidden.
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CheckResponse returns an *APIError for any status other than 200 OK.
// The market data endpoints only answer 200 on success, so anything else,
// including other 2xx codes, aborts the caller.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		apiErr.Message = string(body)
		return apiErr
	}

	if errResp.Error != "" {
		apiErr.Message = errResp.Error
	} else if errResp.Message != "" {
		apiErr.Message = errResp.Message
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
