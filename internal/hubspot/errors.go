package hubspot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode    int
	Category      string
	Message       string
	CorrelationID string
	Body          string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Category != "" {
		return fmt.Sprintf("hubspot: %d %s: %s", e.StatusCode, e.Category, msg)
	}
	return fmt.Sprintf("hubspot: %d: %s", e.StatusCode, msg)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: string(body)}

	var payload struct {
		Status        string `json:"status"`
		Message       string `json:"message"`
		Category      string `json:"category"`
		CorrelationID string `json:"correlationId"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
		e.Category = payload.Category
		e.CorrelationID = payload.CorrelationID
	}
	return e
}
