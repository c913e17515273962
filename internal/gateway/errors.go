package gateway

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/braindrive/bdkeys/api"
)

// APIError is a non-2xx response from the backend with the most useful
// human-readable text already extracted from the body.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

// extractDetail pulls a displayable message out of an error response body.
// Preference order: structured detail field, then message field, then the
// raw body, then a generic fallback.
func extractDetail(body []byte) string {
	var er api.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		if len(er.Detail) > 0 {
			// detail is usually a string, but FastAPI validation errors
			// send structured values; stringify those as-is.
			var s string
			if err := json.Unmarshal(er.Detail, &s); err == nil {
				if s != "" {
					return s
				}
			} else {
				return string(er.Detail)
			}
		}
		if er.Message != "" {
			return er.Message
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "unknown error"
}

// HumanMessage flattens any gateway failure into displayable text.
func HumanMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown error"
}
