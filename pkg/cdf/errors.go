package cdf

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// APIError is a non-2xx answer from CDF. The platform wraps its diagnostics
// in an {"error": {"code": ..., "message": ...}} envelope.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (self *APIError) Error() string {
	msg := fmt.Sprintf("cdf: %s (status %d)", self.Message, self.StatusCode)
	if self.RequestID != "" {
		msg += " [request " + self.RequestID + "]"
	}
	return msg
}

// IsNotFound reports whether err (or its cause) is a CDF not-found answer.
// The space ensurer branches on this to decide between "already exists" and
// "create it".
func IsNotFound(err error) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

func notFound(what string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Message: what + " not found"}
}

func parseAPIError(status int, requestID string, body []byte) error {
	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &APIError{StatusCode: status, Message: message, RequestID: requestID}
}
