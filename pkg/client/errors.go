package client

import (
	"encoding/json"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
)

// Fallback messages for server failures.
const (
	// MessageUnknown is used when the error envelope carries no message.
	MessageUnknown = "unknown error"

	// MessageServerError is used when the body is not an error envelope.
	MessageServerError = "server error"
)

// errorEnvelope is the server's error body. Extra fields are ignored.
type errorEnvelope struct {
	Code    *int    `json:"code"`
	Message *string `json:"message"`
}

// decodeServerError converts a non-2xx response body into a ServerFailure.
func decodeServerError(status int, body []byte) *apierr.Error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Code == nil {
		return apierr.Server(status, MessageServerError)
	}
	if env.Message == nil {
		return apierr.Server(status, MessageUnknown)
	}
	return apierr.Server(status, *env.Message)
}
