package utils

import (
	"time"

	"ms-restaurant/internal/apperr"
)

// APIResponse is the envelope for mutation acks and error replies. Plain
// reads return their payload directly.
type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError carries the error kind so clients can branch on it without
// parsing the message.
type APIError struct {
	Kind string `json:"kind"`
}

func SuccessResponse(message string, data any) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message string, kind apperr.Kind) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     &APIError{Kind: kind.String()},
		Timestamp: time.Now(),
	}
}
