package domain

import (
	"errors"
	"fmt"
)

// ErrInternal is the catch-all for failures that fit no other category.
var ErrInternal = errors.New("internal error")

// ConfigError reports a missing or malformed configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// TransportError reports a network-level failure talking to an upstream.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("http request error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SerializationError reports a JSON encode/decode failure.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("json serialization/deserialization error: %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// UpstreamError reports a failed or empty response from the generation API.
// Status is zero when the failure was not an HTTP status.
type UpstreamError struct {
	Status  int
	Body    string
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation API error: request failed with status %d: %s", e.Status, e.Body)
	}
	return "generation API error: " + e.Message
}

// NotificationError reports a non-success response from the notification service.
type NotificationError struct {
	Status int
	Body   string
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification error: request failed with status %d: %s", e.Status, e.Body)
}

// ParseError reports generated text that violates the problem/solution contract.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "failed to parse content: " + e.Reason
}
