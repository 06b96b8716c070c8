// Package apperr holds the error types shared by the adapter servers.
// Callers match them with errors.As.
package apperr

import "fmt"

// ConfigError reports a missing or invalid configuration value.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// UpstreamError carries an error message the upstream service returned in
// an otherwise successful response.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string { return e.Message }

// NoDataError reports that an expected key was absent from a response.
type NoDataError struct {
	Message string
}

func (e *NoDataError) Error() string { return e.Message }

// RequestError wraps a transport-level failure talking to an upstream.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return "API request failed: " + e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

// NotFoundError reports a lookup that matched nothing.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError reports a missing or blank argument. Without a Message
// it reads "<field> is required".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Field + " is required"
	}
	return e.Message
}
