// File: internal/common/context_keys.go
package common

const (
	// RequestIDHeader carries the request ID back to the caller
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the context key for the request ID
	RequestIDKey = "requestID"
	// LoggerKey is the context key for the request-scoped logger
	LoggerKey = "logger"
	// SessionUserKey is the context key for the signed-in user
	SessionUserKey = "sessionUser"
)
