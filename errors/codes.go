package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Server lifecycle errors
const (
	// ErrCodeBindFailed indicates no local port could be acquired.
	ErrCodeBindFailed ErrorCode = "BIND_FAILED"
)

// Request errors
const (
	// ErrCodeDispatchFailed indicates the request could not be transmitted or
	// the connection failed before a response was received.
	ErrCodeDispatchFailed ErrorCode = "DISPATCH_FAILED"
	// ErrCodeInvalidRequest indicates the request could not be built.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Response body errors
const (
	// ErrCodeBodyReadFailed indicates the response body could not be read.
	ErrCodeBodyReadFailed ErrorCode = "BODY_READ_FAILED"
	// ErrCodeDecodeFailed indicates the body was read but could not be
	// interpreted as the requested shape.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates a configuration value failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Kind returns the short error-kind name used in messages.
func (c ErrorCode) Kind() string {
	switch c {
	case ErrCodeBindFailed:
		return "BindError"
	case ErrCodeDispatchFailed:
		return "DispatchError"
	case ErrCodeInvalidRequest:
		return "InvalidRequestError"
	case ErrCodeBodyReadFailed:
		return "BodyReadError"
	case ErrCodeDecodeFailed:
		return "DecodeError"
	case ErrCodeInvalidConfig:
		return "ConfigError"
	default:
		return "Error"
	}
}
