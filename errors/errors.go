package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinel causes wrapped by AppError values.
var (
	// ErrBodyConsumed is the cause when a body accessor is used after the
	// body stream has been drained.
	ErrBodyConsumed = stderrors.New("response body already consumed")
	// ErrBodyStreaming is the cause when a buffered accessor is used after
	// streaming reads have started.
	ErrBodyStreaming = stderrors.New("response body is being streamed")
	// ErrBodyBuffered is the cause when a streaming accessor is used after
	// the body has been buffered.
	ErrBodyBuffered = stderrors.New("response body already buffered")
	// ErrInvalidUTF8 is the cause when a body is not valid UTF-8.
	ErrInvalidUTF8 = stderrors.New("invalid utf-8")
	// ErrRequestSent is the cause when a request builder is sent twice.
	ErrRequestSent = stderrors.New("request already sent")
)

// AppError is the unified harness error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code.Kind(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code.Kind(), e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code, so that
// errors.Is(err, &AppError{Code: ErrCodeDecodeFailed}) matches any decode failure.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// --- Constructors ---

// BindFailed creates a new AppError for a listener that could not be bound.
func BindFailed(addr string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeBindFailed, Message: fmt.Sprintf("unable to bind %s", addr),
		Details: map[string]any{"addr": addr}, Cause: cause,
	}
}

// DispatchFailed creates a new AppError for a request that never produced a response.
func DispatchFailed(method, url string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDispatchFailed, Message: fmt.Sprintf("%s %s failed", method, url),
		Details: map[string]any{"method": method, "url": url}, Cause: cause,
	}
}

// InvalidRequest creates a new AppError for a request that could not be built.
func InvalidRequest(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidRequest, Message: reason,
	}
}

// BodyReadFailed creates a new AppError for a body that could not be read.
func BodyReadFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeBodyReadFailed, Message: "unable to read response body", Cause: cause,
	}
}

// DecodeFailed creates a new AppError for a body that is not the requested shape.
func DecodeFailed(shape string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("response body is not valid %s", shape),
		Details: map[string]any{"shape": shape}, Cause: cause,
	}
}

// InvalidConfig creates a new AppError for a configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
	}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

func IsBindError(err error) bool      { return CodeOf(err) == ErrCodeBindFailed }
func IsDispatchError(err error) bool  { return CodeOf(err) == ErrCodeDispatchFailed }
func IsInvalidRequest(err error) bool { return CodeOf(err) == ErrCodeInvalidRequest }
func IsBodyReadError(err error) bool  { return CodeOf(err) == ErrCodeBodyReadFailed }
func IsDecodeError(err error) bool    { return CodeOf(err) == ErrCodeDecodeFailed }
func IsConfigError(err error) bool    { return CodeOf(err) == ErrCodeInvalidConfig }
