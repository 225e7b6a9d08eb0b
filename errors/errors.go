package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified authkit error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, ErrSchemeNotFound) matches any scheme lookup failure.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
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

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Sentinels for errors.Is matching. Compare by code only; never mutate them.
var (
	ErrSchemeNotFound     = &AppError{Code: ErrCodeSchemeNotFound, Message: "scheme not found"}
	ErrProviderNotFound   = &AppError{Code: ErrCodeProviderNotFound, Message: "provider not found"}
	ErrNoSchemeSelected   = &AppError{Code: ErrCodeNoSchemeSelected, Message: "no authentication scheme selected"}
	ErrRedirectInProgress = &AppError{Code: ErrCodeRedirectInProgress, Message: "redirect in progress"}
	ErrGuardCheckFailed   = &AppError{Code: ErrCodeGuardCheckFailed, Message: "failed to verify guards"}
	ErrInvalidCredentials = &AppError{Code: ErrCodeInvalidCredentials, Message: "invalid credentials"}
	ErrNoRefreshToken     = &AppError{Code: ErrCodeNoRefreshToken, Message: "no refresh token stored"}
	ErrRefreshUnsupported = &AppError{Code: ErrCodeRefreshUnsupported, Message: "provider does not support refresh"}
	ErrStorage            = &AppError{Code: ErrCodeStorage, Message: "storage failure"}
	ErrInvalidInput       = &AppError{Code: ErrCodeInvalidInput, Message: "invalid input"}
	ErrExternalService    = &AppError{Code: ErrCodeExternalService, Message: "external service error"}
)

// --- Constructors ---

// SchemeNotFound reports a scheme name absent from configuration.
func SchemeNotFound(scheme string) *AppError {
	return &AppError{
		Code: ErrCodeSchemeNotFound, Message: fmt.Sprintf("scheme %s not found", scheme),
		Details: map[string]any{"scheme": scheme},
	}
}

// ProviderNotFound reports a provider id absent from a scheme.
func ProviderNotFound(provider, scheme string) *AppError {
	return &AppError{
		Code: ErrCodeProviderNotFound, Message: fmt.Sprintf("provider %s not found in scheme %s", provider, scheme),
		Details: map[string]any{"provider": provider, "scheme": scheme},
	}
}

// NoSchemeSelected reports an operation that requires a current scheme.
func NoSchemeSelected() *AppError {
	return &AppError{Code: ErrCodeNoSchemeSelected, Message: "no authentication scheme selected"}
}

// RedirectInProgress reports that the user agent was sent to an authorization URL.
func RedirectInProgress(provider, url string) *AppError {
	return &AppError{
		Code: ErrCodeRedirectInProgress, Message: "redirect in progress",
		Details: map[string]any{"provider": provider, "url": url},
	}
}

// GuardCheckFailed wraps an error raised by a guard during evaluation.
func GuardCheckFailed(guard string, index int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeGuardCheckFailed, Message: fmt.Sprintf("failed to verify guards: %v", cause),
		Details: map[string]any{"guard": guard, "index": index}, Cause: cause,
	}
}

// InvalidCredentials reports missing or rejected credentials.
func InvalidCredentials(reason string) *AppError {
	if reason == "" {
		reason = "invalid credentials"
	}
	return &AppError{Code: ErrCodeInvalidCredentials, Message: reason}
}

// NoRefreshToken reports that no refresh token is stored under key.
func NoRefreshToken(key string) *AppError {
	return &AppError{
		Code: ErrCodeNoRefreshToken, Message: "no refresh token stored",
		Details: map[string]any{"key": key},
	}
}

// RefreshUnsupported reports a provider without refresh capability.
func RefreshUnsupported(provider string) *AppError {
	return &AppError{
		Code: ErrCodeRefreshUnsupported, Message: fmt.Sprintf("provider %s does not support token refresh", provider),
		Details: map[string]any{"provider": provider},
	}
}

// Storage wraps a storage strategy failure.
func Storage(op string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("storage %s failed", op),
		Retryable: true, Details: map[string]any{"operation": op}, Cause: cause,
	}
}

// InvalidInput reports an invalid field.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason), Details: details,
	}
}

// Validation creates an INVALID_INPUT error with a preformatted message.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// ExternalServiceError reports an unexpected response from an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("the %s service returned an error", service),
		Retryable: true, Details: map[string]any{"service": service}, Cause: cause,
	}
}

// Internal creates an AppError for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "an unexpected error occurred", Cause: cause}
}

// --- Helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Wrap converts any error into an AppError, passing AppErrors through.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }
