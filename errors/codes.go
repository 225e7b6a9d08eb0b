package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration and lookup errors. These indicate caller misuse and are
// never retryable.
const (
	// ErrCodeSchemeNotFound indicates a scheme name absent from configuration.
	ErrCodeSchemeNotFound ErrorCode = "SCHEME_NOT_FOUND"
	// ErrCodeProviderNotFound indicates a provider id absent from the resolved scheme.
	ErrCodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	// ErrCodeNoSchemeSelected indicates an operation that needs a current scheme ran without one.
	ErrCodeNoSchemeSelected ErrorCode = "NO_SCHEME_SELECTED"
	// ErrCodeInvalidInput indicates invalid configuration or parameters.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Flow errors
const (
	// ErrCodeRedirectInProgress marks the redirect leg of an authorization-code flow.
	ErrCodeRedirectInProgress ErrorCode = "REDIRECT_IN_PROGRESS"
	// ErrCodeGuardCheckFailed indicates a guard raised an error while evaluating.
	ErrCodeGuardCheckFailed ErrorCode = "GUARD_CHECK_FAILED"
	// ErrCodeInvalidCredentials indicates missing or rejected credentials.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrCodeNoRefreshToken indicates no refresh token is stored for the current scheme.
	ErrCodeNoRefreshToken ErrorCode = "NO_REFRESH_TOKEN"
	// ErrCodeRefreshUnsupported indicates the provider cannot refresh tokens.
	ErrCodeRefreshUnsupported ErrorCode = "REFRESH_UNSUPPORTED"
)

// Infrastructure errors
const (
	// ErrCodeStorage indicates a storage strategy failure.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeStorage:         true,
	ErrCodeExternalService: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
