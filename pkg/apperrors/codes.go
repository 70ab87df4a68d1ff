package apperrors

// Error codes - organized by domain

// Authentication errors (AUTH_*)
const (
	ErrCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "AUTH_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "AUTH_TOKEN_INVALID"
	ErrCodeUnauthorized       = "AUTH_UNAUTHORIZED"
)

// Validation errors (VALIDATION_*)
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeMissingField     = "VALIDATION_MISSING_FIELD"
	ErrCodeInvalidInput     = "VALIDATION_INVALID_INPUT"
	ErrCodeTemplateLimit    = "VALIDATION_TEMPLATE_LIMIT_REACHED"
)

// Resource errors (RESOURCE_*)
const (
	ErrCodeUserNotFound       = "RESOURCE_USER_NOT_FOUND"
	ErrCodeTemplateNotFound   = "RESOURCE_TEMPLATE_NOT_FOUND"
	ErrCodeConnectionNotFound = "RESOURCE_CONNECTION_NOT_FOUND"
	ErrCodeResourceExists     = "RESOURCE_ALREADY_EXISTS"
)

// Internal errors (INTERNAL_*)
const (
	ErrCodeStoreTransient  = "INTERNAL_STORE_TRANSIENT"
	ErrCodeDatabaseError   = "INTERNAL_DATABASE_ERROR"
	ErrCodeUnexpectedError = "INTERNAL_UNEXPECTED_ERROR"
)

// External service errors (EXTERNAL_*)
const (
	ErrCodeOAuthExchangeFailed = "EXTERNAL_OAUTH_EXCHANGE_FAILED"
	ErrCodeNoRefreshToken      = "EXTERNAL_OAUTH_NO_REFRESH_TOKEN"
	ErrCodeTokenRefreshFailed  = "EXTERNAL_OAUTH_REFRESH_FAILED"
	ErrCodeMailSendFailed      = "EXTERNAL_MAIL_SEND_FAILED"
	ErrCodeUserInfoFailed      = "EXTERNAL_USERINFO_FAILED"
)
