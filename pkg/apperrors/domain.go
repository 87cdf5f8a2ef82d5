package apperrors

import (
	"net/http"
)

// Factories used to translate repository errors into API errors.

func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// --- Auth ---

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

var ErrInvalidEmail = New(
	CodeValidationFailed,
	"auth",
	"Please enter a valid email address",
	http.StatusBadRequest,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

var ErrUserNotVerified = New(
	CodeForbidden,
	"auth",
	"Please verify your email address",
	http.StatusForbidden,
)

// ErrTooManyAttempts is the user-facing rate limit error. The message is
// deliberately friendly: raw limiter errors leaking to the signup form was a
// recurring support issue.
var ErrTooManyAttempts = New(
	CodeRateLimited,
	"auth",
	"Too many attempts. Please wait a minute and try again.",
	http.StatusTooManyRequests,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

// --- Subscriptions & billing ---

var ErrSubscriptionRequired = New(
	CodeForbidden,
	"subscription",
	"An active subscription is required for this feature",
	http.StatusForbidden,
)

var ErrDashboardOnlyAccess = New(
	CodeForbidden,
	"subscription",
	"Your plan only includes dashboard access. Upgrade to unlock the full journal.",
	http.StatusForbidden,
)

var ErrSubscriptionCancelled = New(
	CodeInvalidOperation,
	"subscription",
	"Subscription is already cancelled",
	http.StatusBadRequest,
)

var ErrInvalidWebhookSignature = New(
	CodeUnauthorized,
	"billing",
	"Webhook signature verification failed",
	http.StatusBadRequest,
)

var ErrInvalidPaymentAmount = New(
	CodeConflict,
	"billing",
	"Invalid payment amount",
	http.StatusConflict,
)

// --- Affiliate program ---

var ErrApplicationPending = New(
	CodeConflict,
	"affiliate",
	"You already have a pending affiliate application",
	http.StatusConflict,
)

var ErrAlreadyAffiliate = New(
	CodeConflict,
	"affiliate",
	"You are already an approved affiliate",
	http.StatusConflict,
)

var ErrApplicationAlreadyReviewed = New(
	CodeInvalidStatus,
	"affiliate",
	"Application has already been reviewed",
	http.StatusConflict,
)

var ErrNotAnAffiliate = New(
	CodeForbidden,
	"affiliate",
	"Affiliate account required",
	http.StatusForbidden,
)

// --- Trades & imports ---

var ErrUnsupportedBroker = New(
	CodeValidationFailed,
	"trades",
	"Unsupported broker format",
	http.StatusBadRequest,
)

var ErrEmptyImport = New(
	CodeValidationFailed,
	"trades",
	"The uploaded file contains no trade rows",
	http.StatusBadRequest,
)
