// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrAccountDeactivated  = errors.New("account is deactivated")
	ErrPaymentRequired     = errors.New("subscription payment required")
	ErrVerificationPending = errors.New("account verification pending")
	ErrAlreadyLoggedIn     = errors.New("already logged in")
	ErrAlreadyPaid         = errors.New("subscription already paid")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
)

// Discriminator names the boolean flag added to an error body so clients can
// branch without parsing the message.
type Discriminator string

const (
	FlagPaymentRequired     Discriminator = "paymentRequired"
	FlagVerificationPending Discriminator = "verificationPending"
	FlagAlreadyLoggedIn     Discriminator = "alreadyLoggedIn"
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Flag       Discriminator
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int) *AppError {
	return &AppError{Err: err, Message: message, StatusCode: status}
}

func (e *AppError) WithFlag(flag Discriminator) *AppError {
	e.Flag = flag
	return e
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Not authorized"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "Forbidden"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		capitalize(resource)+" not found",
		http.StatusNotFound,
	)
}

func DuplicateError(message string) *AppError {
	return NewAppError(ErrDuplicateKey, message, http.StatusBadRequest)
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"Not authorized, token expired",
		http.StatusUnauthorized,
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"Not authorized, token failed",
		http.StatusUnauthorized,
	)
}

// StateError maps the account gate errors to their documented status codes.
// It returns nil for errors that are not account gate errors.
func StateError(err error) *AppError {
	switch {
	case errors.Is(err, ErrAlreadyLoggedIn):
		return NewAppError(
			err,
			"User is already logged in on another device",
			http.StatusForbidden,
		).WithFlag(FlagAlreadyLoggedIn)
	case errors.Is(err, ErrAccountDeactivated):
		return NewAppError(err, "Account is deactivated", http.StatusForbidden)
	case errors.Is(err, ErrPaymentRequired):
		return NewAppError(
			err,
			"Subscription payment required",
			http.StatusPaymentRequired,
		).WithFlag(FlagPaymentRequired)
	case errors.Is(err, ErrVerificationPending):
		return NewAppError(
			err,
			"Account verification pending",
			http.StatusForbidden,
		).WithFlag(FlagVerificationPending)
	}
	return nil
}

func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf(
				"%s must be one of [%s]", field, fe.Param()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf(
				"%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf(
				"%s must be at most %s", field, fe.Param()))
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}

	return strings.Join(msgs, "; ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// FromError maps a sentinel from this package to its documented status. Errors
// it does not recognise are returned unchanged and end up as a 500.
func FromError(err error) error {
	if err == nil || IsAppError(err) {
		return err
	}
	if appErr := StateError(err); appErr != nil {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(err, "Not found", http.StatusNotFound)
	case errors.Is(err, ErrDuplicateKey):
		return DuplicateError("Resource already exists")
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(err, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, ErrTokenExpired):
		return TokenExpiredError()
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("")
	case errors.Is(err, ErrAlreadyPaid):
		return NewAppError(err, "Subscription already paid", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidInput):
		return ValidationError("Invalid input")
	}
	return err
}
