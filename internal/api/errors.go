package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/service/auth"
	"github.com/phrazzld/scry-review/internal/service/review"
	"github.com/phrazzld/scry-review/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, review.ErrItemNotFound),
		errors.Is(err, review.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, review.ErrItemExists),
		errors.Is(err, review.ErrConcurrentUpdate),
		errors.Is(err, review.ErrSessionCompleted),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, review.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	// Stored state the engine could never have produced
	case errors.Is(err, domain.ErrPrecondition):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		verrs validator.ValidationErrors
		vErr  *domain.ValidationError
	)

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, review.ErrSessionNotFound),
		errors.Is(err, store.ErrSessionNotFound):
		return "Review session not found"

	case errors.Is(err, review.ErrSessionCompleted):
		return "Review session already completed"

	case errors.Is(err, review.ErrItemNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Review item not found"

	case errors.Is(err, review.ErrItemExists),
		errors.Is(err, store.ErrDuplicate):
		return "Review item already exists"

	case errors.Is(err, review.ErrConcurrentUpdate),
		errors.Is(err, store.ErrConflict):
		return "Review item was modified concurrently, please retry"

	case errors.As(err, &verrs):
		return SanitizeValidationError(verrs)

	// Domain validation messages are written for callers and carry no
	// internal detail.
	case errors.As(err, &vErr):
		if vErr.Field == "" {
			return fmt.Sprintf("Invalid request: %s", vErr.Message)
		}
		return fmt.Sprintf("Invalid %s: %s", vErr.Field, vErr.Message)

	case errors.Is(err, review.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	case errors.Is(err, domain.ErrPrecondition):
		return "Stored review state is inconsistent"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns struct validation failures into a message
// naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	field := toSnakeCase(fe.Field())
	if msg := getValidationTagMessage(fe.Tag(), fe.Param()); msg != "" {
		return fmt.Sprintf("Invalid %s: %s", field, msg)
	}
	return fmt.Sprintf("Invalid %s", field)
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "must be at least " + param
	case "max", "lte":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "uuid":
		return "must be a UUID"
	case "dive":
		return "invalid element"
	default:
		return "validation failed"
	}
}

// toSnakeCase converts a Go field name to its JSON spelling. Runs of
// capitals stay together, so ItemID becomes item_id.
func toSnakeCase(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
		prevLower = !upper
	}
	return b.String()
}

// HandleAPIError maps err to a status and safe message and writes the
// response. A non-empty fallback replaces the generic message of 5xx
// responses. Concurrent-update conflicts are logged at WARN.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if errors.Is(err, review.ErrConcurrentUpdate) || errors.Is(err, domain.ErrPrecondition) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
