package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-scheduler/internal/api/shared"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
	"github.com/phrazzld/scry-scheduler/internal/forecast"
	"github.com/phrazzld/scry-scheduler/internal/service/scheduler"
	"github.com/phrazzld/scry-scheduler/internal/store"
)

// ParamError reports an invalid path or query parameter.
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %s %s", e.Param, e.Reason)
}

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var (
		paramErr      *ParamError
		validationErr validator.ValidationErrors
	)

	switch {
	case errors.Is(err, scheduler.ErrNoCardsDue):
		return http.StatusNoContent

	case errors.Is(err, scheduler.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.As(err, &paramErr),
		errors.As(err, &validationErr),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, scheduler.ErrInvalidRating),
		errors.Is(err, scheduler.ErrInvalidTimeSpent),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, fsrs.ErrInvalidProfile),
		errors.Is(err, fsrs.ErrInvalidRetention),
		errors.Is(err, forecast.ErrInvalidDistribution),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		paramErr      *ParamError
		validationErr validator.ValidationErrors
	)

	switch {
	case errors.As(err, &paramErr):
		return fmt.Sprintf("Invalid %s: %s", paramErr.Param, paramErr.Reason)

	case errors.As(err, &validationErr):
		return SanitizeValidationError(validationErr)

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.Is(err, scheduler.ErrNoCardsDue):
		return "No cards due"

	case errors.Is(err, scheduler.ErrCardNotFound),
		errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, scheduler.ErrDeckNotFound),
		errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, scheduler.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidRating):
		return "Invalid rating"

	case errors.Is(err, scheduler.ErrInvalidTimeSpent):
		return "Invalid time spent"

	case errors.Is(err, fsrs.ErrInvalidProfile):
		return "Invalid profile"

	case errors.Is(err, fsrs.ErrInvalidRetention):
		return "Invalid request retention"

	case errors.Is(err, forecast.ErrInvalidDistribution):
		return "Invalid rating distribution"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return "Request timed out"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError describes the first failed field without echoing
// the submitted value.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "oneof":
		return "invalid value"
	case "gt", "gte", "min":
		return "too small"
	case "lt", "lte", "max":
		return "too large"
	case "datetime":
		return "invalid date"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message of server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
