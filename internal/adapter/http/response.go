package http

import (
	"errors"
	"log/slog"
	"net/http"

	"creditos-backend/internal/domain/apperr"
	"creditos-backend/pkg/pagination"

	"github.com/labstack/echo/v4"
)

type Envelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

const (
	msgInvalidBody = "invalid body"
	msgInvalidID   = "invalid id"
	msgInternal    = "internal server error"
)

func respond(c echo.Context, code int, data any, msg string) error {
	return c.JSON(code, Envelope{Success: true, Data: data, Message: msg})
}

func respondPage(c echo.Context, items any, meta pagination.Meta) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Pagination: &meta})
}

func fail(c echo.Context, code int, msg string, details ...FieldError) error {
	return c.JSON(code, ErrorResponse{Error: msg, Details: details})
}

func failValidation(c echo.Context, err error) error {
	return fail(c, http.StatusUnprocessableEntity, "validation failed", ToFieldErrors(err)...)
}

// statusOf maps usecase errors to response codes; anything unknown is a 500.
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindInvalidState, apperr.KindMissingReason,
		apperr.KindExpired, apperr.KindAlreadyValidated:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func failErr(c echo.Context, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "err", err)
		return fail(c, code, msgInternal)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind == apperr.KindDelivery {
		// internals of the mail relay stay in the log
		slog.WarnContext(c.Request().Context(), "notification delivery failed", "path", c.Path(), "err", err)
		return fail(c, code, ae.Kind.String())
	}
	return fail(c, code, err.Error())
}

// HTTPErrorHandler renders echo errors (404 routes, 405, panics recovered by
// middleware) in the same envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		_ = fail(c, he.Code, msg)
		return
	}
	_ = failErr(c, err)
}
