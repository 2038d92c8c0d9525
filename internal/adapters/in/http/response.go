package http

import (
	"errors"
	"log/slog"
	"net/http"

	"shoecare/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: false, Message: message})
}

// statusFor maps an error class to its HTTP status.
func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation, errs.KindInvalidState:
		return http.StatusBadRequest
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// problem writes err as a failed envelope. Internal errors are logged and hidden.
func (s *Server) problem(c echo.Context, err error) error {
	kind := errs.Classify(err)
	status := statusFor(kind)
	if kind == errs.KindInternal {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Any("error", err))
		return fail(c, status, http.StatusText(status))
	}
	return fail(c, status, err.Error())
}

// ErrorHandler renders echo errors (unknown routes, bad parameters, panics) in the
// envelope shape.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := http.StatusText(status)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, isString := he.Message.(string); isString {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else {
			logger.ErrorContext(c.Request().Context(), "unhandled error", slog.Any("error", err))
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = fail(c, status, message)
	}
}
