package middleware

import (
	"log/slog"
	"net/http"

	"marketplace/internal/delivery/api/response"
	deliverycontext "marketplace/internal/delivery/context"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware renders every handler error as the common error envelope
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.Kind() != domainerrors.KindInternal {
		// err.Error() keeps the wrapped context, e.g. "email already registered: ..."
		_ = response.Error(c, appErr.HTTPCode(), string(appErr.Kind()), appErr.ErrorCode(), err.Error())

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}

		_ = response.Error(c, httpErr.Code, string(kindOfStatus(httpErr.Code)), "HTTP_ERROR", message)

		return
	}

	deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	_ = response.Error(c, http.StatusInternalServerError,
		string(domainerrors.KindInternal), domainerrors.ErrInternal.ErrorCode(), domainerrors.ErrInternal.Message())
}

func kindOfStatus(status int) domainerrors.Kind {
	switch status {
	case http.StatusUnauthorized:
		return domainerrors.KindUnauthenticated
	case http.StatusForbidden:
		return domainerrors.KindForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return domainerrors.KindNotFound
	case http.StatusConflict:
		return domainerrors.KindConflict
	default:
		return domainerrors.KindInvalidInput
	}
}
