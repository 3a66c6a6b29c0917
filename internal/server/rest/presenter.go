package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/logging"
)

// statusClientClosedRequest is reported (and not logged as a failure) when
// the caller went away before the handler finished.
const statusClientClosedRequest = 499

type errorResponse struct {
	Message string `json:"message"`
}

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable maps service sentinels to responses. The first match wins.
var errorTable = []errorMapping{
	{common.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many login attempts, try again later"},
	{common.ErrRefreshTokenExpired, http.StatusUnauthorized, "Refresh token expired"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "Token expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "Invalid credentials"},
	{common.ErrorForbidden, http.StatusForbidden, "Forbidden"},
	{common.ErrorNotFound, http.StatusNotFound, "Not found"},
	{common.ErrorAlreadyExists, http.StatusConflict, "Already exists"},
	{common.ErrorPhotoMissing, http.StatusBadRequest, "Photo required"},
	{common.ErrorValidation, http.StatusBadRequest, "Invalid request"},
}

// statusFor resolves err to an HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	if errors.Is(err, context.Canceled) {
		return statusClientClosedRequest, "Request canceled"
	}

	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}

	return http.StatusInternalServerError, "Internal server error"
}

// newErrorHandler renders every handler error as {"message": ...}. Server
// side failures are logged; client cancellations and 4xx are not.
func newErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
		}

		if status == statusClientClosedRequest {
			c.Response().WriteHeader(status)
			return
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Message: message})
	}
}
