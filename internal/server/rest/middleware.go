package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/logging"
	"github.com/dmitrijs2005/bioguard/internal/server/auth"
)

var tracer = otel.Tracer("rest")

const claimsKey = "claims"

// tokenFromRequest reads a bearer token from the Authorization header.
// Websocket upgrades may pass it as the token query parameter instead,
// since browsers cannot set headers on them.
func tokenFromRequest(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if strings.EqualFold(c.Request().Header.Get(echo.HeaderUpgrade), "websocket") {
		return c.QueryParam("token")
	}
	return ""
}

// RequireAuth validates the access token and stores its claims on the
// context. Missing or invalid tokens are rejected with 401.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authenticate(c, secret)
			if err != nil {
				return err
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// authenticate traces only the token check, so long-lived handlers such as
// the log stream do not keep the span open.
func authenticate(c echo.Context, secret []byte) (*auth.Claims, error) {
	_, span := tracer.Start(c.Request().Context(), "Auth.RequireAuth")
	defer span.End()

	token := tokenFromRequest(c)
	if token == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "No token")
	}

	claims, err := auth.ParseToken(token, secret)
	if err != nil {
		span.RecordError(errors.Wrap(err, "RequireAuth: auth.ParseToken failed"))
		return nil, errors.Wrap(err, "RequireAuth")
	}

	span.SetAttributes(attribute.String("user.id", claims.UserID), attribute.String("user.role", claims.Role))
	return claims, nil
}

// AdminOnly must run after RequireAuth.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := claimsFrom(c)
		if claims == nil || !claims.IsAdmin() {
			return common.ErrorForbidden
		}
		return next(c)
	}
}

func claimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

func userIDFrom(c echo.Context) string {
	if claims := claimsFrom(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// RequestLogger logs one line per request once the response is written.
func RequestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			logger.Info(req.Context(), "request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"duration", time.Since(start).String(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"user_id", userIDFrom(c),
			)
			return nil
		}
	}
}
