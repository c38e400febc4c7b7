package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wompi-harness/internal/apperr"
	"wompi-harness/internal/dto"
	"wompi-harness/internal/identity"
)

const sessionKey = "session"

// RequireSession gates the checkout, payment and result routes behind an
// authenticated session.
func RequireSession(sessions *identity.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := sessions.Current()
			if sess == nil {
				return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
					Error:  "No autorizado. Por favor inicia sesión.",
					Code:   apperr.KindUnauthorized,
					Status: http.StatusUnauthorized,
				})
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// SessionFromContext returns the session stored by RequireSession, or the
// manager's current one for ungated routes.
func SessionFromContext(c echo.Context, sessions *identity.Manager) *identity.Session {
	if sess, ok := c.Get(sessionKey).(*identity.Session); ok {
		return sess
	}
	return sessions.Current()
}
