package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rsilva/real-control/internal/utils"
)

// UserIDKey is the echo context key under which JWTAuth stores the
// authenticated user's id as a uint64.
const UserIDKey = "user_id"

// JWTAuth returns an Echo middleware that gates protected routes behind a
// Bearer access token. The outcome distinguishes two failures:
//
//   - no Authorization header, or one without a Bearer scheme -> 401,
//     the caller never presented a credential;
//   - a presented token that fails signature or shape checks -> 403,
//     the credential exists but cannot be trusted.
//
// On success the token's subject is stored in the context under UserIDKey
// and the chain continues. Each request re-verifies its token; nothing is
// remembered between requests.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			uid, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid token"})
			}
			c.Set(UserIDKey, uid)
			return next(c)
		}
	}
}
