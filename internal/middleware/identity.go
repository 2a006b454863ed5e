package middleware

// identity.go holds the helper shared by the cache and rate-limit key
// builders. It renders the authenticated user id stored by JWTAuth as a
// string, or "anon" for unauthenticated traffic.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

func currentUserID(c echo.Context) string {
	if v := c.Get(UserIDKey); v != nil {
		if id, ok := v.(uint64); ok {
			return strconv.FormatUint(id, 10)
		}
	}
	return "anon"
}
