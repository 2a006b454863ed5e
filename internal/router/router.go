package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/rsilva/real-control/internal/handler"
)

// RegisterRoutes registers routes that require no authentication at all.
// Currently that is only the health probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", handler.Health)
}

// RegisterAuth registers the account endpoints. Registration, login,
// refresh and logout live under /api/auth without the gate: they are the
// only way to obtain an identity in the first place. /api/auth/me sits
// behind it.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	g.GET("/me", a.Me, gate)
}
