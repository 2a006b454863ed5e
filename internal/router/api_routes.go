package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rsilva/real-control/internal/handler"
)

// RegisterAPI registers the owner-scoped resource endpoints under /api.
// Every route runs through the JWT gate first; extras (rate limiter,
// response cache) are applied after it so their keys can see the user id.
func RegisterAPI(e *echo.Echo, clients *handler.ClientHandler, orders *handler.OrderHandler,
	budgets *handler.BudgetHandler, gate echo.MiddlewareFunc, extras ...echo.MiddlewareFunc) {

	mws := append([]echo.MiddlewareFunc{gate}, extras...)
	g := e.Group("/api", mws...)

	// ---- Clients ----
	g.POST("/clients", clients.Create)
	g.GET("/clients", clients.List)
	g.GET("/clients/:id", clients.GetByID)
	g.PUT("/clients/:id", clients.Update)
	g.DELETE("/clients/:id", clients.Delete)

	// ---- Orders ----
	g.POST("/orders", orders.Create)
	g.GET("/orders", orders.List)
	g.GET("/orders/:id", orders.GetByID)
	g.PUT("/orders/:id", orders.Update)
	g.DELETE("/orders/:id", orders.Delete)

	// ---- Budgets ----
	g.POST("/budgets", budgets.Create)
	g.GET("/budgets", budgets.List)
	g.GET("/budgets/:id", budgets.GetByID)
	g.PUT("/budgets/:id", budgets.Update)
	g.DELETE("/budgets/:id", budgets.Delete)
}
