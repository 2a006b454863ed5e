package main

import (
	"database/sql"

	"github.com/rsilva/real-control/internal/config"
	"github.com/rsilva/real-control/internal/handler"
	"github.com/rsilva/real-control/internal/repository"
)

// deps wires repositories into handlers. The *sql.DB handle is injected
// here once at startup; nothing else in the program reaches for it.
type deps struct {
	auth    *handler.AuthHandler
	clients *handler.ClientHandler
	orders  *handler.OrderHandler
	budgets *handler.BudgetHandler
}

func buildDeps(cfg config.Config, db *sql.DB) deps {
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clients := repository.NewClientRepo(db)
	orders := repository.NewOrderRepo(db)
	budgets := repository.NewBudgetRepo(db)

	return deps{
		auth:    handler.NewAuthHandler(cfg, users, tokens),
		clients: handler.NewClientHandler(clients),
		orders:  handler.NewOrderHandler(orders, clients),
		budgets: handler.NewBudgetHandler(budgets, clients),
	}
}
