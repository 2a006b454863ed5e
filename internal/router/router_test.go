package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/rsilva/real-control/internal/config"
	"github.com/rsilva/real-control/internal/handler"
	"github.com/rsilva/real-control/internal/middleware"
	"github.com/rsilva/real-control/internal/repository"
)

// newTestServer wires the full route table over a mocked database, exactly
// as cmd/server does at startup minus Redis extras.
func newTestServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})

	cfg := config.Config{JWTSecret: "scenario-secret", AccessTTLMin: 60, RefreshTTLDays: 30, BcryptCost: 4}
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clients := repository.NewClientRepo(db)
	orders := repository.NewOrderRepo(db)
	budgets := repository.NewBudgetRepo(db)

	e := echo.New()
	gate := middleware.JWTAuth(cfg.JWTSecret)
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), gate)
	RegisterAPI(e,
		handler.NewClientHandler(clients),
		handler.NewOrderHandler(orders, clients),
		handler.NewBudgetHandler(budgets, clients),
		gate)
	return e, mock
}

func do(e *echo.Echo, method, target, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestHealth(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	if rec := do(e, http.MethodGet, "/api/clients", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/clients", "", "garbage"); rec.Code != http.StatusForbidden {
		t.Fatalf("bad token: status = %d, want 403", rec.Code)
	}
}

// TestRegisterThroughFirstOrder walks a fresh account through its first
// client and order: register, create a client, create an order that
// defaults to PENDING, then list orders and find the client embedded.
func TestRegisterThroughFirstOrder(t *testing.T) {
	t.Parallel()
	e, mock := newTestServer(t)

	now := time.Now()
	clientCols := []string{"id", "user_id", "name", "email", "phone", "created_at", "updated_at"}
	orderCols := []string{"id", "user_id", "client_id", "product", "quantity", "deadline",
		"status", "created_at", "updated_at", "name", "email", "phone"}

	// Register.
	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ana", "ana@x.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := do(e, http.MethodPost, "/api/auth/register",
		`{"name":"Ana","email":"ana@x.com","password":"secret123"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := parse(t, rec)["token"].(string)
	if token == "" {
		t.Fatalf("register returned no token")
	}

	// Create the client.
	mock.ExpectExec("INSERT INTO clients").
		WithArgs(uint64(9), "Loja X", nil, nil).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT (.+) FROM clients WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(5), uint64(9)).
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow(5, 9, "Loja X", nil, nil, now, now))

	rec = do(e, http.MethodPost, "/api/clients", `{"name":"Loja X"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client: status = %d: %s", rec.Code, rec.Body.String())
	}

	// Create the order; no status given, so it must come back PENDING.
	mock.ExpectQuery("SELECT (.+) FROM clients WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(5), uint64(9)).
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow(5, 9, "Loja X", nil, nil, now, now))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(uint64(9), uint64(5), "Banner", 2, nil, "PENDING").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT o.id, o.user_id, o.client_id").
		WithArgs(uint64(7), uint64(9)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(7, 9, 5, "Banner", 2, nil, "PENDING", now, now, "Loja X", nil, nil))

	rec = do(e, http.MethodPost, "/api/orders", `{"product":"Banner","quantity":2,"clientId":5}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: status = %d: %s", rec.Code, rec.Body.String())
	}
	order := parse(t, rec)["order"].(map[string]any)
	if order["status"] != "PENDING" {
		t.Fatalf("order status = %v, want PENDING", order["status"])
	}

	// List orders: exactly one, with the client embedded.
	mock.ExpectQuery("SELECT o.id, o.user_id, o.client_id").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(7, 9, 5, "Banner", 2, nil, "PENDING", now, now, "Loja X", nil, nil))

	rec = do(e, http.MethodGet, "/api/orders", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list orders: status = %d: %s", rec.Code, rec.Body.String())
	}
	orders := parse(t, rec)["orders"].([]any)
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	embedded := orders[0].(map[string]any)["client"].(map[string]any)
	if embedded["name"] != "Loja X" {
		t.Fatalf("embedded client = %v", embedded)
	}
}
