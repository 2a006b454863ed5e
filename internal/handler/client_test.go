package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/rsilva/real-control/internal/middleware"
	"github.com/rsilva/real-control/internal/repository"
)

func newClientEnv(t *testing.T) (sqlmock.Sqlmock, *ClientHandler) {
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
	return mock, NewClientHandler(repository.NewClientRepo(db))
}

// authedCtx builds an echo context carrying an authenticated user id and an
// optional :id path param.
func authedCtx(uid uint64, method, target, body, pathID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserIDKey, uid)
	if pathID != "" {
		c.SetParamNames("id")
		c.SetParamValues(pathID)
	}
	return c, rec
}

func mockClientRow(id, owner uint64, name string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "name", "email", "phone", "created_at", "updated_at"}).
		AddRow(id, owner, name, nil, "11999990000", now, now)
}

func TestClientCreate(t *testing.T) {
	t.Parallel()
	mock, h := newClientEnv(t)

	mock.ExpectExec("INSERT INTO clients").
		WithArgs(uint64(1), "Loja X", nil, "11999990000").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT (.+) FROM clients WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(5), uint64(1)).
		WillReturnRows(mockClientRow(5, 1, "Loja X"))

	c, rec := authedCtx(1, http.MethodPost, "/api/clients",
		`{"name":"Loja X","phone":"11999990000"}`, "")
	if err := h.Create(c); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	client := body["client"].(map[string]any)
	if client["name"] != "Loja X" {
		t.Fatalf("unexpected client %v", client)
	}
}

func TestClientCreate_NameRequired(t *testing.T) {
	t.Parallel()
	_, h := newClientEnv(t)

	c, rec := authedCtx(1, http.MethodPost, "/api/clients", `{"phone":"11999990000"}`, "")
	if err := h.Create(c); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestClientGetByID_NotOwned(t *testing.T) {
	t.Parallel()
	mock, h := newClientEnv(t)

	mock.ExpectQuery("SELECT (.+) FROM clients WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(5), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "email", "phone", "created_at", "updated_at"}))

	c, rec := authedCtx(2, http.MethodGet, "/api/clients/5", "", "5")
	if err := h.GetByID(c); err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "client not found" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestClientList(t *testing.T) {
	t.Parallel()
	mock, h := newClientEnv(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "email", "phone", "created_at", "updated_at"}).
		AddRow(6, 1, "Gráfica B", "b@example.com", nil, now, now).
		AddRow(5, 1, "Loja X", nil, nil, now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM clients WHERE user_id = \\? ORDER BY created_at DESC").
		WithArgs(uint64(1)).
		WillReturnRows(rows)

	c, rec := authedCtx(1, http.MethodGet, "/api/clients", "", "")
	if err := h.List(c); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	clients := body["clients"].([]any)
	if len(clients) != 2 {
		t.Fatalf("got %d clients, want 2", len(clients))
	}
	if clients[0].(map[string]any)["name"] != "Gráfica B" {
		t.Fatalf("expected newest first, got %v", clients[0])
	}
}

func TestClientUpdate_PartialPatch(t *testing.T) {
	t.Parallel()
	mock, h := newClientEnv(t)

	mock.ExpectExec("UPDATE clients SET updated_at = CURRENT_TIMESTAMP, name = \\?").
		WithArgs("Loja Y", uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM clients WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(5), uint64(1)).
		WillReturnRows(mockClientRow(5, 1, "Loja Y"))

	c, rec := authedCtx(1, http.MethodPut, "/api/clients/5", `{"name":"Loja Y"}`, "5")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestClientUpdate_EmptyName(t *testing.T) {
	t.Parallel()
	_, h := newClientEnv(t)

	c, rec := authedCtx(1, http.MethodPut, "/api/clients/5", `{"name":"  "}`, "5")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestClientDelete(t *testing.T) {
	t.Parallel()
	mock, h := newClientEnv(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM orders WHERE client_id = \\?").
		WithArgs(uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM budgets WHERE client_id = \\?").
		WithArgs(uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM clients WHERE id = \\?").
		WithArgs(uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := authedCtx(1, http.MethodDelete, "/api/clients/5", "", "5")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestClientDelete_InvalidID(t *testing.T) {
	t.Parallel()
	_, h := newClientEnv(t)

	c, rec := authedCtx(1, http.MethodDelete, "/api/clients/abc", "", "abc")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
