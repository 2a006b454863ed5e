package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rsilva/real-control/internal/repository"
)

// BudgetHandler serves the /api/budgets endpoints. Budgets follow the same
// ownership rules as orders: the referenced client must belong to the
// requesting user.
type BudgetHandler struct {
	Budgets *repository.BudgetRepo
	Clients *repository.ClientRepo
}

func NewBudgetHandler(budgets *repository.BudgetRepo, clients *repository.ClientRepo) *BudgetHandler {
	return &BudgetHandler{Budgets: budgets, Clients: clients}
}

type budgetCreateReq struct {
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	Date        string  `json:"date"`
	ClientID    uint64  `json:"clientId"`
}

type budgetUpdateReq struct {
	Description *string  `json:"description"`
	Value       *float64 `json:"value"`
	Date        *string  `json:"date"`
	ClientID    *uint64  `json:"clientId"`
}

// Create handles POST /api/budgets.
func (h *BudgetHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req budgetCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" || req.Value <= 0 || req.Date == "" || req.ClientID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description, value, date and clientId are required"})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}

	ctx := c.Request().Context()

	if _, err := h.Clients.GetByIDAndOwner(ctx, req.ClientID, ownerID); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		log.Printf("budget create: check client %d: %v", req.ClientID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	budget, err := h.Budgets.Create(ctx, ownerID, req.ClientID, req.Description, req.Value, *date)
	if err != nil {
		log.Printf("budget create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"budget": budget})
}

// List handles GET /api/budgets, newest first, each with its client embedded.
func (h *BudgetHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	budgets, err := h.Budgets.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		log.Printf("budget list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"budgets": budgets})
}

// GetByID handles GET /api/budgets/:id.
func (h *BudgetHandler) GetByID(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	budget, err := h.Budgets.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "budget not found"})
		}
		log.Printf("budget get %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"budget": budget})
}

// Update handles PUT /api/budgets/:id with merge-patch semantics.
func (h *BudgetHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req budgetUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	patch := repository.BudgetPatch{Value: req.Value, ClientID: req.ClientID}
	if req.Description != nil {
		v := strings.TrimSpace(*req.Description)
		if v == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "description cannot be empty"})
		}
		patch.Description = &v
	}
	if req.Value != nil && *req.Value <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "value must be positive"})
	}
	if req.Date != nil {
		t, err := parseDate(*req.Date)
		if err != nil || t == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
		}
		patch.Date = t
	}

	ctx := c.Request().Context()

	if req.ClientID != nil {
		if _, err := h.Clients.GetByIDAndOwner(ctx, *req.ClientID, ownerID); err != nil {
			if errors.Is(err, repository.ErrClientNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
			}
			log.Printf("budget update: check client %d: %v", *req.ClientID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
	}

	budget, err := h.Budgets.Update(ctx, id, ownerID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "budget not found"})
		}
		log.Printf("budget update %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"budget": budget})
}

// Delete handles DELETE /api/budgets/:id.
func (h *BudgetHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Budgets.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "budget not found"})
		}
		log.Printf("budget delete %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.NoContent(http.StatusNoContent)
}
