package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rsilva/real-control/internal/queue"
	"github.com/rsilva/real-control/internal/repository"
	queue_publisher "github.com/rsilva/real-control/internal/service"
)

// OrderHandler serves the /api/orders endpoints. Orders reference a client,
// and that client must belong to the same user; a clientId pointing at
// another user's client is answered as if the client did not exist.
type OrderHandler struct {
	Orders  *repository.OrderRepo
	Clients *repository.ClientRepo
}

func NewOrderHandler(orders *repository.OrderRepo, clients *repository.ClientRepo) *OrderHandler {
	return &OrderHandler{Orders: orders, Clients: clients}
}

type orderCreateReq struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Deadline string `json:"deadline"`
	Status   string `json:"status"`
	ClientID uint64 `json:"clientId"`
}

type orderUpdateReq struct {
	Product  *string `json:"product"`
	Quantity *int    `json:"quantity"`
	Deadline *string `json:"deadline"`
	Status   *string `json:"status"`
	ClientID *uint64 `json:"clientId"`
}

// Create handles POST /api/orders. Status defaults to PENDING.
func (h *OrderHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req orderCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Product = strings.TrimSpace(req.Product)
	if req.Product == "" || req.Quantity <= 0 || req.ClientID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product, quantity and clientId are required"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status != "" && !repository.ValidStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deadline"})
	}

	ctx := c.Request().Context()

	// The referenced client must exist for this owner before anything is
	// persisted.
	client, err := h.Clients.GetByIDAndOwner(ctx, req.ClientID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		log.Printf("order create: check client %d: %v", req.ClientID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	order, err := h.Orders.Create(ctx, ownerID, req.ClientID, req.Product, req.Quantity, deadline, status)
	if err != nil {
		log.Printf("order create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	// Notify the production pipeline. Broker trouble never fails the request.
	go func(o repository.Order, clientName string) {
		_ = queue_publisher.PublishOrderCreated(queue.OrderCreatedEvent{
			OrderID:    o.ID,
			UserID:     o.OwnerID,
			ClientID:   o.ClientID,
			ClientName: clientName,
			Product:    o.Product,
			Quantity:   o.Quantity,
			Status:     o.Status,
			CreatedAt:  o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}(*order, client.Name)

	return c.JSON(http.StatusCreated, echo.Map{"order": order})
}

// List handles GET /api/orders, newest first, each with its client embedded.
func (h *OrderHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Orders.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		log.Printf("order list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// GetByID handles GET /api/orders/:id.
func (h *OrderHandler) GetByID(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	order, err := h.Orders.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		log.Printf("order get %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// Update handles PUT /api/orders/:id with merge-patch semantics. When the
// patch moves the order to another client, that client's ownership is
// verified first.
func (h *OrderHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req orderUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	patch := repository.OrderPatch{Quantity: req.Quantity, ClientID: req.ClientID}
	if req.Product != nil {
		v := strings.TrimSpace(*req.Product)
		if v == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product cannot be empty"})
		}
		patch.Product = &v
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}
	if req.Status != nil {
		v := strings.ToUpper(strings.TrimSpace(*req.Status))
		if !repository.ValidStatus(v) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		patch.Status = &v
	}
	if req.Deadline != nil {
		t, err := parseDate(*req.Deadline)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deadline"})
		}
		patch.Deadline = t
	}

	ctx := c.Request().Context()

	if req.ClientID != nil {
		if _, err := h.Clients.GetByIDAndOwner(ctx, *req.ClientID, ownerID); err != nil {
			if errors.Is(err, repository.ErrClientNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
			}
			log.Printf("order update: check client %d: %v", *req.ClientID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
	}

	order, err := h.Orders.Update(ctx, id, ownerID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		log.Printf("order update %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// Delete handles DELETE /api/orders/:id.
func (h *OrderHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Orders.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		log.Printf("order delete %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.NoContent(http.StatusNoContent)
}
