package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Order statuses as stored in the 'status' column. New orders default to
// StatusPending.
const (
	StatusPending      = "PENDING"
	StatusInProduction = "IN_PRODUCTION"
	StatusCompleted    = "COMPLETED"
	StatusCanceled     = "CANCELED"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProduction, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// ClientRef is the slice of client fields embedded in order and budget
// responses so the frontend can render the client without a second request.
type ClientRef struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// Order mirrors the 'orders' table plus the joined client reference.
type Order struct {
	ID        uint64     `json:"id"`
	OwnerID   uint64     `json:"-"`
	ClientID  uint64     `json:"clientId"`
	Product   string     `json:"product"`
	Quantity  int        `json:"quantity"`
	Deadline  *time.Time `json:"deadline"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Client    ClientRef  `json:"client"`
}

// OrderPatch carries the fields of a partial update; nil keeps the stored
// value. A non-nil ClientID must be re-validated against the owner by the
// caller before the patch is applied.
type OrderPatch struct {
	Product  *string
	Quantity *int
	Deadline *time.Time
	Status   *string
	ClientID *uint64
}

type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderSelect = `SELECT o.id, o.user_id, o.client_id, o.product, o.quantity, o.deadline, o.status, o.created_at, o.updated_at,
       c.name, c.email, c.phone
FROM orders o
JOIN clients c ON c.id = o.client_id`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var (
		o        Order
		deadline sql.NullTime
		cEmail   sql.NullString
		cPhone   sql.NullString
	)
	if err := row.Scan(&o.ID, &o.OwnerID, &o.ClientID, &o.Product, &o.Quantity, &deadline,
		&o.Status, &o.CreatedAt, &o.UpdatedAt, &o.Client.Name, &cEmail, &cPhone); err != nil {
		return nil, err
	}
	o.Client.ID = o.ClientID
	if deadline.Valid {
		o.Deadline = &deadline.Time
	}
	if cEmail.Valid {
		o.Client.Email = &cEmail.String
	}
	if cPhone.Valid {
		o.Client.Phone = &cPhone.String
	}
	return &o, nil
}

// Create inserts an order for the owner and re-reads it with the client
// joined in. The caller must have verified that clientID belongs to the
// owner; the stamped user_id still scopes every later access.
func (r *OrderRepo) Create(ctx context.Context, ownerID, clientID uint64, product string, quantity int, deadline *time.Time, status string) (*Order, error) {
	if status == "" {
		status = StatusPending
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO orders (user_id, client_id, product, quantity, deadline, status) VALUES (?,?,?,?,?,?)",
		ownerID, clientID, product, quantity, deadline, status)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, uint64(id), ownerID)
}

// GetByIDAndOwner fetches an order only if it belongs to the given owner.
func (r *OrderRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Order, error) {
	row := r.DB.QueryRowContext(ctx, orderSelect+" WHERE o.id = ? AND o.user_id = ?", id, ownerID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// ListByOwner returns all of a user's orders, newest first, each with its
// client embedded.
func (r *OrderRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*Order, error) {
	rows, err := r.DB.QueryContext(ctx, orderSelect+" WHERE o.user_id = ? ORDER BY o.created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a merge patch in a single owner-scoped UPDATE and returns
// the fresh row. Zero affected rows means not found for this owner.
func (r *OrderRepo) Update(ctx context.Context, id, ownerID uint64, p OrderPatch) (*Order, error) {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}
	if p.Product != nil {
		sets = append(sets, "product = ?")
		args = append(args, *p.Product)
	}
	if p.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *p.Quantity)
	}
	if p.Deadline != nil {
		sets = append(sets, "deadline = ?")
		args = append(args, *p.Deadline)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
	}
	if p.ClientID != nil {
		sets = append(sets, "client_id = ?")
		args = append(args, *p.ClientID)
	}
	args = append(args, id, ownerID)

	q := "UPDATE orders SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrOrderNotFound
	}
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// DeleteByIDAndOwner removes an order in one owner-scoped statement.
func (r *OrderRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM orders WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
