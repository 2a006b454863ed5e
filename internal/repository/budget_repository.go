package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Budget mirrors the 'budgets' table plus the joined client reference.
// Value is the quoted price; Date is the day the budget was drawn up.
type Budget struct {
	ID          uint64    `json:"id"`
	OwnerID     uint64    `json:"-"`
	ClientID    uint64    `json:"clientId"`
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Client      ClientRef `json:"client"`
}

// BudgetPatch carries the fields of a partial update; nil keeps the stored
// value. A non-nil ClientID must be re-validated against the owner first.
type BudgetPatch struct {
	Description *string
	Value       *float64
	Date        *time.Time
	ClientID    *uint64
}

type BudgetRepo struct{ DB *sql.DB }

func NewBudgetRepo(db *sql.DB) *BudgetRepo { return &BudgetRepo{DB: db} }

const budgetSelect = `SELECT b.id, b.user_id, b.client_id, b.description, b.value, b.date, b.created_at, b.updated_at,
       c.name, c.email, c.phone
FROM budgets b
JOIN clients c ON c.id = b.client_id`

func scanBudget(row interface{ Scan(...any) error }) (*Budget, error) {
	var (
		b      Budget
		cEmail sql.NullString
		cPhone sql.NullString
	)
	if err := row.Scan(&b.ID, &b.OwnerID, &b.ClientID, &b.Description, &b.Value, &b.Date,
		&b.CreatedAt, &b.UpdatedAt, &b.Client.Name, &cEmail, &cPhone); err != nil {
		return nil, err
	}
	b.Client.ID = b.ClientID
	if cEmail.Valid {
		b.Client.Email = &cEmail.String
	}
	if cPhone.Valid {
		b.Client.Phone = &cPhone.String
	}
	return &b, nil
}

// Create inserts a budget for the owner and re-reads it with the client
// joined in. Client ownership must already be verified by the caller.
func (r *BudgetRepo) Create(ctx context.Context, ownerID, clientID uint64, description string, value float64, date time.Time) (*Budget, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO budgets (user_id, client_id, description, value, date) VALUES (?,?,?,?,?)",
		ownerID, clientID, description, value, date)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, uint64(id), ownerID)
}

// GetByIDAndOwner fetches a budget only if it belongs to the given owner.
func (r *BudgetRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Budget, error) {
	row := r.DB.QueryRowContext(ctx, budgetSelect+" WHERE b.id = ? AND b.user_id = ?", id, ownerID)
	b, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListByOwner returns all of a user's budgets, newest first, each with its
// client embedded.
func (r *BudgetRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*Budget, error) {
	rows, err := r.DB.QueryContext(ctx, budgetSelect+" WHERE b.user_id = ? ORDER BY b.created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a merge patch in a single owner-scoped UPDATE and returns
// the fresh row. Zero affected rows means not found for this owner.
func (r *BudgetRepo) Update(ctx context.Context, id, ownerID uint64, p BudgetPatch) (*Budget, error) {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Value != nil {
		sets = append(sets, "value = ?")
		args = append(args, *p.Value)
	}
	if p.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *p.Date)
	}
	if p.ClientID != nil {
		sets = append(sets, "client_id = ?")
		args = append(args, *p.ClientID)
	}
	args = append(args, id, ownerID)

	q := "UPDATE budgets SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrBudgetNotFound
	}
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// DeleteByIDAndOwner removes a budget in one owner-scoped statement.
func (r *BudgetRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBudgetNotFound
	}
	return nil
}
