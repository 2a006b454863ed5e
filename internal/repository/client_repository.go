// This file defines the Client model and its repository. A client is a
// customer of the print shop; orders and budgets reference one. Every query
// that touches a specific client carries the owning user's id in the WHERE
// clause together with the client id, so a record owned by someone else is
// indistinguishable from a missing one.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Client mirrors the 'clients' table. Email and Phone are optional.
type Client struct {
	ID        uint64    `json:"id"`
	OwnerID   uint64    `json:"-"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ClientPatch carries the fields of a partial update. A nil field keeps the
// stored value; a non-nil field overwrites it.
type ClientPatch struct {
	Name  *string
	Email *string
	Phone *string
}

type ClientRepo struct{ DB *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

const clientCols = "id, user_id, name, email, phone, created_at, updated_at"

func scanClient(row interface{ Scan(...any) error }) (*Client, error) {
	var (
		c     Client
		email sql.NullString
		phone sql.NullString
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &email, &phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if email.Valid {
		c.Email = &email.String
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	return &c, nil
}

// Create inserts a new client stamped with its owner and re-reads the row so
// the caller receives DB-generated timestamps. A duplicate email maps to
// ErrClientEmailExists.
func (r *ClientRepo) Create(ctx context.Context, ownerID uint64, name string, email, phone *string) (*Client, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clients (user_id, name, email, phone) VALUES (?,?,?,?)",
		ownerID, name, email, phone)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrClientEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, uint64(id), ownerID)
}

// GetByIDAndOwner fetches a client only if it belongs to the given owner.
func (r *ClientRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Client, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+clientCols+" FROM clients WHERE id = ? AND user_id = ?", id, ownerID)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByOwner returns all of a user's clients, newest first.
func (r *ClientRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*Client, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+clientCols+" FROM clients WHERE user_id = ? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a merge patch in a single owner-scoped UPDATE and returns
// the fresh row. Zero affected rows means the client does not exist for this
// owner; the updated_at bump guarantees a real match always reports a row.
func (r *ClientRepo) Update(ctx context.Context, id, ownerID uint64, p ClientPatch) (*Client, error) {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *p.Email)
	}
	if p.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *p.Phone)
	}
	args = append(args, id, ownerID)

	q := "UPDATE clients SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrClientEmailExists
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrClientNotFound
	}
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// DeleteByIDAndOwner removes a client together with its orders and budgets
// inside one transaction. Either the client and all dependents go, or
// nothing does. Returns ErrClientNotFound when the client does not exist
// for this owner.
func (r *ClientRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"DELETE FROM orders WHERE client_id = ? AND user_id = ?", id, ownerID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		"DELETE FROM budgets WHERE client_id = ? AND user_id = ?", id, ownerID); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx,
		"DELETE FROM clients WHERE id = ? AND user_id = ?", id, ownerID); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrClientNotFound
		return err
	}
	return tx.Commit()
}
