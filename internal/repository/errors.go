// Package repository contains data access logic separated from HTTP
// handlers. Sentinel errors defined here let handlers distinguish failure
// scenarios without inspecting driver error strings. A record that exists
// but belongs to another user is reported with the same not-found error as
// a record that does not exist at all, so handlers cannot accidentally leak
// which of the two happened.
package repository

import (
	"errors"
	"strings"
)

var (
	// ErrEmailExists is returned when registering a user whose email is taken.
	ErrEmailExists = errors.New("email already exists")

	// ErrClientEmailExists is returned when a client email collides with an
	// existing client record.
	ErrClientEmailExists = errors.New("client email already exists")

	// ErrClientNotFound covers both "no such client" and "not owned by caller".
	ErrClientNotFound = errors.New("client not found")

	// ErrOrderNotFound covers both "no such order" and "not owned by caller".
	ErrOrderNotFound = errors.New("order not found")

	// ErrBudgetNotFound covers both "no such budget" and "not owned by caller".
	ErrBudgetNotFound = errors.New("budget not found")
)

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062) on a unique index.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
