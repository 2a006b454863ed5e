package handler // handler defines the HTTP handlers

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rsilva/real-control/internal/middleware"
)

// getUserID extracts the authenticated user's id stored by the JWT
// middleware. A missing or mistyped value means the route was wired without
// the gate, which handlers treat as an unauthorized request.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get(middleware.UserIDKey).(uint64); ok && id != 0 {
		return id, nil
	}
	return 0, errors.New("no authenticated user in context")
}

// dateLayouts are the accepted formats for deadline/date fields: RFC3339
// from API clients and plain dates from the frontend's date inputs.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate parses an optional date string. An empty string yields nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
