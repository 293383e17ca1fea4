package middleware

// identity.go holds the user identification helpers shared across
// middleware files. Rate-limit keys want a string identity even for
// unauthenticated callers, so the helpers here never fail; they fall back
// to "anon" when no valid token was presented.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id as a string, or "anon"
// when the request carries no valid token. JWTAuth stores the id as uint64;
// anything else in the context slot is treated as unauthenticated.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if id, ok := v.(uint64); ok && id > 0 {
			return strconv.FormatUint(id, 10)
		}
	}
	return "anon"
}
