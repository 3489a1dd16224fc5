package middleware

// identity.go holds typed accessors for the claims JWTAuth stores in
// the Echo context.  Handlers use these instead of repeating type
// assertions.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// CurrentUserID returns the authenticated user's ID, or 0 when the
// request carries no valid token.
func CurrentUserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}

// CurrentEmail returns the authenticated user's email, or "".
func CurrentEmail(c echo.Context) string {
	v, _ := c.Get("email").(string)
	return v
}

// CurrentRole returns the authenticated user's role, or "".
func CurrentRole(c echo.Context) string {
	v, _ := c.Get("role").(string)
	return v
}

// identityKey renders the user's identity for rate-limit bucket keys.
// Unauthenticated requests share the "anon" bucket per IP.
func identityKey(c echo.Context) string {
	if id := CurrentUserID(c); id > 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
