package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireAdmin returns a middleware function that enforces that the
// authenticated user carries the admin flag.  The flag corresponds to
// the JWT's "is_admin" claim.  If the user is not an admin, the
// request is aborted with a 403 Forbidden response.  It assumes a
// previous middleware has extracted the claim into the context under
// the key "is_admin".
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Retrieve the admin flag from context.  It should have
			// been stored by JWTAuth middleware as a bool.  If not
			// present or of wrong type, treat as missing.
			v := c.Get("is_admin")
			isAdmin, ok := v.(bool)
			if !ok || !isAdmin {
				// If the flag is missing or false, return 403
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			// Otherwise call the next handler in the chain
			return next(c)
		}
	}
}
