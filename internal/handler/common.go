package handler // handler defines http handlers

import (
	"database/sql" // sql is imported for sentinel errors like sql.ErrNoRows
	"errors"       // errors provides sentinel checks used in error mapping
	"net/http"     // http provides status code constants
	"strconv"      // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/openclock/attendance-service/internal/repository" // repository holds data access sentinels
	"github.com/openclock/attendance-service/internal/service"    // service holds the typed domain errors
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		// JWT numeric claims are decoded as float64.
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the JWT middleware stored a true is_admin
// claim in the context.
func isAdmin(c echo.Context) bool {
	v, ok := c.Get("is_admin").(bool)
	return ok && v
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// writeServiceError maps the typed service and repository errors onto
// HTTP responses: validation failures are 400, pairing and uniqueness
// conflicts 409, unknown ids 404, anything else 500 with a generic
// message.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case service.AsValidation(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case service.IsPairing(err):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
