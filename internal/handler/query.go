package handler // handler package contains the history query handlers

import (
	"net/http" // http provides status code constants
	"strconv"  // strconv parses query parameters
	"strings"  // strings offers trimming utilities
	"time"     // time parses range bounds

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/openclock/attendance-service/internal/service" // service implements the query operations
)

// QueryHandler exposes the read side of the check-in history:
// paginated range listings, the monthly summary and range
// statistics. Non-admin callers are always restricted to their own
// rows; admins may pass user_id to inspect anyone, or omit it to see
// everyone.
type QueryHandler struct {
	Query *service.Query
	Loc   *time.Location
}

// NewQueryHandler constructs a QueryHandler and panics if the query service is nil.
func NewQueryHandler(q *service.Query, loc *time.Location) *QueryHandler {
	if q == nil {
		panic("nil query service passed to NewQueryHandler")
	}
	return &QueryHandler{Query: q, Loc: loc}
}

// scopeUser resolves the user filter for a history request from the
// caller's identity and the optional user_id parameter.
func (h *QueryHandler) scopeUser(c echo.Context) (*uint64, error) {
	callerID, err := getUserID(c)
	if err != nil {
		return nil, echo.ErrUnauthorized
	}
	if !isAdmin(c) {
		return &callerID, nil
	}
	raw := strings.TrimSpace(c.QueryParam("user_id"))
	if raw == "" {
		return nil, nil // admin, all users
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	return &id, nil
}

// parseRange reads the from/to query parameters. Plain dates are
// accepted alongside RFC 3339 timestamps; a date "to" bound is
// extended to the end of that day in the company timezone.
func (h *QueryHandler) parseRange(c echo.Context) (time.Time, time.Time, error) {
	from, err := h.parseBound(c.QueryParam("from"), false)
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid from")
	}
	to, err := h.parseBound(c.QueryParam("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid to")
	}
	return from, to, nil
}

func (h *QueryHandler) parseBound(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, h.Loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Second)
	}
	return d, nil
}

// List handles GET /v1/check-ins and returns one page of history.
func (h *QueryHandler) List(c echo.Context) error {
	userID, err := h.scopeUser(c)
	if err != nil {
		return err
	}
	from, to, err := h.parseRange(c)
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))

	result, err := h.Query.Paginated(c.Request().Context(), service.PageInput{
		From:     from,
		To:       to,
		UserID:   userID,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Monthly handles GET /v1/reports/monthly and returns the per-user
// attendance summary for one month. Non-admins get their own
// summary; admins must pass user_id.
func (h *QueryHandler) Monthly(c echo.Context) error {
	userID, err := h.scopeUser(c)
	if err != nil {
		return err
	}
	if userID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	year, _ := strconv.Atoi(c.QueryParam("year"))
	month, _ := strconv.Atoi(c.QueryParam("month"))

	summary, err := h.Query.Monthly(c.Request().Context(), *userID, year, month)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Statistics handles GET /v1/reports/statistics and returns the
// aggregate counters over a range.
func (h *QueryHandler) Statistics(c echo.Context) error {
	userID, err := h.scopeUser(c)
	if err != nil {
		return err
	}
	from, to, err := h.parseRange(c)
	if err != nil {
		return err
	}
	stats, err := h.Query.Statistics(c.Request().Context(), from, to, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
