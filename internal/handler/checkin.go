package handler // handler package contains the attendance check-in handlers

import (
	"net/http" // http provides status code constants
	"strings"  // strings offers trimming utilities
	"time"     // time parses explicit check times

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/openclock/attendance-service/internal/repository" // repository holds the annotation patch type
	"github.com/openclock/attendance-service/internal/service"    // service implements the check-in ledger
)

// CheckInHandler exposes the check-in ledger over HTTP.
type CheckInHandler struct {
	Ledger *service.Ledger
}

// NewCheckInHandler constructs a CheckInHandler and panics if the ledger is nil.
func NewCheckInHandler(ledger *service.Ledger) *CheckInHandler {
	if ledger == nil {
		panic("nil ledger passed to NewCheckInHandler")
	}
	return &CheckInHandler{Ledger: ledger}
}

// createCheckInReq is the body of POST /v1/check-ins. CheckTime is
// optional RFC 3339; when present the event is recorded as a manual
// backfill at that moment.
type createCheckInReq struct {
	ActionTypeID uint64  `json:"action_type_id"`
	CheckTime    *string `json:"check_time"`
	Note         *string `json:"note"`
}

// Create handles POST /v1/check-ins and records one attendance event
// for the authenticated user.
func (h *CheckInHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createCheckInReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	in := service.CreateCheckInInput{
		UserID:       userID,
		ActionTypeID: body.ActionTypeID,
		Note:         body.Note,
	}
	if body.CheckTime != nil && strings.TrimSpace(*body.CheckTime) != "" {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.CheckTime))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_time must be RFC 3339"})
		}
		in.CheckTime = &t
	}

	stored, err := h.Ledger.CreateCheckIn(c.Request().Context(), in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, stored)
}

// CreateManual handles POST /v1/check-ins/manual. It is the same
// recording path as Create except that check_time is mandatory: the
// endpoint exists for backfilling a forgotten punch at its historical
// moment.
func (h *CheckInHandler) CreateManual(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createCheckInReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.CheckTime == nil || strings.TrimSpace(*body.CheckTime) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_time is required"})
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.CheckTime))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_time must be RFC 3339"})
	}

	stored, err := h.Ledger.CreateCheckIn(c.Request().Context(), service.CreateCheckInInput{
		UserID:       userID,
		ActionTypeID: body.ActionTypeID,
		CheckTime:    &t,
		Note:         body.Note,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, stored)
}

// Today handles GET /v1/check-ins/today and returns the caller's
// events for the current company-timezone day, newest first,
// including still-ongoing events opened on earlier days.
func (h *CheckInHandler) Today(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Ledger.TodayCheckIns(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// overrideReq is the body of PATCH /v1/check-ins/:id. Only the
// compliance flags and the note can be overridden.
type overrideReq struct {
	IsLate       *bool   `json:"is_late"`
	IsEarlyLeave *bool   `json:"is_early_leave"`
	Note         *string `json:"note"`
}

// Override handles PATCH /v1/check-ins/:id (admin only) and applies
// an annotation override to an existing event.
func (h *CheckInHandler) Override(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body overrideReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	updated, err := h.Ledger.Override(c.Request().Context(), id, repository.AnnotationPatch{
		IsLate:       body.IsLate,
		IsEarlyLeave: body.IsEarlyLeave,
		Note:         body.Note,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
