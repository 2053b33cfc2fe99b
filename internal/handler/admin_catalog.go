package handler // handler package contains the admin catalog handlers

import (
	"net/http" // http provides status code constants
	"strings"  // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/openclock/attendance-service/internal/model"      // model defines the reference data types
	"github.com/openclock/attendance-service/internal/repository" // repository holds the patch types
	"github.com/openclock/attendance-service/internal/service"    // service implements the admin catalog
)

// AdminHandler exposes the reference-data catalog to administrators:
// action types, time rules and user management.
type AdminHandler struct {
	Catalog *service.Catalog
}

// NewAdminHandler constructs an AdminHandler and panics if the catalog is nil.
func NewAdminHandler(catalog *service.Catalog) *AdminHandler {
	if catalog == nil {
		panic("nil catalog passed to NewAdminHandler")
	}
	return &AdminHandler{Catalog: catalog}
}

// ----- action types -----

// ListActionTypes handles GET /v1/action-types. It is mounted for
// every authenticated user, not only admins: clients need the
// catalog to render their check-in buttons.
func (h *AdminHandler) ListActionTypes(c echo.Context) error {
	items, err := h.Catalog.ListActionTypes(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type createActionTypeReq struct {
	Name         string  `json:"name"`
	ButtonText   string  `json:"button_text"`
	ButtonColor  string  `json:"button_color"`
	DisplayOrder int     `json:"display_order"`
	ActionRole   int     `json:"action_role"`
	PairActionID *uint64 `json:"pair_action_id"`
}

// CreateActionType handles POST /v1/admin/action-types.
func (h *AdminHandler) CreateActionType(c echo.Context) error {
	var body createActionTypeReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	created, err := h.Catalog.CreateActionType(c.Request().Context(), service.CreateActionTypeInput{
		Name:         strings.TrimSpace(body.Name),
		ButtonText:   strings.TrimSpace(body.ButtonText),
		ButtonColor:  strings.TrimSpace(body.ButtonColor),
		DisplayOrder: body.DisplayOrder,
		Role:         model.ActionRole(body.ActionRole),
		PairActionID: body.PairActionID,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

type updateActionTypeReq struct {
	ButtonText   *string `json:"button_text"`
	ButtonColor  *string `json:"button_color"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// UpdateActionType handles PATCH /v1/admin/action-types/:id.
func (h *AdminHandler) UpdateActionType(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body updateActionTypeReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	updated, err := h.Catalog.UpdateActionType(c.Request().Context(), id, repository.ActionTypePatch{
		ButtonText:   body.ButtonText,
		ButtonColor:  body.ButtonColor,
		DisplayOrder: body.DisplayOrder,
		IsActive:     body.IsActive,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteActionType handles DELETE /v1/admin/action-types/:id. Types
// referenced by history answer 409; deactivate them instead.
func (h *AdminHandler) DeleteActionType(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Catalog.DeleteActionType(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- time rules -----

// ListTimeRules handles GET /v1/admin/time-rules.
func (h *AdminHandler) ListTimeRules(c echo.Context) error {
	items, err := h.Catalog.ListTimeRules(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type createTimeRuleReq struct {
	RuleName           string  `json:"rule_name"`
	ActionTypeID       uint64  `json:"action_type_id"`
	ExpectedStart      *string `json:"expected_start_time"`
	ExpectedEnd        *string `json:"expected_end_time"`
	MaxDurationMinutes *int    `json:"max_duration_minutes"`
	Timezone           string  `json:"timezone"`
}

// CreateTimeRule handles POST /v1/admin/time-rules.
func (h *AdminHandler) CreateTimeRule(c echo.Context) error {
	var body createTimeRuleReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	created, err := h.Catalog.CreateTimeRule(c.Request().Context(), service.CreateTimeRuleInput{
		RuleName:           strings.TrimSpace(body.RuleName),
		ActionTypeID:       body.ActionTypeID,
		ExpectedStart:      body.ExpectedStart,
		ExpectedEnd:        body.ExpectedEnd,
		MaxDurationMinutes: body.MaxDurationMinutes,
		Timezone:           strings.TrimSpace(body.Timezone),
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

type updateTimeRuleReq struct {
	RuleName           *string `json:"rule_name"`
	ExpectedStart      *string `json:"expected_start_time"`
	ExpectedEnd        *string `json:"expected_end_time"`
	MaxDurationMinutes *int    `json:"max_duration_minutes"`
	IsActive           *bool   `json:"is_active"`
}

// UpdateTimeRule handles PATCH /v1/admin/time-rules/:id.
func (h *AdminHandler) UpdateTimeRule(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body updateTimeRuleReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	updated, err := h.Catalog.UpdateTimeRule(c.Request().Context(), id, repository.TimeRulePatch{
		RuleName:           body.RuleName,
		ExpectedStart:      body.ExpectedStart,
		ExpectedEnd:        body.ExpectedEnd,
		MaxDurationMinutes: body.MaxDurationMinutes,
		IsActive:           body.IsActive,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteTimeRule handles DELETE /v1/admin/time-rules/:id.
func (h *AdminHandler) DeleteTimeRule(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Catalog.DeleteTimeRule(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- users -----

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	items, err := h.Catalog.ListUsers(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type setAdminReq struct {
	IsAdmin bool `json:"is_admin"`
}

// SetUserAdmin handles PATCH /v1/admin/users/:id/admin.
func (h *AdminHandler) SetUserAdmin(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body setAdminReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	updated, err := h.Catalog.SetUserAdmin(c.Request().Context(), id, body.IsAdmin)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteUser handles DELETE /v1/admin/users/:id. Attendance history
// keeps its rows; only the account is removed.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	callerID, err := getUserID(c)
	if err == nil && callerID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete your own account"})
	}
	if err := h.Catalog.DeleteUser(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
