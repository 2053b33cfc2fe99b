package service

import (
	"context"
	"time"

	"github.com/openclock/attendance-service/internal/compliance"
	"github.com/openclock/attendance-service/internal/model"
	"github.com/openclock/attendance-service/internal/refcache"
	"github.com/openclock/attendance-service/internal/repository"
)

// Catalog is the admin surface over the reference collections:
// action types, time rules and user records. Every successful
// mutation invalidates the matching cache slot before returning, so
// a read issued after the mutation is never served the pre-write
// snapshot.
type Catalog struct {
	types ActionTypeStore
	rules TimeRuleStore
	users UserStore
	cache *refcache.Cache
}

// NewCatalog wires a Catalog over the given stores.
func NewCatalog(types ActionTypeStore, rules TimeRuleStore, users UserStore, cache *refcache.Cache) *Catalog {
	return &Catalog{types: types, rules: rules, users: users, cache: cache}
}

// ListActionTypes returns the catalog of action types through the
// cache, ordered for display. Callers get their own copy; the cached
// snapshot is shared and must not be mutated through a return value.
func (c *Catalog) ListActionTypes(ctx context.Context) ([]model.ActionType, error) {
	list, ok := c.cache.ActionTypes.Get()
	if !ok {
		var err error
		list, err = c.types.List(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.ActionTypes.Populate(list)
	}
	out := make([]model.ActionType, len(list))
	copy(out, list)
	return out, nil
}

// CreateActionTypeInput carries a new action type definition.
type CreateActionTypeInput struct {
	Name         string
	ButtonText   string
	ButtonColor  string
	DisplayOrder int
	Role         model.ActionRole
	PairActionID *uint64
}

// CreateActionType validates and stores a new action type. The role
// is fixed forever at this point.
func (c *Catalog) CreateActionType(ctx context.Context, in CreateActionTypeInput) (model.ActionType, error) {
	if in.Name == "" {
		return model.ActionType{}, validationf("name is required")
	}
	if in.ButtonText == "" {
		return model.ActionType{}, validationf("button_text is required")
	}
	if !in.Role.Valid() {
		return model.ActionType{}, validationf("action_role must be between 1 and 4")
	}
	at, err := c.types.Create(ctx, model.ActionType{
		Name:         in.Name,
		ButtonText:   in.ButtonText,
		ButtonColor:  in.ButtonColor,
		DisplayOrder: in.DisplayOrder,
		Role:         in.Role,
		RequiresPair: true,
		PairActionID: in.PairActionID,
	})
	if err != nil {
		return model.ActionType{}, err
	}
	c.cache.ActionTypes.Invalidate()
	return at, nil
}

// UpdateActionType patches an action type's presentation fields or
// active flag. The role is immutable.
func (c *Catalog) UpdateActionType(ctx context.Context, id uint64, p repository.ActionTypePatch) (model.ActionType, error) {
	if p.ButtonText != nil && *p.ButtonText == "" {
		return model.ActionType{}, validationf("button_text cannot be empty")
	}
	if err := c.types.Update(ctx, id, p); err != nil {
		return model.ActionType{}, err
	}
	c.cache.ActionTypes.Invalidate()
	return c.types.GetByID(ctx, id)
}

// DeleteActionType removes an unused action type. Types referenced by
// check-ins or rules come back as repository.ErrConflict; deactivate
// them instead.
func (c *Catalog) DeleteActionType(ctx context.Context, id uint64) error {
	if err := c.types.Delete(ctx, id); err != nil {
		return err
	}
	c.cache.ActionTypes.Invalidate()
	return nil
}

// ListTimeRules returns every time rule through the cache. As with
// ListActionTypes, the returned slice is the caller's to keep.
func (c *Catalog) ListTimeRules(ctx context.Context) ([]model.TimeRule, error) {
	list, ok := c.cache.TimeRules.Get()
	if !ok {
		var err error
		list, err = c.rules.List(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.TimeRules.Populate(list)
	}
	out := make([]model.TimeRule, len(list))
	copy(out, list)
	return out, nil
}

// CreateTimeRuleInput carries a new compliance rule.
type CreateTimeRuleInput struct {
	RuleName           string
	ActionTypeID       uint64
	ExpectedStart      *string
	ExpectedEnd        *string
	MaxDurationMinutes *int
	Timezone           string
}

// CreateTimeRule validates the rule shape against the role of its
// action type and stores it. At most one active rule may exist per
// type; a second one is rejected with repository.ErrConflict.
func (c *Catalog) CreateTimeRule(ctx context.Context, in CreateTimeRuleInput) (model.TimeRule, error) {
	if in.RuleName == "" {
		return model.TimeRule{}, validationf("rule_name is required")
	}
	at, err := c.types.GetByID(ctx, in.ActionTypeID)
	if err != nil {
		return model.TimeRule{}, err
	}
	if err := validateRuleShape(at.Role, in.ExpectedStart, in.ExpectedEnd, in.MaxDurationMinutes); err != nil {
		return model.TimeRule{}, err
	}
	if in.Timezone != "" {
		if _, err := time.LoadLocation(in.Timezone); err != nil {
			return model.TimeRule{}, validationf("timezone is not a valid IANA zone name")
		}
	}
	busy, err := c.rules.HasOtherActive(ctx, in.ActionTypeID, 0)
	if err != nil {
		return model.TimeRule{}, err
	}
	if busy {
		return model.TimeRule{}, repository.ErrConflict
	}
	tr, err := c.rules.Create(ctx, model.TimeRule{
		RuleName:           in.RuleName,
		ActionTypeID:       in.ActionTypeID,
		ExpectedStart:      in.ExpectedStart,
		ExpectedEnd:        in.ExpectedEnd,
		MaxDurationMinutes: in.MaxDurationMinutes,
		Timezone:           in.Timezone,
	})
	if err != nil {
		return model.TimeRule{}, err
	}
	c.cache.TimeRules.Invalidate()
	return tr, nil
}

// UpdateTimeRule patches a time rule, re-validating the resulting
// shape and keeping the one-active-rule invariant.
func (c *Catalog) UpdateTimeRule(ctx context.Context, id uint64, p repository.TimeRulePatch) (model.TimeRule, error) {
	current, err := c.rules.GetByID(ctx, id)
	if err != nil {
		return model.TimeRule{}, err
	}
	at, err := c.types.GetByID(ctx, current.ActionTypeID)
	if err != nil {
		return model.TimeRule{}, err
	}

	start, end, maxDur := current.ExpectedStart, current.ExpectedEnd, current.MaxDurationMinutes
	if p.ExpectedStart != nil {
		start = p.ExpectedStart
	}
	if p.ExpectedEnd != nil {
		end = p.ExpectedEnd
	}
	if p.MaxDurationMinutes != nil {
		maxDur = p.MaxDurationMinutes
	}
	if err := validateRuleShape(at.Role, start, end, maxDur); err != nil {
		return model.TimeRule{}, err
	}

	if p.IsActive != nil && *p.IsActive && !current.IsActive {
		busy, err := c.rules.HasOtherActive(ctx, current.ActionTypeID, id)
		if err != nil {
			return model.TimeRule{}, err
		}
		if busy {
			return model.TimeRule{}, repository.ErrConflict
		}
	}

	if err := c.rules.Update(ctx, id, p); err != nil {
		return model.TimeRule{}, err
	}
	c.cache.TimeRules.Invalidate()
	return c.rules.GetByID(ctx, id)
}

// DeleteTimeRule removes a time rule.
func (c *Catalog) DeleteTimeRule(ctx context.Context, id uint64) error {
	if err := c.rules.Delete(ctx, id); err != nil {
		return err
	}
	c.cache.TimeRules.Invalidate()
	return nil
}

// validateRuleShape checks the rule fields a role is allowed to
// carry: shift roles a clock window, EventStart a positive duration
// budget, EventEnd nothing at all (it is judged against the opening
// type's rule).
func validateRuleShape(role model.ActionRole, start, end *string, maxDur *int) error {
	switch role {
	case model.RoleShiftStart:
		if start == nil {
			return validationf("a shift start rule requires expected_start_time")
		}
		if maxDur != nil {
			return validationf("a shift rule cannot carry max_duration_minutes")
		}
	case model.RoleShiftEnd:
		if start == nil || end == nil {
			return validationf("a shift end rule requires expected_start_time and expected_end_time")
		}
		if maxDur != nil {
			return validationf("a shift rule cannot carry max_duration_minutes")
		}
	case model.RoleEventStart:
		if maxDur == nil || *maxDur <= 0 {
			return validationf("an event rule requires a positive max_duration_minutes")
		}
		if start != nil || end != nil {
			return validationf("an event rule cannot carry a clock window")
		}
	case model.RoleEventEnd:
		return validationf("event end types take no rule; attach it to the event start type")
	default:
		return validationf("action type has no recognised pairing role")
	}
	if start != nil {
		if _, err := compliance.ParseClock(*start); err != nil {
			return validationf("expected_start_time must be HH:MM or HH:MM:SS")
		}
	}
	if end != nil {
		if _, err := compliance.ParseClock(*end); err != nil {
			return validationf("expected_end_time must be HH:MM or HH:MM:SS")
		}
	}
	return nil
}

// ListUsers returns every user through the cache with password
// hashes blanked.
func (c *Catalog) ListUsers(ctx context.Context) ([]model.User, error) {
	list, ok := c.cache.Users.Get()
	if !ok {
		var err error
		list, err = c.users.List(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Users.Populate(list)
	}
	out := make([]model.User, len(list))
	copy(out, list)
	for i := range out {
		out[i].PasswordHash = ""
	}
	return out, nil
}

// SetUserAdmin grants or revokes the admin flag.
func (c *Catalog) SetUserAdmin(ctx context.Context, id uint64, isAdmin bool) (model.User, error) {
	if err := c.users.SetAdmin(ctx, id, isAdmin); err != nil {
		return model.User{}, err
	}
	c.cache.Users.Invalidate()
	u, err := c.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// DeleteUser removes a user account.
func (c *Catalog) DeleteUser(ctx context.Context, id uint64) error {
	if err := c.users.Delete(ctx, id); err != nil {
		return err
	}
	c.cache.Users.Invalidate()
	return nil
}
