package service

import (
	"context"
	"time"

	"github.com/openclock/attendance-service/internal/model"
	"github.com/openclock/attendance-service/internal/repository"
)

// The store interfaces below are the slice of the repository layer
// the services depend on. The MySQL repositories satisfy them; tests
// substitute in-memory fakes. Not-found is reported as sql.ErrNoRows
// in either case.

// CheckInStore persists check-in events and answers the
// time-ordered pairing lookups.
type CheckInStore interface {
	Insert(ctx context.Context, c model.CheckIn) (model.CheckIn, error)
	GetByID(ctx context.Context, id uint64) (model.CheckIn, error)
	OpenExists(ctx context.Context, userID uint64, role model.ActionRole) (bool, error)
	LatestOpen(ctx context.Context, userID uint64, role model.ActionRole, before time.Time) (model.CheckIn, error)
	CloseWith(ctx context.Context, close model.CheckIn, openID uint64) (model.CheckIn, error)
	Annotate(ctx context.Context, id uint64, p repository.AnnotationPatch) error
	ListForUserSince(ctx context.Context, userID uint64, dayStart time.Time) ([]model.CheckIn, error)
	CountBetween(ctx context.Context, from, to time.Time, userID *uint64) (int, error)
	PageBetween(ctx context.Context, from, to time.Time, userID *uint64, limit, offset int) ([]model.CheckIn, error)
	ListBetween(ctx context.Context, from, to time.Time, userID *uint64) ([]model.CheckIn, error)
}

// ActionTypeStore persists the action type catalog.
type ActionTypeStore interface {
	List(ctx context.Context) ([]model.ActionType, error)
	GetByID(ctx context.Context, id uint64) (model.ActionType, error)
	Create(ctx context.Context, at model.ActionType) (model.ActionType, error)
	Update(ctx context.Context, id uint64, p repository.ActionTypePatch) error
	Delete(ctx context.Context, id uint64) error
}

// TimeRuleStore persists compliance rules.
type TimeRuleStore interface {
	List(ctx context.Context) ([]model.TimeRule, error)
	GetByID(ctx context.Context, id uint64) (model.TimeRule, error)
	Create(ctx context.Context, tr model.TimeRule) (model.TimeRule, error)
	Update(ctx context.Context, id uint64, p repository.TimeRulePatch) error
	Delete(ctx context.Context, id uint64) error
	HasOtherActive(ctx context.Context, actionTypeID, excludeID uint64) (bool, error)
}

// UserStore exposes the user records the core needs.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetAdmin(ctx context.Context, id uint64, isAdmin bool) error
	Delete(ctx context.Context, id uint64) error
}
