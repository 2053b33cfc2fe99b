package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/openclock/attendance-service/internal/compliance"
	"github.com/openclock/attendance-service/internal/model"
	"github.com/openclock/attendance-service/internal/queue"
	"github.com/openclock/attendance-service/internal/refcache"
	"github.com/openclock/attendance-service/internal/repository"
)

// Ledger records check-in events and enforces the pairing state
// machine: opening and closing events of the same group must strictly
// alternate per user, and a temporary event can only live inside an
// ongoing shift. Every accepted event is evaluated against the active
// time rule before it is stored, so late/early-leave flags and the
// final status are fixed at write time.
type Ledger struct {
	checkIns CheckInStore
	types    ActionTypeStore
	rules    TimeRuleStore
	users    UserStore
	cache    *refcache.Cache
	locks    *keyedMutex
	loc      *time.Location
	now      func() time.Time

	// publish delivers the recorded event to the broker. Failures are
	// logged and swallowed: the check-in is already durable at that
	// point and must not be rolled back over a broker hiccup.
	publish func(ctx context.Context, ev queue.CheckInRecordedEvent) error
}

// NewLedger wires a Ledger over the given stores. loc is the company
// timezone used to resolve "today" and default check times.
func NewLedger(checkIns CheckInStore, types ActionTypeStore, rules TimeRuleStore, users UserStore, cache *refcache.Cache, loc *time.Location) *Ledger {
	return &Ledger{
		checkIns: checkIns,
		types:    types,
		rules:    rules,
		users:    users,
		cache:    cache,
		locks:    newKeyedMutex(),
		loc:      loc,
		now:      time.Now,
		publish:  queue.PublishCheckInRecorded,
	}
}

// CreateCheckInInput carries one check-in request. CheckTime nil
// means "now"; a non-nil CheckTime marks the event as a manual
// backfill and pairs it at its historical position.
type CreateCheckInInput struct {
	UserID       uint64
	ActionTypeID uint64
	CheckTime    *time.Time
	Note         *string
}

// CreateCheckIn validates, pairs, evaluates and stores one check-in
// event. It returns the stored row, or a ValidationError / pairing
// sentinel with nothing written.
func (l *Ledger) CreateCheckIn(ctx context.Context, in CreateCheckInInput) (model.CheckIn, error) {
	if in.ActionTypeID == 0 {
		return model.CheckIn{}, validationf("action_type_id is required")
	}
	at, err := l.actionType(ctx, in.ActionTypeID)
	if err != nil {
		return model.CheckIn{}, err
	}
	if !at.IsActive {
		return model.CheckIn{}, validationf("action type is deactivated")
	}
	if !at.Role.Valid() {
		return model.CheckIn{}, validationf("action type has no recognised pairing role")
	}

	checkTime := l.now().In(l.loc)
	isManual := false
	if in.CheckTime != nil {
		checkTime = in.CheckTime.In(l.loc)
		isManual = true
		if checkTime.After(l.now().In(l.loc)) {
			return model.CheckIn{}, validationf("check_time cannot be in the future")
		}
	}

	// One writer per (user, group): the existence checks below and the
	// write that follows must observe a stable picture.
	mu := l.locks.lockFor(in.UserID, at.Role.Group())
	mu.Lock()
	defer mu.Unlock()

	if at.Role.IsOpening() {
		return l.recordOpen(ctx, at, in, checkTime, isManual)
	}
	return l.recordClose(ctx, at, in, checkTime, isManual)
}

func (l *Ledger) recordOpen(ctx context.Context, at model.ActionType, in CreateCheckInInput, checkTime time.Time, isManual bool) (model.CheckIn, error) {
	open, err := l.checkIns.OpenExists(ctx, in.UserID, at.Role)
	if err != nil {
		return model.CheckIn{}, err
	}
	if open {
		return model.CheckIn{}, ErrAlreadyOpen
	}
	if at.Role == model.RoleEventStart {
		// Temporary events only exist inside a shift.
		shiftOpen, err := l.checkIns.OpenExists(ctx, in.UserID, model.RoleShiftStart)
		if err != nil {
			return model.CheckIn{}, err
		}
		if !shiftOpen {
			return model.CheckIn{}, ErrNoOpenShift
		}
	}

	rule, err := l.activeRule(ctx, at.ID)
	if err != nil {
		return model.CheckIn{}, err
	}
	res, err := compliance.Evaluate(at.Role, checkTime, rule, nil)
	if err != nil {
		return model.CheckIn{}, err
	}

	stored, err := l.checkIns.Insert(ctx, model.CheckIn{
		UserID:       in.UserID,
		ActionTypeID: at.ID,
		CheckTime:    checkTime,
		Status:       res.Status,
		Note:         in.Note,
		IsLate:       res.IsLate,
		IsManual:     isManual,
	})
	if err != nil {
		return model.CheckIn{}, err
	}
	l.announce(ctx, stored, at)
	return stored, nil
}

func (l *Ledger) recordClose(ctx context.Context, at model.ActionType, in CreateCheckInInput, checkTime time.Time, isManual bool) (model.CheckIn, error) {
	if at.Role == model.RoleShiftEnd {
		// A shift cannot end while a temporary event is still open.
		eventOpen, err := l.checkIns.OpenExists(ctx, in.UserID, model.RoleEventStart)
		if err != nil {
			return model.CheckIn{}, err
		}
		if eventOpen {
			return model.CheckIn{}, ErrEventStillOpen
		}
	}

	openRow, err := l.checkIns.LatestOpen(ctx, in.UserID, at.Role.Counterpart(), checkTime)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CheckIn{}, ErrNoOpenCounterpart
	}
	if err != nil {
		return model.CheckIn{}, err
	}

	// Shift ends are judged against their own type's rule; a
	// temporary-event end is judged against the rule of the type that
	// opened it, since the max-duration budget lives there.
	ruleTypeID := at.ID
	if at.Role == model.RoleEventEnd {
		ruleTypeID = openRow.ActionTypeID
	}
	rule, err := l.activeRule(ctx, ruleTypeID)
	if err != nil {
		return model.CheckIn{}, err
	}
	res, err := compliance.Evaluate(at.Role, checkTime, rule, &openRow.CheckTime)
	if err != nil {
		return model.CheckIn{}, err
	}

	stored, err := l.checkIns.CloseWith(ctx, model.CheckIn{
		UserID:          in.UserID,
		ActionTypeID:    at.ID,
		CheckTime:       checkTime,
		Status:          res.Status,
		DurationMinutes: res.DurationMinutes,
		Note:            in.Note,
		IsEarlyLeave:    res.IsEarlyLeave,
		IsManual:        isManual,
	}, openRow.ID)
	if errors.Is(err, repository.ErrConflict) {
		// A concurrent request claimed the open row first.
		return model.CheckIn{}, ErrNoOpenCounterpart
	}
	if err != nil {
		return model.CheckIn{}, err
	}
	l.announce(ctx, stored, at)
	return stored, nil
}

// TodayCheckIns returns the user's events since midnight in the
// company timezone, newest first, plus any still-ongoing events from
// earlier days (an overnight shift belongs to today's view too).
func (l *Ledger) TodayCheckIns(ctx context.Context, userID uint64) ([]model.CheckIn, error) {
	now := l.now().In(l.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, l.loc)
	return l.checkIns.ListForUserSince(ctx, userID, dayStart)
}

// Override applies an admin annotation to an existing check-in. Only
// the compliance flags and the note can change; status, duration and
// pairing are immutable once written.
func (l *Ledger) Override(ctx context.Context, id uint64, p repository.AnnotationPatch) (model.CheckIn, error) {
	if err := l.checkIns.Annotate(ctx, id, p); err != nil {
		return model.CheckIn{}, err
	}
	return l.checkIns.GetByID(ctx, id)
}

// actionType resolves one action type through the cache.
func (l *Ledger) actionType(ctx context.Context, id uint64) (model.ActionType, error) {
	list, ok := l.cache.ActionTypes.Get()
	if !ok {
		var err error
		list, err = l.types.List(ctx)
		if err != nil {
			return model.ActionType{}, err
		}
		l.cache.ActionTypes.Populate(list)
	}
	for _, at := range list {
		if at.ID == id {
			return at, nil
		}
	}
	return model.ActionType{}, validationf("unknown action type")
}

// activeRule returns the active time rule for the given action type,
// or nil when none is configured.
func (l *Ledger) activeRule(ctx context.Context, actionTypeID uint64) (*model.TimeRule, error) {
	list, ok := l.cache.TimeRules.Get()
	if !ok {
		var err error
		list, err = l.rules.List(ctx)
		if err != nil {
			return nil, err
		}
		l.cache.TimeRules.Populate(list)
	}
	for i := range list {
		if list[i].ActionTypeID == actionTypeID && list[i].IsActive {
			return &list[i], nil
		}
	}
	return nil, nil
}

// announce publishes the recorded event. Broker failures never fail
// the request.
func (l *Ledger) announce(ctx context.Context, c model.CheckIn, at model.ActionType) {
	if l.publish == nil {
		return
	}
	username := ""
	if u, err := l.users.GetByID(ctx, c.UserID); err == nil {
		username = u.Username
	}
	ev := queue.CheckInRecordedEvent{
		CheckInID:       c.ID,
		UserID:          c.UserID,
		Username:        username,
		ActionTypeID:    at.ID,
		ActionName:      at.Name,
		ActionRole:      at.Role.String(),
		Status:          string(c.Status),
		CheckTime:       c.CheckTime.Format(time.RFC3339),
		DurationMinutes: c.DurationMinutes,
		IsLate:          c.IsLate,
		IsEarlyLeave:    c.IsEarlyLeave,
		IsManual:        c.IsManual,
		RecordedAt:      l.now().UTC().Format(time.RFC3339),
	}
	if c.PairCheckInID != nil {
		ev.PairCheckInID = *c.PairCheckInID
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.publish(pctx, ev); err != nil {
			log.Printf("ledger: publish check-in event failed: %v", err)
		}
	}()
}
