package service

import (
	"context"
	"time"

	"github.com/openclock/attendance-service/internal/model"
	"github.com/openclock/attendance-service/internal/refcache"
)

// Query answers the read-side operations over the check-in history:
// paginated range listings, the monthly attendance summary and range
// statistics. It never writes.
type Query struct {
	checkIns CheckInStore
	types    ActionTypeStore
	cache    *refcache.Cache
	loc      *time.Location
}

// NewQuery wires a Query over the given stores. loc is the company
// timezone used to resolve day boundaries.
func NewQuery(checkIns CheckInStore, types ActionTypeStore, cache *refcache.Cache, loc *time.Location) *Query {
	return &Query{checkIns: checkIns, types: types, cache: cache, loc: loc}
}

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// PageInput selects one page of check-ins in [From, To]. UserID nil
// means all users. Page is 1-based; a zero Page or PageSize takes
// the default.
type PageInput struct {
	From     time.Time
	To       time.Time
	UserID   *uint64
	Page     int
	PageSize int
}

// Page is one page of results plus the pagination envelope.
type Page struct {
	Items      []model.CheckIn `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// Paginated returns one page of check-ins in the range, newest
// first. A page past the end comes back empty with the true totals.
func (q *Query) Paginated(ctx context.Context, in PageInput) (Page, error) {
	if in.From.IsZero() || in.To.IsZero() {
		return Page{}, validationf("from and to are required")
	}
	if in.To.Before(in.From) {
		return Page{}, validationf("to must not precede from")
	}
	page := in.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return Page{}, validationf("page must be positive")
	}
	size := in.PageSize
	if size == 0 {
		size = defaultPageSize
	}
	if size < 1 || size > maxPageSize {
		return Page{}, validationf("page_size must be between 1 and 200")
	}

	total, err := q.checkIns.CountBetween(ctx, in.From, in.To, in.UserID)
	if err != nil {
		return Page{}, err
	}
	items, err := q.checkIns.PageBetween(ctx, in.From, in.To, in.UserID, size, (page-1)*size)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}, nil
}

// MonthlySummary is one user's attendance roll-up for a month. Days
// are counted by distinct calendar dates carrying a shift start.
type MonthlySummary struct {
	UserID     uint64 `json:"user_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	WorkDays   int    `json:"work_days"`
	LateDays   int    `json:"late_days"`
	OnTimeDays int    `json:"on_time_days"`
}

// Monthly aggregates one user's shift starts for the given month. A
// day with at least one late shift start counts as a late day.
func (q *Query) Monthly(ctx context.Context, userID uint64, year, month int) (MonthlySummary, error) {
	if month < 1 || month > 12 {
		return MonthlySummary{}, validationf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2200 {
		return MonthlySummary{}, validationf("year is out of range")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, q.loc)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	list, err := q.checkIns.ListBetween(ctx, from, to, &userID)
	if err != nil {
		return MonthlySummary{}, err
	}
	roles, err := q.rolesByType(ctx)
	if err != nil {
		return MonthlySummary{}, err
	}

	days := map[string]bool{} // date -> any late start that day
	for _, c := range list {
		if roles[c.ActionTypeID] != model.RoleShiftStart {
			continue
		}
		day := c.CheckTime.In(q.loc).Format("2006-01-02")
		days[day] = days[day] || c.IsLate
	}

	s := MonthlySummary{UserID: userID, Year: year, Month: month, WorkDays: len(days)}
	for _, late := range days {
		if late {
			s.LateDays++
		}
	}
	s.OnTimeDays = s.WorkDays - s.LateDays
	return s, nil
}

// RangeStatistics is the roll-up over an arbitrary range, optionally
// per user.
type RangeStatistics struct {
	Total           int `json:"total"`
	Ongoing         int `json:"ongoing"`
	Completed       int `json:"completed"`
	Overtime        int `json:"overtime"`
	LateCount       int `json:"late_count"`
	EarlyLeaveCount int `json:"early_leave_count"`
	TotalMinutes    int `json:"total_minutes"`
}

// Statistics aggregates status and compliance counts over [from, to].
// TotalMinutes sums closing durations only, so a completed pair is
// not counted twice.
func (q *Query) Statistics(ctx context.Context, from, to time.Time, userID *uint64) (RangeStatistics, error) {
	if from.IsZero() || to.IsZero() {
		return RangeStatistics{}, validationf("from and to are required")
	}
	if to.Before(from) {
		return RangeStatistics{}, validationf("to must not precede from")
	}
	list, err := q.checkIns.ListBetween(ctx, from, to, userID)
	if err != nil {
		return RangeStatistics{}, err
	}
	roles, err := q.rolesByType(ctx)
	if err != nil {
		return RangeStatistics{}, err
	}

	var s RangeStatistics
	s.Total = len(list)
	for _, c := range list {
		switch c.Status {
		case model.StatusOngoing:
			s.Ongoing++
		case model.StatusCompleted:
			s.Completed++
		case model.StatusOvertime:
			s.Overtime++
		}
		if c.IsLate {
			s.LateCount++
		}
		if c.IsEarlyLeave {
			s.EarlyLeaveCount++
		}
		if c.DurationMinutes != nil && roles[c.ActionTypeID].IsClosing() {
			s.TotalMinutes += *c.DurationMinutes
		}
	}
	return s, nil
}

// rolesByType resolves the action type catalog through the cache
// into an id-to-role lookup.
func (q *Query) rolesByType(ctx context.Context) (map[uint64]model.ActionRole, error) {
	list, ok := q.cache.ActionTypes.Get()
	if !ok {
		var err error
		list, err = q.types.List(ctx)
		if err != nil {
			return nil, err
		}
		q.cache.ActionTypes.Populate(list)
	}
	roles := make(map[uint64]model.ActionRole, len(list))
	for _, at := range list {
		roles[at.ID] = at.Role
	}
	return roles, nil
}
