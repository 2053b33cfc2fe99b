package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclock/attendance-service/internal/model"
	"github.com/openclock/attendance-service/internal/refcache"
)

type queryFixture struct {
	query    *Query
	checkIns *fakeCheckInStore
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	types := newFakeActionTypeStore(
		model.ActionType{ID: 1, Name: "Clock In", Role: model.RoleShiftStart, IsActive: true},
		model.ActionType{ID: 2, Name: "Clock Out", Role: model.RoleShiftEnd, IsActive: true},
	)
	checkIns := newFakeCheckInStore(types)
	return &queryFixture{
		query:    NewQuery(checkIns, types, refcache.New(0), time.UTC),
		checkIns: checkIns,
	}
}

// seedDay inserts one shift start / shift end pair on the given day.
func (f *queryFixture) seedDay(t *testing.T, userID uint64, day time.Time, late bool) {
	t.Helper()
	dur := 480
	_, err := f.checkIns.Insert(context.Background(), model.CheckIn{
		UserID: userID, ActionTypeID: 1, CheckTime: day.Add(9 * time.Hour),
		Status: model.StatusCompleted, IsLate: late, DurationMinutes: &dur,
	})
	require.NoError(t, err)
	_, err = f.checkIns.Insert(context.Background(), model.CheckIn{
		UserID: userID, ActionTypeID: 2, CheckTime: day.Add(17 * time.Hour),
		Status: model.StatusCompleted, DurationMinutes: &dur,
	})
	require.NoError(t, err)
}

func TestPaginatedEnvelope(t *testing.T) {
	f := newQueryFixture(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 5; d++ {
		f.seedDay(t, 7, base.AddDate(0, 0, d), false) // 10 rows total
	}

	in := PageInput{From: base, To: base.AddDate(0, 0, 10), Page: 1, PageSize: 4}
	p, err := f.query.Paginated(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.Len(t, p.Items, 4)

	// Last page is a remainder; a page past the end is empty but
	// keeps the true totals.
	in.Page = 3
	p, err = f.query.Paginated(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, p.Items, 2)

	in.Page = 4
	p, err = f.query.Paginated(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.Equal(t, 10, p.Total)
	assert.Equal(t, 3, p.TotalPages)
}

func TestPaginatedPagesPartitionTheRange(t *testing.T) {
	f := newQueryFixture(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 7; d++ {
		f.seedDay(t, 7, base.AddDate(0, 0, d), false) // 14 rows
	}

	in := PageInput{From: base, To: base.AddDate(0, 0, 10), PageSize: 3}
	seen := map[uint64]bool{}
	for page := 1; ; page++ {
		in.Page = page
		p, err := f.query.Paginated(context.Background(), in)
		require.NoError(t, err)
		if len(p.Items) == 0 {
			break
		}
		for _, c := range p.Items {
			assert.False(t, seen[c.ID], "row %d appeared on two pages", c.ID)
			seen[c.ID] = true
		}
	}
	assert.Len(t, seen, 14, "walking all pages must cover every row exactly once")
}

func TestPaginatedOrderedNewestFirst(t *testing.T) {
	f := newQueryFixture(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 3; d++ {
		f.seedDay(t, 7, base.AddDate(0, 0, d), false)
	}

	p, err := f.query.Paginated(context.Background(), PageInput{From: base, To: base.AddDate(0, 0, 10)})
	require.NoError(t, err)
	for i := 1; i < len(p.Items); i++ {
		assert.False(t, p.Items[i-1].CheckTime.Before(p.Items[i].CheckTime), "descending check_time")
	}
}

func TestPaginatedValidation(t *testing.T) {
	f := newQueryFixture(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   PageInput
	}{
		{"missing range", PageInput{}},
		{"inverted range", PageInput{From: base, To: base.AddDate(0, 0, -1)}},
		{"negative page", PageInput{From: base, To: base.AddDate(0, 0, 1), Page: -1}},
		{"oversized page size", PageInput{From: base, To: base.AddDate(0, 0, 1), PageSize: 500}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.query.Paginated(context.Background(), tc.in)
			assert.True(t, AsValidation(err), "got %v", err)
		})
	}
}

func TestPaginatedFiltersByUser(t *testing.T) {
	f := newQueryFixture(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.seedDay(t, 7, base, false)
	f.seedDay(t, 8, base, false)

	uid := uint64(7)
	p, err := f.query.Paginated(context.Background(), PageInput{From: base, To: base.AddDate(0, 0, 1), UserID: &uid})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Total)
	for _, c := range p.Items {
		assert.Equal(t, uid, c.UserID)
	}
}

func TestMonthlySummary(t *testing.T) {
	f := newQueryFixture(t)
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	f.seedDay(t, 7, march.AddDate(0, 0, 1), false)
	f.seedDay(t, 7, march.AddDate(0, 0, 2), true)
	f.seedDay(t, 7, march.AddDate(0, 0, 3), false)
	// Another user's month does not leak in.
	f.seedDay(t, 8, march.AddDate(0, 0, 4), true)
	// A neighbouring month does not leak in.
	f.seedDay(t, 7, march.AddDate(0, 1, 0), true)

	s, err := f.query.Monthly(context.Background(), 7, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, s.WorkDays)
	assert.Equal(t, 1, s.LateDays)
	assert.Equal(t, 2, s.OnTimeDays)
}

func TestMonthlySummaryCountsDaysNotEvents(t *testing.T) {
	f := newQueryFixture(t)
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	// Two shift starts on one day (a split shift) still count once.
	_, err := f.checkIns.Insert(context.Background(), model.CheckIn{
		UserID: 7, ActionTypeID: 1, CheckTime: day.Add(8 * time.Hour), Status: model.StatusCompleted, IsLate: true,
	})
	require.NoError(t, err)
	_, err = f.checkIns.Insert(context.Background(), model.CheckIn{
		UserID: 7, ActionTypeID: 1, CheckTime: day.Add(14 * time.Hour), Status: model.StatusCompleted,
	})
	require.NoError(t, err)

	s, err := f.query.Monthly(context.Background(), 7, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, s.WorkDays)
	assert.Equal(t, 1, s.LateDays, "any late start marks the day late")
	assert.Equal(t, 0, s.OnTimeDays)
}

func TestMonthlySummaryValidation(t *testing.T) {
	f := newQueryFixture(t)
	_, err := f.query.Monthly(context.Background(), 7, 2026, 13)
	assert.True(t, AsValidation(err))
	_, err = f.query.Monthly(context.Background(), 7, 1800, 5)
	assert.True(t, AsValidation(err))
}

func TestStatistics(t *testing.T) {
	f := newQueryFixture(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.seedDay(t, 7, base, true) // one pair, 480 minutes, late start

	dur := 510
	_, err := f.checkIns.Insert(context.Background(), model.CheckIn{
		UserID: 7, ActionTypeID: 2, CheckTime: base.AddDate(0, 0, 1).Add(18 * time.Hour),
		Status: model.StatusOvertime, DurationMinutes: &dur,
	})
	require.NoError(t, err)
	_, err = f.checkIns.Insert(context.Background(), model.CheckIn{
		UserID: 7, ActionTypeID: 1, CheckTime: base.AddDate(0, 0, 2).Add(9 * time.Hour),
		Status: model.StatusOngoing,
	})
	require.NoError(t, err)

	s, err := f.query.Statistics(context.Background(), base, base.AddDate(0, 0, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Ongoing)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Overtime)
	assert.Equal(t, 1, s.LateCount)
	assert.Equal(t, 990, s.TotalMinutes, "closing rows only: 480 + 510")
}
