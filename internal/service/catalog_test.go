package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclock/attendance-service/internal/model"
	"github.com/openclock/attendance-service/internal/refcache"
	"github.com/openclock/attendance-service/internal/repository"
)

type catalogFixture struct {
	catalog *Catalog
	types   *fakeActionTypeStore
	rules   *fakeTimeRuleStore
	users   *fakeUserStore
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	types := newFakeActionTypeStore(
		model.ActionType{ID: 1, Name: "Clock In", Role: model.RoleShiftStart, IsActive: true, DisplayOrder: 1},
		model.ActionType{ID: 2, Name: "Clock Out", Role: model.RoleShiftEnd, IsActive: true, DisplayOrder: 2},
		model.ActionType{ID: 3, Name: "Break Start", Role: model.RoleEventStart, IsActive: true, DisplayOrder: 3},
		model.ActionType{ID: 4, Name: "Break End", Role: model.RoleEventEnd, IsActive: true, DisplayOrder: 4},
	)
	rules := newFakeTimeRuleStore()
	users := newFakeUserStore(
		model.User{ID: 1, Username: "admin", PasswordHash: "$2a$10$secret", IsAdmin: true},
		model.User{ID: 2, Username: "sokha", PasswordHash: "$2a$10$secret"},
	)
	return &catalogFixture{
		catalog: NewCatalog(types, rules, users, refcache.New(0)),
		types:   types,
		rules:   rules,
		users:   users,
	}
}

func TestListActionTypesServedFromCache(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	first, err := f.catalog.ListActionTypes(ctx)
	require.NoError(t, err)
	second, err := f.catalog.ListActionTypes(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.types.listCalls, "second list must be a cache hit")
}

func TestListedCollectionsAreCallerOwnedCopies(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	types, err := f.catalog.ListActionTypes(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, types)
	types[0].Name = "scribbled over"

	again, err := f.catalog.ListActionTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Clock In", again[0].Name, "mutating a returned slice must not touch the cached snapshot")

	_, err = f.catalog.CreateTimeRule(ctx, CreateTimeRuleInput{
		RuleName: "morning", ActionTypeID: 1, ExpectedStart: strPtr("09:00:00"),
	})
	require.NoError(t, err)

	rules, err := f.catalog.ListTimeRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	rules[0].RuleName = "scribbled over"

	again2, err := f.catalog.ListTimeRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, "morning", again2[0].RuleName)
}

func TestCreateActionTypeValidation(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateActionTypeInput
	}{
		{"missing name", CreateActionTypeInput{ButtonText: "Go", Role: model.RoleShiftStart}},
		{"missing button text", CreateActionTypeInput{Name: "Overtime In", Role: model.RoleShiftStart}},
		{"role zero", CreateActionTypeInput{Name: "Overtime In", ButtonText: "Go"}},
		{"role out of range", CreateActionTypeInput{Name: "Overtime In", ButtonText: "Go", Role: 9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.catalog.CreateActionType(ctx, tc.in)
			assert.True(t, AsValidation(err), "got %v", err)
		})
	}
}

func TestCreateActionTypeInvalidatesCache(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.catalog.ListActionTypes(ctx)
	require.NoError(t, err)

	created, err := f.catalog.CreateActionType(ctx, CreateActionTypeInput{
		Name: "Meeting Start", ButtonText: "Meeting", ButtonColor: "#3366ff",
		DisplayOrder: 5, Role: model.RoleEventStart,
	})
	require.NoError(t, err)

	list, err := f.catalog.ListActionTypes(ctx)
	require.NoError(t, err)
	found := false
	for _, at := range list {
		if at.ID == created.ID {
			found = true
		}
	}
	assert.True(t, found, "list after create must include the new type")
}

func TestCreateTimeRuleShapePerRole(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		in      CreateTimeRuleInput
		wantErr bool
	}{
		{"shift start with window start", CreateTimeRuleInput{RuleName: "start", ActionTypeID: 1, ExpectedStart: strPtr("09:00:00")}, false},
		{"shift start without window", CreateTimeRuleInput{RuleName: "start", ActionTypeID: 1}, true},
		{"shift start with duration", CreateTimeRuleInput{RuleName: "start", ActionTypeID: 1, ExpectedStart: strPtr("09:00:00"), MaxDurationMinutes: intPtr(60)}, true},
		{"shift end with full window", CreateTimeRuleInput{RuleName: "end", ActionTypeID: 2, ExpectedStart: strPtr("09:00:00"), ExpectedEnd: strPtr("18:00:00")}, false},
		{"shift end missing end", CreateTimeRuleInput{RuleName: "end", ActionTypeID: 2, ExpectedStart: strPtr("09:00:00")}, true},
		{"event start with budget", CreateTimeRuleInput{RuleName: "lunch", ActionTypeID: 3, MaxDurationMinutes: intPtr(60)}, false},
		{"event start zero budget", CreateTimeRuleInput{RuleName: "lunch", ActionTypeID: 3, MaxDurationMinutes: intPtr(0)}, true},
		{"event start with window", CreateTimeRuleInput{RuleName: "lunch", ActionTypeID: 3, MaxDurationMinutes: intPtr(60), ExpectedStart: strPtr("12:00:00")}, true},
		{"event end takes no rule", CreateTimeRuleInput{RuleName: "back", ActionTypeID: 4, MaxDurationMinutes: intPtr(60)}, true},
		{"malformed clock", CreateTimeRuleInput{RuleName: "start", ActionTypeID: 1, ExpectedStart: strPtr("25:99")}, true},
		{"bad timezone", CreateTimeRuleInput{RuleName: "start", ActionTypeID: 1, ExpectedStart: strPtr("09:00:00"), Timezone: "Mars/Olympus"}, true},
		{"missing name", CreateTimeRuleInput{ActionTypeID: 1, ExpectedStart: strPtr("09:00:00")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newCatalogFixture(t)
			_, err := fx.catalog.CreateTimeRule(ctx, tc.in)
			if tc.wantErr {
				assert.True(t, AsValidation(err), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateTimeRuleSecondActiveRejected(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateTimeRule(ctx, CreateTimeRuleInput{
		RuleName: "morning", ActionTypeID: 1, ExpectedStart: strPtr("09:00:00"),
	})
	require.NoError(t, err)

	_, err = f.catalog.CreateTimeRule(ctx, CreateTimeRuleInput{
		RuleName: "late morning", ActionTypeID: 1, ExpectedStart: strPtr("10:00:00"),
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestUpdateTimeRuleReactivationGuard(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	first, err := f.catalog.CreateTimeRule(ctx, CreateTimeRuleInput{
		RuleName: "morning", ActionTypeID: 1, ExpectedStart: strPtr("09:00:00"),
	})
	require.NoError(t, err)

	off := false
	_, err = f.catalog.UpdateTimeRule(ctx, first.ID, repository.TimeRulePatch{IsActive: &off})
	require.NoError(t, err)

	second, err := f.catalog.CreateTimeRule(ctx, CreateTimeRuleInput{
		RuleName: "late morning", ActionTypeID: 1, ExpectedStart: strPtr("10:00:00"),
	})
	require.NoError(t, err)

	// Reactivating the first rule would leave two active for the type.
	on := true
	_, err = f.catalog.UpdateTimeRule(ctx, first.ID, repository.TimeRulePatch{IsActive: &on})
	assert.ErrorIs(t, err, repository.ErrConflict)

	// Deactivating the second clears the way.
	_, err = f.catalog.UpdateTimeRule(ctx, second.ID, repository.TimeRulePatch{IsActive: &off})
	require.NoError(t, err)
	_, err = f.catalog.UpdateTimeRule(ctx, first.ID, repository.TimeRulePatch{IsActive: &on})
	assert.NoError(t, err)
}

func TestUpdateTimeRuleRevalidatesShape(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	tr, err := f.catalog.CreateTimeRule(ctx, CreateTimeRuleInput{
		RuleName: "morning", ActionTypeID: 1, ExpectedStart: strPtr("09:00:00"),
	})
	require.NoError(t, err)

	_, err = f.catalog.UpdateTimeRule(ctx, tr.ID, repository.TimeRulePatch{ExpectedStart: strPtr("not a clock")})
	assert.True(t, AsValidation(err), "got %v", err)

	_, err = f.catalog.UpdateTimeRule(ctx, tr.ID, repository.TimeRulePatch{MaxDurationMinutes: intPtr(30)})
	assert.True(t, AsValidation(err), "a shift rule cannot grow a duration budget: %v", err)
}

func TestRuleUpdateVisibleToNextRead(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	tr, err := f.catalog.CreateTimeRule(ctx, CreateTimeRuleInput{
		RuleName: "morning", ActionTypeID: 1, ExpectedStart: strPtr("09:00:00"),
	})
	require.NoError(t, err)

	// Prime the cache, then mutate: the next read must see the new
	// clock, not the cached snapshot.
	_, err = f.catalog.ListTimeRules(ctx)
	require.NoError(t, err)

	_, err = f.catalog.UpdateTimeRule(ctx, tr.ID, repository.TimeRulePatch{ExpectedStart: strPtr("08:30:00")})
	require.NoError(t, err)

	list, err := f.catalog.ListTimeRules(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ExpectedStart)
	assert.Equal(t, "08:30:00", *list[0].ExpectedStart)
}

func TestDeleteTimeRuleUnknownID(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateTimeRule(ctx, CreateTimeRuleInput{
		RuleName: "morning", ActionTypeID: 1, ExpectedStart: strPtr("09:00:00"),
	})
	require.NoError(t, err)

	err = f.catalog.DeleteTimeRule(ctx, 999)
	assert.Error(t, err, "unknown rule id must surface")
}

func TestListUsersBlanksPasswordHashes(t *testing.T) {
	f := newCatalogFixture(t)
	list, err := f.catalog.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, u := range list {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestSetUserAdminVisibleToNextRead(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.catalog.ListUsers(ctx)
	require.NoError(t, err)

	u, err := f.catalog.SetUserAdmin(ctx, 2, true)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	list, err := f.catalog.ListUsers(ctx)
	require.NoError(t, err)
	for _, lu := range list {
		if lu.ID == 2 {
			assert.True(t, lu.IsAdmin)
		}
	}
}
