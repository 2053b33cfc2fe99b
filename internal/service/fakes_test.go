package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/openclock/attendance-service/internal/model"
	"github.com/openclock/attendance-service/internal/repository"
)

// In-memory stores backing the service tests. They mirror the MySQL
// repositories' contracts: sql.ErrNoRows for unknown ids and
// repository.ErrConflict for a lost close race.

type fakeActionTypeStore struct {
	mu        sync.Mutex
	rows      []model.ActionType
	nextID    uint64
	listCalls int
}

func newFakeActionTypeStore(seed ...model.ActionType) *fakeActionTypeStore {
	s := &fakeActionTypeStore{nextID: 1}
	for _, at := range seed {
		if at.ID >= s.nextID {
			s.nextID = at.ID + 1
		}
		s.rows = append(s.rows, at)
	}
	return s
}

func (s *fakeActionTypeStore) List(context.Context) ([]model.ActionType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	out := make([]model.ActionType, len(s.rows))
	copy(out, s.rows)
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (s *fakeActionTypeStore) GetByID(_ context.Context, id uint64) (model.ActionType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, at := range s.rows {
		if at.ID == id {
			return at, nil
		}
	}
	return model.ActionType{}, sql.ErrNoRows
}

func (s *fakeActionTypeStore) Create(_ context.Context, at model.ActionType) (model.ActionType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at.ID = s.nextID
	s.nextID++
	at.CreatedAt = time.Now()
	s.rows = append(s.rows, at)
	return at, nil
}

func (s *fakeActionTypeStore) Update(_ context.Context, id uint64, p repository.ActionTypePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		if p.ButtonText != nil {
			s.rows[i].ButtonText = *p.ButtonText
		}
		if p.ButtonColor != nil {
			s.rows[i].ButtonColor = *p.ButtonColor
		}
		if p.DisplayOrder != nil {
			s.rows[i].DisplayOrder = *p.DisplayOrder
		}
		if p.IsActive != nil {
			s.rows[i].IsActive = *p.IsActive
		}
		return nil
	}
	return sql.ErrNoRows
}

func (s *fakeActionTypeStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *fakeActionTypeStore) roleOf(id uint64) model.ActionRole {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, at := range s.rows {
		if at.ID == id {
			return at.Role
		}
	}
	return 0
}

type fakeTimeRuleStore struct {
	mu        sync.Mutex
	rows      []model.TimeRule
	nextID    uint64
	listCalls int
}

func newFakeTimeRuleStore(seed ...model.TimeRule) *fakeTimeRuleStore {
	s := &fakeTimeRuleStore{nextID: 1}
	for _, tr := range seed {
		if tr.ID >= s.nextID {
			s.nextID = tr.ID + 1
		}
		s.rows = append(s.rows, tr)
	}
	return s
}

func (s *fakeTimeRuleStore) List(context.Context) ([]model.TimeRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	out := make([]model.TimeRule, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *fakeTimeRuleStore) GetByID(_ context.Context, id uint64) (model.TimeRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tr := range s.rows {
		if tr.ID == id {
			return tr, nil
		}
	}
	return model.TimeRule{}, sql.ErrNoRows
}

func (s *fakeTimeRuleStore) Create(_ context.Context, tr model.TimeRule) (model.TimeRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr.ID = s.nextID
	s.nextID++
	tr.IsActive = true
	tr.CreatedAt = time.Now()
	s.rows = append(s.rows, tr)
	return tr, nil
}

func (s *fakeTimeRuleStore) Update(_ context.Context, id uint64, p repository.TimeRulePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		if p.RuleName != nil {
			s.rows[i].RuleName = *p.RuleName
		}
		if p.ExpectedStart != nil {
			s.rows[i].ExpectedStart = p.ExpectedStart
		}
		if p.ExpectedEnd != nil {
			s.rows[i].ExpectedEnd = p.ExpectedEnd
		}
		if p.MaxDurationMinutes != nil {
			s.rows[i].MaxDurationMinutes = p.MaxDurationMinutes
		}
		if p.IsActive != nil {
			s.rows[i].IsActive = *p.IsActive
		}
		return nil
	}
	return sql.ErrNoRows
}

func (s *fakeTimeRuleStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *fakeTimeRuleStore) HasOtherActive(_ context.Context, actionTypeID, excludeID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tr := range s.rows {
		if tr.ActionTypeID == actionTypeID && tr.IsActive && tr.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserStore struct {
	mu   sync.Mutex
	rows []model.User
}

func newFakeUserStore(seed ...model.User) *fakeUserStore {
	return &fakeUserStore{rows: seed}
}

func (s *fakeUserStore) List(context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) SetAdmin(_ context.Context, id uint64, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].IsAdmin = isAdmin
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *fakeUserStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeCheckInStore struct {
	mu     sync.Mutex
	rows   []model.CheckIn
	nextID uint64
	types  *fakeActionTypeStore
}

func newFakeCheckInStore(types *fakeActionTypeStore) *fakeCheckInStore {
	return &fakeCheckInStore{nextID: 1, types: types}
}

func (s *fakeCheckInStore) Insert(_ context.Context, c model.CheckIn) (model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	c.CreatedAt = time.Now()
	s.rows = append(s.rows, c)
	return c, nil
}

func (s *fakeCheckInStore) GetByID(_ context.Context, id uint64) (model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return model.CheckIn{}, sql.ErrNoRows
}

func (s *fakeCheckInStore) OpenExists(_ context.Context, userID uint64, role model.ActionRole) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.rows {
		if c.UserID == userID && c.Status == model.StatusOngoing && s.types.roleOf(c.ActionTypeID) == role {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeCheckInStore) LatestOpen(_ context.Context, userID uint64, role model.ActionRole, before time.Time) (model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *model.CheckIn
	for i := range s.rows {
		c := &s.rows[i]
		if c.UserID != userID || c.Status != model.StatusOngoing || c.CheckTime.After(before) {
			continue
		}
		if s.types.roleOf(c.ActionTypeID) != role {
			continue
		}
		if best == nil || c.CheckTime.After(best.CheckTime) {
			best = c
		}
	}
	if best == nil {
		return model.CheckIn{}, sql.ErrNoRows
	}
	return *best, nil
}

func (s *fakeCheckInStore) CloseWith(_ context.Context, close model.CheckIn, openID uint64) (model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	openIdx := -1
	for i := range s.rows {
		if s.rows[i].ID == openID {
			openIdx = i
			break
		}
	}
	if openIdx < 0 || s.rows[openIdx].Status != model.StatusOngoing {
		return model.CheckIn{}, repository.ErrConflict
	}

	close.ID = s.nextID
	s.nextID++
	close.PairCheckInID = &openID
	close.CreatedAt = time.Now()
	s.rows = append(s.rows, close)

	closeID := close.ID
	open := &s.rows[openIdx]
	open.Status = close.Status
	open.DurationMinutes = close.DurationMinutes
	open.PairCheckInID = &closeID
	return close, nil
}

func (s *fakeCheckInStore) Annotate(_ context.Context, id uint64, p repository.AnnotationPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		if p.IsLate != nil {
			s.rows[i].IsLate = *p.IsLate
		}
		if p.IsEarlyLeave != nil {
			s.rows[i].IsEarlyLeave = *p.IsEarlyLeave
		}
		if p.Note != nil {
			s.rows[i].Note = p.Note
		}
		return nil
	}
	return sql.ErrNoRows
}

func (s *fakeCheckInStore) ListForUserSince(_ context.Context, userID uint64, dayStart time.Time) ([]model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CheckIn, 0)
	for _, c := range s.rows {
		if c.UserID != userID {
			continue
		}
		if !c.CheckTime.Before(dayStart) || c.Status == model.StatusOngoing {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckTime.After(out[j].CheckTime) })
	return out, nil
}

func (s *fakeCheckInStore) inRange(c model.CheckIn, from, to time.Time, userID *uint64) bool {
	if c.CheckTime.Before(from) || c.CheckTime.After(to) {
		return false
	}
	if userID != nil && c.UserID != *userID {
		return false
	}
	return true
}

func (s *fakeCheckInStore) CountBetween(_ context.Context, from, to time.Time, userID *uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.rows {
		if s.inRange(c, from, to, userID) {
			n++
		}
	}
	return n, nil
}

func (s *fakeCheckInStore) PageBetween(_ context.Context, from, to time.Time, userID *uint64, limit, offset int) ([]model.CheckIn, error) {
	all, err := s.ListBetween(context.Background(), from, to, userID)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []model.CheckIn{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *fakeCheckInStore) ListBetween(_ context.Context, from, to time.Time, userID *uint64) ([]model.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CheckIn, 0)
	for _, c := range s.rows {
		if s.inRange(c, from, to, userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckTime.After(out[j].CheckTime) })
	return out, nil
}

func (s *fakeCheckInStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
