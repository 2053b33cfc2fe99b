package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/openclock/attendance-service/internal/model"
)

// TimeRuleRepo provides data access to the time_rules table.
type TimeRuleRepo struct{ DB *sql.DB }

// NewTimeRuleRepo returns a new TimeRuleRepo bound to the given database.
func NewTimeRuleRepo(db *sql.DB) *TimeRuleRepo { return &TimeRuleRepo{DB: db} }

const timeRuleColumns = "id, rule_name, action_type_id, expected_start_time, expected_end_time, max_duration_minutes, timezone, is_active, created_at"

func scanTimeRule(row interface{ Scan(...any) error }) (model.TimeRule, error) {
	var (
		tr          model.TimeRule
		start, end  sql.NullString
		maxDuration sql.NullInt64
	)
	err := row.Scan(&tr.ID, &tr.RuleName, &tr.ActionTypeID, &start, &end, &maxDuration,
		&tr.Timezone, &tr.IsActive, &tr.CreatedAt)
	if err != nil {
		return model.TimeRule{}, err
	}
	if start.Valid {
		s := start.String
		tr.ExpectedStart = &s
	}
	if end.Valid {
		e := end.String
		tr.ExpectedEnd = &e
	}
	if maxDuration.Valid {
		m := int(maxDuration.Int64)
		tr.MaxDurationMinutes = &m
	}
	return tr, nil
}

// Create inserts a time rule and returns the stored row.
func (r *TimeRuleRepo) Create(ctx context.Context, tr model.TimeRule) (model.TimeRule, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO time_rules (rule_name, action_type_id, expected_start_time, expected_end_time, max_duration_minutes, timezone, is_active)
         VALUES (?,?,?,?,?,?,true)`,
		tr.RuleName, tr.ActionTypeID, tr.ExpectedStart, tr.ExpectedEnd, tr.MaxDurationMinutes, tr.Timezone)
	if err != nil {
		return model.TimeRule{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.TimeRule{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one time rule.
func (r *TimeRuleRepo) GetByID(ctx context.Context, id uint64) (model.TimeRule, error) {
	return scanTimeRule(r.DB.QueryRowContext(ctx,
		"SELECT "+timeRuleColumns+" FROM time_rules WHERE id=? LIMIT 1", id))
}

// List returns every time rule ordered by id.
func (r *TimeRuleRepo) List(ctx context.Context) ([]model.TimeRule, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+timeRuleColumns+" FROM time_rules ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rules := make([]model.TimeRule, 0)
	for rows.Next() {
		tr, err := scanTimeRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, tr)
	}
	return rules, rows.Err()
}

// HasOtherActive reports whether an active rule other than excludeID
// exists for the action type. The catalog uses this to enforce the
// one-active-rule-per-type invariant before any write.
func (r *TimeRuleRepo) HasOtherActive(ctx context.Context, actionTypeID, excludeID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM time_rules WHERE action_type_id=? AND is_active=true AND id<>? LIMIT 1",
		actionTypeID, excludeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TimeRulePatch carries the updatable fields of a time rule. Nil
// fields are left untouched.
type TimeRulePatch struct {
	RuleName           *string
	ExpectedStart      *string
	ExpectedEnd        *string
	MaxDurationMinutes *int
	IsActive           *bool
}

// Update applies a patch to a time rule. sql.ErrNoRows is returned
// when the id is unknown.
func (r *TimeRuleRepo) Update(ctx context.Context, id uint64, p TimeRulePatch) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if p.RuleName != nil {
		sets = append(sets, "rule_name=?")
		args = append(args, *p.RuleName)
	}
	if p.ExpectedStart != nil {
		sets = append(sets, "expected_start_time=?")
		args = append(args, *p.ExpectedStart)
	}
	if p.ExpectedEnd != nil {
		sets = append(sets, "expected_end_time=?")
		args = append(args, *p.ExpectedEnd)
	}
	if p.MaxDurationMinutes != nil {
		sets = append(sets, "max_duration_minutes=?")
		args = append(args, *p.MaxDurationMinutes)
	}
	if p.IsActive != nil {
		sets = append(sets, "is_active=?")
		args = append(args, *p.IsActive)
	}
	if len(sets) == 0 {
		var one int
		return r.DB.QueryRowContext(ctx, "SELECT 1 FROM time_rules WHERE id=?", id).Scan(&one)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE time_rules SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	return requireExisting(ctx, r.DB, res, "SELECT 1 FROM time_rules WHERE id=?", id)
}

// Delete removes a time rule. Rules are not referenced by check-ins
// (flags are denormalized onto the event at evaluation time), so a
// hard delete is safe.
func (r *TimeRuleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM time_rules WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
