package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/openclock/attendance-service/internal/model"
)

// CheckInRepo provides data access to the check_ins table. Pairing
// lookups are always ordered by check_time, never by insertion
// order, so manually backfilled events participate in pairing at
// their historical position.
type CheckInRepo struct{ DB *sql.DB }

// NewCheckInRepo returns a new CheckInRepo bound to the given database.
func NewCheckInRepo(db *sql.DB) *CheckInRepo { return &CheckInRepo{DB: db} }

const checkInColumns = "c.id, c.user_id, c.action_type_id, c.check_time, c.status, c.pair_check_in_id, c.duration_minutes, c.note, c.is_late, c.is_early_leave, c.is_manual, c.created_at"

func scanCheckIn(row interface{ Scan(...any) error }) (model.CheckIn, error) {
	var (
		c        model.CheckIn
		pairID   sql.NullInt64
		duration sql.NullInt64
		note     sql.NullString
	)
	err := row.Scan(&c.ID, &c.UserID, &c.ActionTypeID, &c.CheckTime, &c.Status,
		&pairID, &duration, &note, &c.IsLate, &c.IsEarlyLeave, &c.IsManual, &c.CreatedAt)
	if err != nil {
		return model.CheckIn{}, err
	}
	if pairID.Valid {
		id := uint64(pairID.Int64)
		c.PairCheckInID = &id
	}
	if duration.Valid {
		d := int(duration.Int64)
		c.DurationMinutes = &d
	}
	if note.Valid {
		n := note.String
		c.Note = &n
	}
	return c, nil
}

// Insert stores an opening check-in (status ongoing, no pair, no
// duration) and returns the stored row.
func (r *CheckInRepo) Insert(ctx context.Context, c model.CheckIn) (model.CheckIn, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO check_ins (user_id, action_type_id, check_time, status, note, is_late, is_early_leave, is_manual)
         VALUES (?,?,?,?,?,?,?,?)`,
		c.UserID, c.ActionTypeID, c.CheckTime, c.Status, c.Note, c.IsLate, c.IsEarlyLeave, c.IsManual)
	if err != nil {
		return model.CheckIn{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.CheckIn{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one check-in.
func (r *CheckInRepo) GetByID(ctx context.Context, id uint64) (model.CheckIn, error) {
	return scanCheckIn(r.DB.QueryRowContext(ctx,
		"SELECT "+checkInColumns+" FROM check_ins c WHERE c.id=? LIMIT 1", id))
}

// OpenExists reports whether the user has an ongoing check-in whose
// action type carries the given role.
func (r *CheckInRepo) OpenExists(ctx context.Context, userID uint64, role model.ActionRole) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM check_ins c
         JOIN action_types a ON a.id = c.action_type_id
         WHERE c.user_id=? AND c.status=? AND a.action_role=?
         LIMIT 1`,
		userID, model.StatusOngoing, role).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LatestOpen returns the most recent ongoing check-in of the given
// role for the user with check_time at or before the given moment.
// sql.ErrNoRows is returned when no such event exists. Backfilled
// closes rely on the time bound: a close inserted at an earlier
// timestamp must not pair with an open event from a later day.
func (r *CheckInRepo) LatestOpen(ctx context.Context, userID uint64, role model.ActionRole, before time.Time) (model.CheckIn, error) {
	return scanCheckIn(r.DB.QueryRowContext(ctx,
		`SELECT `+checkInColumns+` FROM check_ins c
         JOIN action_types a ON a.id = c.action_type_id
         WHERE c.user_id=? AND c.status=? AND a.action_role=? AND c.check_time<=?
         ORDER BY c.check_time DESC
         LIMIT 1`,
		userID, model.StatusOngoing, role, before))
}

// CloseWith atomically records a closing check-in against the open
// event with the given id. Inside one transaction it claims the open
// row (compare-and-set on status), inserts the closing row, and
// links the pair in both directions. ErrConflict is returned when
// the open row is no longer ongoing, meaning a concurrent request
// closed it first; nothing is written in that case.
//
// The open row adopts the closing row's status and duration, so
// duration_minutes is set on both members exactly when they leave
// Ongoing.
func (r *CheckInRepo) CloseWith(ctx context.Context, close model.CheckIn, openID uint64) (model.CheckIn, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.CheckIn{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE check_ins SET status=?, duration_minutes=? WHERE id=? AND status=?",
		close.Status, close.DurationMinutes, openID, model.StatusOngoing)
	if err != nil {
		return model.CheckIn{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.CheckIn{}, err
	}
	if n == 0 {
		return model.CheckIn{}, ErrConflict
	}

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO check_ins (user_id, action_type_id, check_time, status, pair_check_in_id, duration_minutes, note, is_late, is_early_leave, is_manual)
         VALUES (?,?,?,?,?,?,?,?,?,?)`,
		close.UserID, close.ActionTypeID, close.CheckTime, close.Status, openID,
		close.DurationMinutes, close.Note, close.IsLate, close.IsEarlyLeave, close.IsManual)
	if err != nil {
		return model.CheckIn{}, err
	}
	closeID, err := ins.LastInsertId()
	if err != nil {
		return model.CheckIn{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE check_ins SET pair_check_in_id=? WHERE id=?", closeID, openID); err != nil {
		return model.CheckIn{}, err
	}

	stored, err := scanCheckIn(tx.QueryRowContext(ctx,
		"SELECT "+checkInColumns+" FROM check_ins c WHERE c.id=? LIMIT 1", closeID))
	if err != nil {
		return model.CheckIn{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.CheckIn{}, err
	}
	return stored, nil
}

// AnnotationPatch carries the admin-overridable fields of a
// check-in. Nil fields are left untouched. Status, duration and
// pairing are deliberately absent: overrides annotate, they never
// reopen or recompute.
type AnnotationPatch struct {
	IsLate       *bool
	IsEarlyLeave *bool
	Note         *string
}

// Annotate applies an admin override to a check-in. sql.ErrNoRows is
// returned when the id is unknown.
func (r *CheckInRepo) Annotate(ctx context.Context, id uint64, p AnnotationPatch) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if p.IsLate != nil {
		sets = append(sets, "is_late=?")
		args = append(args, *p.IsLate)
	}
	if p.IsEarlyLeave != nil {
		sets = append(sets, "is_early_leave=?")
		args = append(args, *p.IsEarlyLeave)
	}
	if p.Note != nil {
		sets = append(sets, "note=?")
		args = append(args, *p.Note)
	}
	if len(sets) == 0 {
		var one int
		return r.DB.QueryRowContext(ctx, "SELECT 1 FROM check_ins WHERE id=?", id).Scan(&one)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE check_ins SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	return requireExisting(ctx, r.DB, res, "SELECT 1 FROM check_ins WHERE id=?", id)
}

// ListForUserSince returns the user's check-ins with check_time at
// or after dayStart, plus any still-ongoing events from earlier days
// so that an overnight shift opened yesterday appears on today's
// view. Rows are ordered newest first.
func (r *CheckInRepo) ListForUserSince(ctx context.Context, userID uint64, dayStart time.Time) ([]model.CheckIn, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+checkInColumns+` FROM check_ins c
         WHERE c.user_id=? AND (c.check_time>=? OR c.status=?)
         ORDER BY c.check_time DESC`,
		userID, dayStart, model.StatusOngoing)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheckIns(rows)
}

// CountBetween returns the number of check-ins in [from, to],
// optionally restricted to one user.
func (r *CheckInRepo) CountBetween(ctx context.Context, from, to time.Time, userID *uint64) (int, error) {
	q := "SELECT COUNT(*) FROM check_ins WHERE check_time>=? AND check_time<=?"
	args := []any{from, to}
	if userID != nil {
		q += " AND user_id=?"
		args = append(args, *userID)
	}
	var total int
	err := r.DB.QueryRowContext(ctx, q, args...).Scan(&total)
	return total, err
}

// PageBetween returns one page of check-ins in [from, to] ordered by
// check_time descending, optionally restricted to one user.
func (r *CheckInRepo) PageBetween(ctx context.Context, from, to time.Time, userID *uint64, limit, offset int) ([]model.CheckIn, error) {
	q := "SELECT " + checkInColumns + " FROM check_ins c WHERE c.check_time>=? AND c.check_time<=?"
	args := []any{from, to}
	if userID != nil {
		q += " AND c.user_id=?"
		args = append(args, *userID)
	}
	q += " ORDER BY c.check_time DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheckIns(rows)
}

// ListBetween returns all check-ins in [from, to] ordered by
// check_time descending, optionally restricted to one user. Used by
// the aggregation queries, which need the full range.
func (r *CheckInRepo) ListBetween(ctx context.Context, from, to time.Time, userID *uint64) ([]model.CheckIn, error) {
	q := "SELECT " + checkInColumns + " FROM check_ins c WHERE c.check_time>=? AND c.check_time<=?"
	args := []any{from, to}
	if userID != nil {
		q += " AND c.user_id=?"
		args = append(args, *userID)
	}
	q += " ORDER BY c.check_time DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheckIns(rows)
}

func collectCheckIns(rows *sql.Rows) ([]model.CheckIn, error) {
	out := make([]model.CheckIn, 0)
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
