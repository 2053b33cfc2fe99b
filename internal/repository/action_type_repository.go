package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/openclock/attendance-service/internal/model"
)

// ActionTypeRepo provides data access to the action_types table.
type ActionTypeRepo struct{ DB *sql.DB }

// NewActionTypeRepo returns a new ActionTypeRepo bound to the given database.
func NewActionTypeRepo(db *sql.DB) *ActionTypeRepo { return &ActionTypeRepo{DB: db} }

const actionTypeColumns = "id, name, button_text, button_color, display_order, action_role, requires_pair, pair_action_id, is_active, created_at"

func scanActionType(row interface{ Scan(...any) error }) (model.ActionType, error) {
	var (
		at     model.ActionType
		pairID sql.NullInt64
	)
	err := row.Scan(&at.ID, &at.Name, &at.ButtonText, &at.ButtonColor, &at.DisplayOrder,
		&at.Role, &at.RequiresPair, &pairID, &at.IsActive, &at.CreatedAt)
	if err != nil {
		return model.ActionType{}, err
	}
	if pairID.Valid {
		id := uint64(pairID.Int64)
		at.PairActionID = &id
	}
	return at, nil
}

// Create inserts an action type and returns the stored row.
func (r *ActionTypeRepo) Create(ctx context.Context, at model.ActionType) (model.ActionType, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO action_types (name, button_text, button_color, display_order, action_role, requires_pair, pair_action_id, is_active)
         VALUES (?,?,?,?,?,?,?,true)`,
		at.Name, at.ButtonText, at.ButtonColor, at.DisplayOrder, at.Role, at.RequiresPair, at.PairActionID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.ActionType{}, ErrConflict
		}
		return model.ActionType{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ActionType{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one action type.
func (r *ActionTypeRepo) GetByID(ctx context.Context, id uint64) (model.ActionType, error) {
	return scanActionType(r.DB.QueryRowContext(ctx,
		"SELECT "+actionTypeColumns+" FROM action_types WHERE id=? LIMIT 1", id))
}

// List returns every action type, active or not, ordered for display.
func (r *ActionTypeRepo) List(ctx context.Context) ([]model.ActionType, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+actionTypeColumns+" FROM action_types ORDER BY display_order ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make([]model.ActionType, 0)
	for rows.Next() {
		at, err := scanActionType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, at)
	}
	return types, rows.Err()
}

// ActionTypePatch carries the updatable fields of an action type.
// Nil fields are left untouched. The role of a type is fixed at
// creation: changing it would retroactively re-classify historical
// check-ins.
type ActionTypePatch struct {
	ButtonText   *string
	ButtonColor  *string
	DisplayOrder *int
	IsActive     *bool
}

// Update applies a patch to an action type. sql.ErrNoRows is
// returned when the id is unknown.
func (r *ActionTypeRepo) Update(ctx context.Context, id uint64, p ActionTypePatch) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if p.ButtonText != nil {
		sets = append(sets, "button_text=?")
		args = append(args, *p.ButtonText)
	}
	if p.ButtonColor != nil {
		sets = append(sets, "button_color=?")
		args = append(args, *p.ButtonColor)
	}
	if p.DisplayOrder != nil {
		sets = append(sets, "display_order=?")
		args = append(args, *p.DisplayOrder)
	}
	if p.IsActive != nil {
		sets = append(sets, "is_active=?")
		args = append(args, *p.IsActive)
	}
	if len(sets) == 0 {
		// Nothing to change; still report unknown ids.
		var one int
		return r.DB.QueryRowContext(ctx, "SELECT 1 FROM action_types WHERE id=?", id).Scan(&one)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE action_types SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	return requireExisting(ctx, r.DB, res, "SELECT 1 FROM action_types WHERE id=?", id)
}

// Delete removes an action type. Types referenced by historical
// check-ins or by time rules must never be orphaned, so the delete
// is rejected with ErrConflict while references exist; deactivation
// via Update is the supported soft path for retiring a type.
func (r *ActionTypeRepo) Delete(ctx context.Context, id uint64) error {
	var refs int
	err := r.DB.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM check_ins WHERE action_type_id=?) +
                (SELECT COUNT(*) FROM time_rules WHERE action_type_id=?)`,
		id, id).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM action_types WHERE id=?", id)
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
