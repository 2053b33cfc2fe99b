package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/openclock/attendance-service/internal/model"
)

// UserRepo provides data access to the users table.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, password_hash, full_name, is_admin, created_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.IsAdmin, &u.CreatedAt)
	return u, err
}

// Create inserts a user and returns its ID. The password must
// already be hashed by the caller; this layer never sees plaintext.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash, fullName string) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, full_name, is_admin) VALUES (?,?,?,false)",
		username, passwordHash, fullName)
	if err != nil {
		// MySQL duplicate-key error for the unique username index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetAdmin updates the admin flag of a user. sql.ErrNoRows is
// returned when the id is unknown.
func (r *UserRepo) SetAdmin(ctx context.Context, id uint64, isAdmin bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_admin=? WHERE id=?", isAdmin, id)
	if err != nil {
		return err
	}
	return requireExisting(ctx, r.DB, res, "SELECT 1 FROM users WHERE id=?", id)
}

// Delete removes a user. Historical check-ins keep their user_id;
// deletion is an identity-collaborator concern and is not cascaded
// into attendance history.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
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

// requireExisting distinguishes "no such row" from "nothing changed"
// after an UPDATE that affected zero rows: MySQL reports zero
// affected rows for no-op updates too, so a follow-up existence
// probe decides whether to surface sql.ErrNoRows.
func requireExisting(ctx context.Context, db *sql.DB, res sql.Result, probe string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	if err := db.QueryRowContext(ctx, probe, args...).Scan(&one); err != nil {
		return err // sql.ErrNoRows when the id is unknown
	}
	return nil
}
