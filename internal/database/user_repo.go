package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cinetrack/models"
)

// UserRepository provides access to registered accounts.
type UserRepository struct {
	conn *sql.DB
}

// NewUserRepository creates a repository bound to the given connection.
func NewUserRepository(conn *sql.DB) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `id, email, username, password_hash, verified, verification_code, created_at, updated_at`

// Create inserts a new account. A duplicate email surfaces as a constraint error.
func (r *UserRepository) Create(ctx context.Context, u models.User) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Verified, u.VerificationCode, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByEmail returns the account with the given email, with presence flag.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, bool, error) {
	return r.getWhere(ctx, "email = ?", email)
}

// GetByID returns the account with the given id, with presence flag.
func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, bool, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// MarkVerified flips the verified flag for the account.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx,
		`UPDATE users SET verified = 1, verification_code = '' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) getWhere(ctx context.Context, where string, arg any) (models.User, bool, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)

	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Verified,
		&u.VerificationCode, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return u, true, nil
}
