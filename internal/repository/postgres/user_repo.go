package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/Classbell/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

var _ user.Directory = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (username, email, is_active)
VALUES ($1, $2, $3)
RETURNING id, username, email, is_active, created_at;`

	qUserByID = `
SELECT id, username, email, is_active, created_at
FROM users
WHERE id = $1;`
)

// Create is used by tooling and tests; accounts are owned elsewhere.
func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := scanUser(r.db.execQueryer(ctx).QueryRow(ctx, qUserInsert, u.Username, u.Email, u.IsActive), u); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.execQueryer(ctx).QueryRow(ctx, qUserByID, id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUser(row pgx.Row, out *user.User) error {
	if err := row.Scan(&out.ID, &out.Username, &out.Email, &out.IsActive, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return fmt.Errorf("scan user: %w", err)
	}
	return nil
}
