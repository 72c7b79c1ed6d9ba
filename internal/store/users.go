package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokohq/go-shop-api/internal/shop"
)

type UserStore struct{ DB *pgxpool.Pool }

func (s *UserStore) Create(ctx context.Context, u *shop.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err := s.DB.QueryRow(ctx, `
		INSERT INTO users(id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return shop.ErrDuplicateUser
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (shop.User, error) {
	const query = `
		SELECT id, username, email, password_hash, role, created_at
		FROM users WHERE email=$1`

	var u shop.User
	err := s.DB.QueryRow(ctx, query, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return shop.User{}, shop.ErrUserNotFound
		}
		return shop.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (shop.User, error) {
	const query = `
		SELECT id, username, email, password_hash, role, created_at
		FROM users WHERE id=$1`

	var u shop.User
	err := s.DB.QueryRow(ctx, query, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return shop.User{}, shop.ErrUserNotFound
		}
		return shop.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context, page, limit int) ([]shop.User, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.DB.Query(ctx, `
		SELECT id, username, email, role, created_at
		FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []shop.User
	for rows.Next() {
		var u shop.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return shop.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return shop.ErrUserNotFound
	}
	return nil
}
