package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dataforge/internal/store"
)

// CreateUser inserts a new user row together with its API key hash.
func (s *Store) CreateUser(ctx context.Context, user *store.User, hashedKey string) error {
	query := `
		INSERT INTO users (id, name, api_key_hash, rate_limit, rate_limit_burst, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		hashedKey,
		user.RateLimit,
		user.RateLimitBurst,
		user.CreatedAt,
	)
	return err
}

func (s *Store) GetUserByAPIKeyHash(ctx context.Context, hash string) (*store.User, error) {
	query := "SELECT id, name, rate_limit, rate_limit_burst, created_at FROM users WHERE api_key_hash = $1"

	var user store.User
	err := s.db.QueryRowContext(ctx, query, hash).Scan(
		&user.ID, &user.Name, &user.RateLimit, &user.RateLimitBurst, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}
