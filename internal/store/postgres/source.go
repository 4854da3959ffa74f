package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

// CreateSource inserts a new source row.
// Credentials are stored as a JSON object.
func (s *Store) CreateSource(ctx context.Context, tx store.DBTransaction, source *store.Source) error {
	query := `
		INSERT INTO sources (id, owner_id, name, url, source_type, status, credentials, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	credsJson, err := json.Marshal(source.Credentials)
	if err != nil {
		return err
	}

	executor := s.getExecutor(tx)
	_, err = executor.ExecContext(ctx, query,
		source.ID,
		source.OwnerID,
		source.Name,
		source.URL,
		source.SourceType,
		source.Status,
		credsJson,
		source.CreatedAt,
	)
	return err
}

// GetSourceByID returns a source by its ID. Soft-deleted sources behave as
// if they do not exist.
func (s *Store) GetSourceByID(ctx context.Context, id uuid.UUID) (*store.Source, error) {
	query := `
		SELECT id, owner_id, name, url, source_type, status, credentials, is_deleted, deletion_marked_at, created_at
		FROM sources
		WHERE id = $1 AND NOT is_deleted
	`

	source, err := scanSource(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return source, nil
}

func (s *Store) ListSources(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]store.Source, error) {
	query := `
		SELECT id, owner_id, name, url, source_type, status, credentials, is_deleted, deletion_marked_at, created_at
		FROM sources
		WHERE owner_id = $1
	`
	if !includeDeleted {
		query += " AND NOT is_deleted"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []store.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}

	return sources, rows.Err()
}

func (s *Store) UpdateSourceStatus(ctx context.Context, id uuid.UUID, status store.SourceStatus) error {
	res, err := s.db.ExecContext(ctx, "UPDATE sources SET status = $1 WHERE id = $2 AND NOT is_deleted", status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (*store.Source, error) {
	var source store.Source
	var credsJson []byte

	err := row.Scan(
		&source.ID, &source.OwnerID, &source.Name, &source.URL,
		&source.SourceType, &source.Status, &credsJson,
		&source.IsDeleted, &source.DeletionMarkedAt, &source.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(credsJson) > 0 {
		if err := json.Unmarshal(credsJson, &source.Credentials); err != nil {
			return nil, err
		}
	}

	return &source, nil
}

// requireRow maps a zero-row update to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
