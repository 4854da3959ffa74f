package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

// CreateTransformation inserts a new transformation row.
// Fields and derived columns are stored as JSON arrays.
func (s *Store) CreateTransformation(ctx context.Context, tx store.DBTransaction, tr *store.Transformation) error {
	query := `
		INSERT INTO transformations (id, owner_id, source_id, name, status, skip_transformation, fields, derived_columns, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	fieldsJson, err := json.Marshal(tr.Fields)
	if err != nil {
		return err
	}
	derivedJson, err := json.Marshal(tr.DerivedColumns)
	if err != nil {
		return err
	}

	executor := s.getExecutor(tx)
	_, err = executor.ExecContext(ctx, query,
		tr.ID,
		tr.OwnerID,
		tr.SourceID,
		tr.Name,
		tr.Status,
		tr.SkipTransformation,
		fieldsJson,
		derivedJson,
		tr.CreatedAt,
	)
	return err
}

func (s *Store) GetTransformationByID(ctx context.Context, id uuid.UUID) (*store.Transformation, error) {
	query := `
		SELECT id, owner_id, source_id, name, status, skip_transformation, fields, derived_columns, created_at
		FROM transformations
		WHERE id = $1
	`

	tr, err := scanTransformation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return tr, nil
}

func (s *Store) ListTransformations(ctx context.Context, ownerID uuid.UUID) ([]store.Transformation, error) {
	query := `
		SELECT id, owner_id, source_id, name, status, skip_transformation, fields, derived_columns, created_at
		FROM transformations
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transformations []store.Transformation
	for rows.Next() {
		tr, err := scanTransformation(rows)
		if err != nil {
			return nil, err
		}
		transformations = append(transformations, *tr)
	}

	return transformations, rows.Err()
}

func scanTransformation(row rowScanner) (*store.Transformation, error) {
	var tr store.Transformation
	var fieldsJson, derivedJson []byte

	err := row.Scan(
		&tr.ID, &tr.OwnerID, &tr.SourceID, &tr.Name, &tr.Status,
		&tr.SkipTransformation, &fieldsJson, &derivedJson, &tr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(fieldsJson, &tr.Fields); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(derivedJson, &tr.DerivedColumns); err != nil {
		return nil, err
	}

	return &tr, nil
}
