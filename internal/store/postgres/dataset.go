package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

const datasetColumns = `id, owner_id, source_id, name, extraction_type, template_name, custom_query,
	status, progress, record_count, result_data, status_message, completed_at,
	is_deleted, deletion_marked_at, created_at`

// CreateDataset inserts a new dataset row.
func (s *Store) CreateDataset(ctx context.Context, tx store.DBTransaction, dataset *store.Dataset) error {
	query := `
		INSERT INTO datasets (id, owner_id, source_id, name, extraction_type, template_name, custom_query, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query,
		dataset.ID,
		dataset.OwnerID,
		dataset.SourceID,
		dataset.Name,
		dataset.ExtractionType,
		dataset.TemplateName,
		dataset.CustomQuery,
		dataset.Status,
		dataset.CreatedAt,
	)
	return err
}

func (s *Store) GetDatasetByID(ctx context.Context, id uuid.UUID) (*store.Dataset, error) {
	query := "SELECT " + datasetColumns + " FROM datasets WHERE id = $1"

	dataset, err := scanDataset(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return dataset, nil
}

func (s *Store) ListDatasets(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]store.Dataset, error) {
	query := "SELECT " + datasetColumns + " FROM datasets WHERE owner_id = $1"
	if !includeDeleted {
		query += " AND NOT is_deleted"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []store.Dataset
	for rows.Next() {
		dataset, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, *dataset)
	}

	return datasets, rows.Err()
}

// UpdateDatasetRun persists the run-state fields of a dataset.
func (s *Store) UpdateDatasetRun(ctx context.Context, dataset *store.Dataset) error {
	query := `
		UPDATE datasets
		SET status = $1, progress = $2, record_count = $3, result_data = $4, status_message = $5, completed_at = $6
		WHERE id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		dataset.Status,
		dataset.Progress,
		dataset.RecordCount,
		[]byte(dataset.ResultData),
		dataset.StatusMessage,
		dataset.CompletedAt,
		dataset.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanDataset(row rowScanner) (*store.Dataset, error) {
	var dataset store.Dataset
	var resultData []byte

	err := row.Scan(
		&dataset.ID, &dataset.OwnerID, &dataset.SourceID, &dataset.Name,
		&dataset.ExtractionType, &dataset.TemplateName, &dataset.CustomQuery,
		&dataset.Status, &dataset.Progress, &dataset.RecordCount, &resultData,
		&dataset.StatusMessage, &dataset.CompletedAt,
		&dataset.IsDeleted, &dataset.DeletionMarkedAt, &dataset.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	dataset.ResultData = resultData
	return &dataset, nil
}
