package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dataforge/internal/store"
)

// entityTable maps an entity type to its table name. Only soft-deletable
// entities appear here.
func entityTable(t store.EntityType) (string, error) {
	switch t {
	case store.EntitySource:
		return "sources", nil
	case store.EntityDataset:
		return "datasets", nil
	case store.EntityJob:
		return "jobs", nil
	default:
		return "", fmt.Errorf("unknown entity type %q", t)
	}
}

// GetEntityLifecycle returns the owner and soft-delete state of an entity.
func (s *Store) GetEntityLifecycle(ctx context.Context, ref store.EntityRef) (*store.EntityLifecycle, error) {
	table, err := entityTable(ref.Type)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT owner_id, is_deleted, deletion_marked_at FROM %s WHERE id = $1", table)

	var lc store.EntityLifecycle
	err = s.db.QueryRowContext(ctx, query, ref.ID).Scan(&lc.OwnerID, &lc.IsDeleted, &lc.DeletionMarkedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return &lc, nil
}

func (s *Store) SoftDeleteEntity(ctx context.Context, ref store.EntityRef, at time.Time) error {
	table, err := entityTable(ref.Type)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET is_deleted = TRUE, deletion_marked_at = $1 WHERE id = $2", table)
	res, err := s.db.ExecContext(ctx, query, at, ref.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) RestoreEntity(ctx context.Context, ref store.EntityRef) error {
	table, err := entityTable(ref.Type)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET is_deleted = FALSE, deletion_marked_at = NULL WHERE id = $1", table)
	res, err := s.db.ExecContext(ctx, query, ref.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// PurgeEntity hard-removes a row regardless of soft-delete state. Callers
// enforce the deleted-state precondition.
func (s *Store) PurgeEntity(ctx context.Context, ref store.EntityRef) error {
	table, err := entityTable(ref.Type)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	res, err := s.db.ExecContext(ctx, query, ref.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// PurgeExpiredEntities hard-removes soft-deleted rows whose deletion mark is
// strictly before the cutoff.
func (s *Store) PurgeExpiredEntities(ctx context.Context, entityType store.EntityType, cutoff time.Time) (int64, error) {
	table, err := entityTable(entityType)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE is_deleted AND deletion_marked_at < $1", table)
	res, err := s.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
