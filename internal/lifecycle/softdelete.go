package lifecycle

import (
	"context"
	"fmt"

	"dataforge/internal/store"
)

// SoftDelete marks an entity deleted. Already-deleted entities are left
// untouched, so the operation is idempotent.
func (m *Manager) SoftDelete(ctx context.Context, ref store.EntityRef) error {
	lc, err := m.getLifecycle(ctx, ref)
	if err != nil {
		return err
	}
	if lc.IsDeleted {
		return nil
	}

	if err := m.store.SoftDeleteEntity(ctx, ref, m.now().UTC()); err != nil {
		return &store.StoreError{Op: "soft delete", Err: err}
	}

	m.emit(ctx, store.Notification{
		UserID:    lc.OwnerID,
		Severity:  store.SeverityWarning,
		Category:  ref.Type.Category(),
		Message:   fmt.Sprintf("%s moved to trash", ref.Type),
		RelatedID: &ref.ID,
	})
	return nil
}

// Restore brings a soft-deleted entity back to list visibility, clearing
// both soft-delete fields. Restoring a live entity is a no-op, so calling
// restore twice is safe.
func (m *Manager) Restore(ctx context.Context, ref store.EntityRef) error {
	lc, err := m.getLifecycle(ctx, ref)
	if err != nil {
		return err
	}
	if !lc.IsDeleted {
		return nil
	}

	if err := m.store.RestoreEntity(ctx, ref); err != nil {
		return &store.StoreError{Op: "restore", Err: err}
	}

	m.emit(ctx, store.Notification{
		UserID:    lc.OwnerID,
		Severity:  store.SeverityInfo,
		Category:  ref.Type.Category(),
		Message:   fmt.Sprintf("%s restored from trash", ref.Type),
		RelatedID: &ref.ID,
	})
	return nil
}

// PermanentlyDelete hard-removes an entity. Purge is irreversible and only
// reachable from the deleted state, never directly from live.
func (m *Manager) PermanentlyDelete(ctx context.Context, ref store.EntityRef) error {
	lc, err := m.getLifecycle(ctx, ref)
	if err != nil {
		return err
	}
	if !lc.IsDeleted {
		return &store.StateConflictError{Entity: string(ref.Type), State: "live", Op: "purge"}
	}

	if err := m.store.PurgeEntity(ctx, ref); err != nil {
		return &store.StoreError{Op: "purge", Err: err}
	}

	m.emit(ctx, store.Notification{
		UserID:    lc.OwnerID,
		Severity:  store.SeverityWarning,
		Category:  ref.Type.Category(),
		Message:   fmt.Sprintf("%s permanently deleted", ref.Type),
		RelatedID: &ref.ID,
	})
	return nil
}

// PurgeExpired hard-removes soft-deleted entities whose deletion mark is
// older than the retention window. Entities still inside the window are
// never touched.
func (m *Manager) PurgeExpired(ctx context.Context, entityType store.EntityType, retentionDays int) (int64, error) {
	cutoff := m.now().UTC().AddDate(0, 0, -retentionDays)
	removed, err := m.store.PurgeExpiredEntities(ctx, entityType, cutoff)
	if err != nil {
		return 0, &store.StoreError{Op: "purge expired", Err: err}
	}
	if removed > 0 {
		m.log.Info("purged expired entities",
			"entity_type", entityType,
			"removed", removed,
			"retention_days", retentionDays,
		)
	}
	return removed, nil
}

func (m *Manager) getLifecycle(ctx context.Context, ref store.EntityRef) (*store.EntityLifecycle, error) {
	lc, err := m.store.GetEntityLifecycle(ctx, ref)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, fmt.Errorf("%s %s: %w", ref.Type, ref.ID, store.ErrNotFound)
		}
		return nil, &store.StoreError{Op: "get entity lifecycle", Err: err}
	}
	return lc, nil
}

// CleanupNotifications removes notifications older than the retention
// window. The default window is seven days.
func (m *Manager) CleanupNotifications(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := m.now().UTC().AddDate(0, 0, -retentionDays)
	removed, err := m.store.DeleteNotificationsBefore(ctx, cutoff)
	if err != nil {
		return 0, &store.StoreError{Op: "cleanup notifications", Err: err}
	}
	if removed > 0 {
		m.log.Info("cleaned up notifications", "removed", removed, "retention_days", retentionDays)
	}
	return removed, nil
}
