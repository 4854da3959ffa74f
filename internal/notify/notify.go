// Package notify delivers lifecycle notifications. The core treats
// dispatch as fire-and-forget: a failed emit never fails the transition
// that produced it.
package notify

import (
	"context"
	"time"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

// Dispatcher delivers one notification record to the outside world.
type Dispatcher interface {
	Emit(ctx context.Context, n store.Notification) error
}

// StoreDispatcher persists notifications through the notification store so
// an external display surface can read them.
type StoreDispatcher struct {
	store store.NotificationStore
}

// NewStoreDispatcher creates a store-backed dispatcher.
func NewStoreDispatcher(s store.NotificationStore) *StoreDispatcher {
	return &StoreDispatcher{store: s}
}

// Emit assigns an id and creation time if missing and persists the record.
func (d *StoreDispatcher) Emit(ctx context.Context, n store.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return d.store.InsertNotification(ctx, &n)
}
