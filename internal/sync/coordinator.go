// Package sync reconciles a guest cart into the authenticated
// shopper's server-side cart, once per login transition.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lunashop/cart-go/internal/cart"
	"github.com/lunashop/cart-go/internal/guest"
	"github.com/lunashop/cart-go/internal/remote"
)

// RemoteCart is the slice of the cart API the coordinator needs.
type RemoteCart interface {
	SyncItems(ctx context.Context, userID string, items []remote.SyncItem) (*cart.Cart, error)
	Fetch(ctx context.Context, userID string) (*cart.Cart, error)
}

// EventPublisher announces a successful merge. Publishing is
// best-effort; a failure never undoes the merge.
type EventPublisher interface {
	PublishCartSynced(ctx context.Context, userID, sessionID string, c *cart.Cart) error
}

// Result reports what a login reconciliation did.
type Result struct {
	Cart    *cart.Cart
	Synced  bool  // a non-empty guest snapshot was pushed and accepted
	SyncErr error // the push failed; the snapshot was left intact
}

type Coordinator struct {
	snapshots guest.SnapshotRepository
	remote    RemoteCart
	publisher EventPublisher
	logger    *slog.Logger
}

func NewCoordinator(snapshots guest.SnapshotRepository, remote RemoteCart, publisher EventPublisher, logger *slog.Logger) *Coordinator {
	return &Coordinator{snapshots: snapshots, remote: remote, publisher: publisher, logger: logger}
}

// Reconcile runs the login-transition merge: read the guest snapshot,
// push it in one batch when non-empty, delete the snapshot only after
// the server confirmed the merge, then fetch the authoritative cart.
//
// The snapshot is deleted strictly after a successful sync response, so
// a failed push leaves it in place for a retry on the next transition.
// The fetch is issued only once the sync has completed, success or
// failure, and its result is what the caller should display. The
// returned error is non-nil only when that fetch failed.
func (c *Coordinator) Reconcile(ctx context.Context, sessionID, userID string) (Result, error) {
	var res Result

	records, err := c.snapshots.Load(ctx, sessionID)
	if err != nil {
		// Treat an unreadable snapshot like an empty one; the shopper
		// still gets their server cart.
		c.logger.WarnContext(ctx, "load guest snapshot", "sessionId", sessionID, "error", err)
		records = nil
	}

	if len(records) > 0 {
		merged, err := c.remote.SyncItems(ctx, userID, toSyncItems(records))
		if err != nil {
			res.SyncErr = err
			c.logger.WarnContext(ctx, "guest cart sync failed, snapshot retained",
				"sessionId", sessionID, "userId", userID, "error", err)
		} else {
			res.Synced = true
			if err := c.snapshots.Delete(ctx, sessionID); err != nil {
				// The merge went through; a leftover snapshot only means
				// the next login pushes the same items again and the
				// server deduplicates.
				c.logger.WarnContext(ctx, "delete guest snapshot after sync", "sessionId", sessionID, "error", err)
			}
			if c.publisher != nil {
				if err := c.publisher.PublishCartSynced(ctx, userID, sessionID, merged); err != nil {
					c.logger.WarnContext(ctx, "publish CartSynced", "userId", userID, "error", err)
				}
			}
		}
	}

	fetched, err := c.remote.Fetch(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("fetch cart after login: %w", err)
	}
	res.Cart = fetched
	return res, nil
}
