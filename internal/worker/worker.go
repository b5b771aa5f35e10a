// Package worker mirrors projections to the configured spreadsheet, driven
// by change events and a periodic full re-export.
package worker

import (
	"context"
	"fmt"
	"time"

	"grana/internal/amqp"
	"grana/internal/core"
	applog "grana/internal/log"
	"grana/internal/projection"
	"grana/internal/services"
	"grana/internal/sheets"
	"grana/internal/subscribe"
)

type ExportWorker struct {
	loader   *subscribe.Loader
	users    services.UserStore
	writer   sheets.ProjectionWriter
	interval time.Duration

	// now is swappable for tests; projections are anchored at its month.
	now func() time.Time
}

func NewExportWorker(loader *subscribe.Loader, users services.UserStore, writer sheets.ProjectionWriter, interval time.Duration) *ExportWorker {
	return &ExportWorker{
		loader:   loader,
		users:    users,
		writer:   writer,
		interval: interval,
		now:      time.Now,
	}
}

// HandleChange re-exports the owner named by a change event. Used as the
// AMQP consumer handler; returning an error requeues the message.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	applog.FromContext(ctx).Info("Processing change event",
		applog.FieldEntity, msg.Entity,
		applog.FieldOperation, msg.Op,
		applog.FieldEntityID, msg.ID,
		applog.FieldOwnerID, msg.OwnerID)
	return w.ExportOwner(ctx, msg.OwnerID)
}

// Run re-exports every user on a fixed interval until the context is
// cancelled. This backstops lost change events.
func (w *ExportWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger := applog.FromContext(ctx)
	logger.Info("Export worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Export worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportAll(ctx); err != nil {
				logger.Error("Periodic export failed", applog.FieldError, err)
			}
		}
	}
}

// ExportAll recomputes and mirrors the projection of every user. Per-owner
// failures are logged and skipped so one broken sheet cannot stall the rest.
func (w *ExportWorker) ExportAll(ctx context.Context) error {
	ownerIDs, err := w.users.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	logger := applog.FromContext(ctx)
	var failed int
	for _, ownerID := range ownerIDs {
		if err := w.ExportOwner(ctx, ownerID); err != nil {
			logger.Error("Failed to export owner projection",
				applog.FieldOwnerID, ownerID,
				applog.FieldError, err)
			failed++
		}
	}

	logger.Info("Periodic export completed",
		"owners", len(ownerIDs),
		"failed", failed)
	return nil
}

// ExportOwner recomputes the owner's 12-month projection and writes it to
// the spreadsheet.
func (w *ExportWorker) ExportOwner(ctx context.Context, ownerID int64) error {
	snap, err := w.loader.Load(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	now := w.now()
	ref := core.NewDate(now.Year(), int(now.Month()), now.Day())
	months := projection.ByMonth(snap.FixedExpenses, snap.Transactions, ref)

	if err := w.writer.WriteMonthlyProjection(ctx, ownerID, months); err != nil {
		return fmt.Errorf("write projection: %w", err)
	}
	return nil
}
