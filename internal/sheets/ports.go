// Package sheets defines the port for mirroring projections to an external
// spreadsheet.
package sheets

import (
	"context"

	"grana/internal/projection"
)

// ProjectionWriter replaces an owner's projection sheet with fresh data.
// Implementations must be idempotent: writing the same projection twice
// leaves the sheet unchanged.
type ProjectionWriter interface {
	WriteMonthlyProjection(ctx context.Context, ownerID int64, months []projection.MonthProjection) error
}
