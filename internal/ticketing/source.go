package ticketing

import (
	"context"
	"fmt"

	"github.com/sqlsaturday/satops/internal/attendee"
	"github.com/sqlsaturday/satops/internal/batch"
	"go.uber.org/zap"
)

// Source yields the registered attendees of the event
type Source interface {
	Attendees(ctx context.Context) ([]attendee.Attendee, error)
}

// Upserter stores one attendee
type Upserter interface {
	Upsert(ctx context.Context, a attendee.Attendee) error
}

// Import reads every attendee from src and upserts it. A failing attendee is
// recorded in report and the import continues; only a failing source aborts.
func Import(ctx context.Context, src Source, store Upserter, report *batch.Report, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	list, err := src.Attendees(ctx)
	if err != nil {
		return fmt.Errorf("reading registrations: %w", err)
	}
	logger.Info("registrations read", zap.Int("count", len(list)))

	for _, a := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := store.Upsert(ctx, a); err != nil {
			logger.Warn("attendee import failed", zap.String("barcode", a.Barcode), zap.Error(err))
			report.Fail(a.Key(), "upsert", err)
			continue
		}
		report.Succeed(a.Key())
	}
	return nil
}
