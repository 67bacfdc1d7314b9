package consumer

import (
	"context"

	"github.com/mnkvreels/vreels-backend/internal/metrics"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
)

// Apply routes one decoded CDC event to handler. Create, update and
// snapshot rows upsert; hard deletes and soft-deleted rows purge.
func Apply(ctx context.Context, handler UserEventHandler, event *DebeziumMessage) error {
	l := pkglog.Ctx(ctx)
	op := event.Payload.Op

	var err error
	switch op {
	case "c", "u", "r":
		after := event.Payload.After
		if after == nil || after.ID == "" {
			l.Warn().Str("op", op).Msg("CDC event missing 'after' row, skipping")
			return nil
		}
		if after.DeletedAt != nil {
			err = handler.DeleteUser(ctx, after.ID)
		} else {
			err = handler.UpsertUser(ctx, after.ToDomain())
		}

	case "d":
		before := event.Payload.Before
		if before == nil || before.ID == "" {
			l.Warn().Msg("CDC delete event missing 'before' row, skipping")
			return nil
		}
		err = handler.DeleteUser(ctx, before.ID)

	default:
		l.Warn().Str("op", op).Msg("unknown CDC operation, skipping")
		return nil
	}

	metrics.RecordCDCEvent(op, err)
	return err
}
