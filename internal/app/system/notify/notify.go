// internal/app/system/notify/notify.go

// Package notify delivers selection notifications. The default sink writes
// structured log records; delivery is fire-and-forget and never rolls back
// the operation that triggered it.
package notify

import (
	"context"

	"github.com/dalemusser/selecthub/internal/app/selection"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LogSink is the default Notifier: one log record per fan-out.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{log: logger}
}

func (s *LogSink) Notify(ctx context.Context, recipients []primitive.ObjectID, payload selection.Payload) {
	if len(recipients) == 0 {
		return
	}
	ids := make([]string, 0, len(recipients))
	for _, id := range recipients {
		ids = append(ids, id.Hex())
	}
	s.log.Info("notification",
		zap.String("kind", payload.Kind),
		zap.String("selection_id", payload.SelectionID.Hex()),
		zap.Strings("recipients", ids),
		zap.String("message", payload.Message))
}
