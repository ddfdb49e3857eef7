package performance

import (
	"context"
	"log/slog"
	"time"

	"evalportal/internal/platform/events"
)

// Auditor records mutating operations. *audit.Service satisfies it.
type Auditor interface {
	Record(ctx context.Context, action, entityType, entityID string, before, after any) error
}

type Service struct {
	store     StoreAPI
	publisher events.Publisher
	auditor   Auditor
	now       func() time.Time
}

// NewService wires the scoring engine. publisher and auditor may be nil.
func NewService(store StoreAPI, publisher events.Publisher, auditor Auditor) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{store: store, publisher: publisher, auditor: auditor, now: time.Now}
}

func (s *Service) record(ctx context.Context, action, entityType, entityID string, before, after any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, action, entityType, entityID, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "entityType", entityType, "entityId", entityID, "err", err)
	}
}
