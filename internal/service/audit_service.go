package service

import (
	"context"

	"councellorx-be/internal/pkg/logger"
	"councellorx-be/pkg/events"
)

// EventSubscriber is the consuming side of pkg/nats.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler func(ctx context.Context, event events.Event) error) error
}

// AuditService copies every bus event into the audit log.
type AuditService struct {
	subscriber EventSubscriber
	auditLog   logger.ILogger
	logger     logger.ILogger
}

func NewAuditService(subscriber EventSubscriber, auditLog, log logger.ILogger) *AuditService {
	return &AuditService{
		subscriber: subscriber,
		auditLog:   auditLog,
		logger:     log,
	}
}

// Start subscribes with a durable consumer so restarts resume where they
// left off.
func (s *AuditService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, "events.>", "audit-log-worker", s.HandleEvent); err != nil {
		s.logger.Error("AUDIT", "Failed to start audit subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("AUDIT", "Audit service listening to events.>", nil)
	return nil
}

func (s *AuditService) HandleEvent(ctx context.Context, event events.Event) error {
	details := map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		details[k] = v
	}
	s.auditLog.Info("AUDIT", event.EventType(), details)
	return nil
}
