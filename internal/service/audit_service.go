package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/cache"
	"github.com/insurecare/feedback-portal/internal/events"
)

// AuditService records domain events in the log and keeps the dashboard cache
// consistent with the writes that produced them.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	stats      *cache.StatsCache
}

// NewAuditService creates the service. stats may be nil when caching is off.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, stats *cache.StatsCache) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		stats:      stats,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllTypes {
		a.dispatcher.Subscribe(eventType, a.handleAudit)
	}
	a.dispatcher.Subscribe(events.EventRatingSubmitted, a.invalidateStats)
	a.dispatcher.Subscribe(events.EventRatingDeleted, a.invalidateStats)
	a.dispatcher.Subscribe(events.EventComplaintFiled, a.invalidateStats)
	a.dispatcher.Subscribe(events.EventComplaintUpdated, a.invalidateStats)
	a.dispatcher.Subscribe(events.EventComplaintDeleted, a.invalidateStats)
	a.dispatcher.Subscribe(events.EventProfileDeleted, a.invalidateStats)
	// Approvals change the admin pending counter.
	a.dispatcher.Subscribe(events.EventUserRegistered, a.invalidateStats)
	a.dispatcher.Subscribe(events.EventUserUpdated, a.invalidateStats)
	a.dispatcher.Subscribe(events.EventUserDeleted, a.invalidateStats)
}

func (a *AuditService) handleAudit(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("target", event.Target.String()),
		zap.String("actor_role", event.Actor.Role),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.Actor.UserID != nil {
		fields = append(fields, zap.Int64("actor_user_id", *event.Actor.UserID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	a.logger.Info("audit", fields...)
	return nil
}

func (a *AuditService) invalidateStats(ctx context.Context, event events.Event) error {
	if a.stats == nil {
		return nil
	}
	if err := a.stats.Invalidate(ctx, event.Target); err != nil {
		a.logger.Warn("stats cache invalidation failed",
			zap.String("event_type", string(event.Type)),
			zap.String("target", event.Target.String()),
			zap.Error(err))
		return err
	}
	return nil
}
