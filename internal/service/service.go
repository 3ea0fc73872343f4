package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/events"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// PageRequest is the 1-based page and size requested by a client.
type PageRequest struct {
	Page  int
	Limit int
}

// normalize applies defaults and bounds and returns page, limit and row offset.
func (p PageRequest) normalize() (page, limit, offset int) {
	page, limit = p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, (page - 1) * limit
}

// publisher stamps and dispatches domain events. Subscriber failures are logged
// and never fail the operation that produced the event.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func newPublisher(dispatcher events.Dispatcher, logger *zap.Logger) publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return publisher{dispatcher: dispatcher, logger: logger}
}

func (p publisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event subscriber failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func actorOf(caller access.Caller) events.Actor {
	if caller.IsAnonymous() {
		return events.Actor{Role: string(access.KindAnonymous)}
	}
	id := caller.UserID
	return events.Actor{UserID: &id, Role: string(caller.Kind)}
}
