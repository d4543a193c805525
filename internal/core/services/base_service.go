package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/events"
	"github.com/SscSPs/contractor_ledger/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Publisher events.Publisher
	Clock     func() time.Time
}

// ServiceOption configures the shared parts of a service.
type ServiceOption func(*BaseService)

// WithPublisher sets the publisher used for post-commit ledger events.
func WithPublisher(p events.Publisher) ServiceOption {
	return func(b *BaseService) {
		if p != nil {
			b.Publisher = p
		}
	}
}

// WithClock overrides the time source. Tests use it to pin "today".
func WithClock(clock func() time.Time) ServiceOption {
	return func(b *BaseService) {
		if clock != nil {
			b.Clock = clock
		}
	}
}

func newBaseService(opts ...ServiceOption) BaseService {
	b := BaseService{
		Publisher: events.NoopPublisher{},
		Clock:     time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// now returns the current time in UTC.
func (s *BaseService) now() time.Time {
	return s.Clock().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// publish delivers an event after commit. Delivery failures are logged and
// never undo the committed ledger change.
func (s *BaseService) publish(ctx context.Context, e events.Event) {
	if err := s.Publisher.Publish(ctx, e); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger event",
			slog.String("event_type", e.Type),
			slog.String("entity_id", e.EntityID))
	}
}
