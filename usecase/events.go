package usecase

import (
	"context"
	"time"

	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"

	"github.com/google/uuid"
)

// IEventSink receives pipeline events. Emit never fails the caller.
type IEventSink interface {
	Emit(ctx context.Context, evt model.PipelineEvent)
}

// Broadcaster pushes an event to live subscribers.
type Broadcaster interface {
	Broadcast(evt model.PipelineEvent)
}

type EventSink struct {
	publisher   repository.IEventPublisher
	broadcaster Broadcaster
}

// NewEventSink fans events out to the external bus and the live hub. Either may be nil.
func NewEventSink(publisher repository.IEventPublisher, broadcaster Broadcaster) IEventSink {
	return &EventSink{publisher: publisher, broadcaster: broadcaster}
}

func (s *EventSink) Emit(ctx context.Context, evt model.PipelineEvent) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, evt); err != nil {
			logger.GetLogger().WithField("event_type", evt.Type).WithField("error", err).Warn("Failed to publish pipeline event")
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(evt)
	}
}

type noopSink struct{}

func (noopSink) Emit(context.Context, model.PipelineEvent) {}

func sinkOrNoop(s IEventSink) IEventSink {
	if s == nil {
		return noopSink{}
	}
	return s
}
