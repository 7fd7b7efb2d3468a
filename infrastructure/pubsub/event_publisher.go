package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewClient returns nil when no project is configured.
func NewClient(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, nil
	}
	return pubsub.NewClient(ctx, projectID)
}

// EventPublisher forwards pipeline events to a Pub/Sub topic, creating it on first use.
type EventPublisher struct {
	client    *pubsub.Client
	topicName string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewEventPublisher(client *pubsub.Client, topicName string) repository.IEventPublisher {
	return &EventPublisher{client: client, topicName: topicName}
}

func (p *EventPublisher) PublishEvent(ctx context.Context, evt model.PipelineEvent) error {
	if p.client == nil {
		return nil
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"type": evt.Type, "event_id": evt.ID},
	}
	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"server_id":  serverID,
		"event_type": evt.Type,
	}).Debug("Event published")
	return nil
}

func (p *EventPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}
	topic := p.client.Topic(p.topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
		if topic, err = p.client.CreateTopic(ctx, p.topicName); err != nil {
			return nil, err
		}
	}
	p.topic = topic
	return topic, nil
}

// Stop flushes pending publishes.
func (p *EventPublisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		p.topic.Stop()
	}
}
