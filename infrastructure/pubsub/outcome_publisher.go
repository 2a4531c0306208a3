package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"

	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"
)

// OutcomePublisher delivers dispatch outcome notifications to a Pub/Sub topic.
// Downstream consumers fan the message out to email or in-app channels.
type OutcomePublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

type outcomeMessage struct {
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func NewOutcomePublisher(ctx context.Context, projectID, topicID string) (*OutcomePublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	topic := client.Topic(topicID)
	ok, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if !ok {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return &OutcomePublisher{client: client, topic: topic}, nil
}

func (p *OutcomePublisher) Notify(ctx context.Context, userID, subject, body string) error {
	payload, err := json.Marshal(outcomeMessage{
		UserID:    userID,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	res := p.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"user_id": userID},
	})
	id, err := res.Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("messageID", id).Info("published outcome notification")
	return nil
}

func (p *OutcomePublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

var _ repository.INotifier = (*OutcomePublisher)(nil)
