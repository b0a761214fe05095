// Package queue publishes and pulls photo messages on Google Pub/Sub.
package queue

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/config"
	"github.com/yourusername/race-photo-sync/internal/gcloud"
	"github.com/yourusername/race-photo-sync/internal/models"
	pubsub "google.golang.org/api/pubsub/v1"
)

// MessageQueue carries photo messages between the uploader and the reconciler
type MessageQueue interface {
	Publish(ctx context.Context, msg *models.PhotoMessage) (string, error)
	Pull(ctx context.Context) ([]*models.PhotoMessage, error)
	Acknowledge(ctx context.Context, ackIDs []string) error
}

// PubSubQueue implements MessageQueue on the Pub/Sub REST API
type PubSubQueue struct {
	service      *pubsub.Service
	topic        string
	subscription string
	maxMessages  int64
	logger       *logrus.Logger
}

// NewPubSubQueue creates a queue client for the configured topic and subscription.
// httpClient is optional and bypasses authentication when set.
func NewPubSubQueue(ctx context.Context, cfg *config.GoogleConfig, httpClient *http.Client, logger *logrus.Logger) (*PubSubQueue, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("google project id is required")
	}

	service, err := pubsub.NewService(ctx, gcloud.ClientOptions(cfg, cfg.Endpoint, httpClient)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	q := &PubSubQueue{
		service:     service,
		maxMessages: int64(cfg.PubSubNumMessages),
		logger:      logger,
	}
	if cfg.PubSubTopicID != "" {
		q.topic = fmt.Sprintf("projects/%s/topics/%s", cfg.ProjectID, cfg.PubSubTopicID)
	}
	if cfg.PubSubSubscriptionID != "" {
		q.subscription = fmt.Sprintf("projects/%s/subscriptions/%s", cfg.ProjectID, cfg.PubSubSubscriptionID)
	}
	if q.maxMessages <= 0 {
		q.maxMessages = 10
	}

	return q, nil
}

// Publish sends a photo message and returns the server-assigned message id
func (q *PubSubQueue) Publish(ctx context.Context, msg *models.PhotoMessage) (string, error) {
	if q.topic == "" {
		return "", fmt.Errorf("pubsub topic is not configured")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to encode photo message: %w", err)
	}

	resp, err := q.service.Projects.Topics.Publish(q.topic, &pubsub.PublishRequest{
		Messages: []*pubsub.PubsubMessage{{Data: base64.StdEncoding.EncodeToString(data)}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to publish photo message %s: %w", msg.PhotoURL, err)
	}
	if len(resp.MessageIds) == 0 {
		return "", fmt.Errorf("publish of %s returned no message id", msg.PhotoURL)
	}

	return resp.MessageIds[0], nil
}

// Pull receives up to the configured number of messages. Returned messages
// carry their AckID and are redelivered unless acknowledged. Undecodable
// messages are logged, acknowledged and dropped.
func (q *PubSubQueue) Pull(ctx context.Context) ([]*models.PhotoMessage, error) {
	if q.subscription == "" {
		return nil, fmt.Errorf("pubsub subscription is not configured")
	}

	resp, err := q.service.Projects.Subscriptions.Pull(q.subscription, &pubsub.PullRequest{
		MaxMessages: q.maxMessages,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to pull messages: %w", err)
	}
	if len(resp.ReceivedMessages) == 0 {
		return nil, nil
	}

	messages := make([]*models.PhotoMessage, 0, len(resp.ReceivedMessages))
	var dropped []string
	for _, received := range resp.ReceivedMessages {
		if received.Message == nil {
			dropped = append(dropped, received.AckId)
			continue
		}

		msg, err := decodeMessage(received.Message.Data)
		if err != nil {
			q.logger.WithError(err).WithField("message_id", received.Message.MessageId).Warn("Dropping undecodable photo message")
			dropped = append(dropped, received.AckId)
			continue
		}
		msg.AckID = received.AckId
		messages = append(messages, msg)
	}

	if err := q.Acknowledge(ctx, dropped); err != nil {
		return nil, err
	}
	return messages, nil
}

// Acknowledge removes handled messages from the subscription
func (q *PubSubQueue) Acknowledge(ctx context.Context, ackIDs []string) error {
	if len(ackIDs) == 0 {
		return nil
	}

	_, err := q.service.Projects.Subscriptions.Acknowledge(q.subscription, &pubsub.AcknowledgeRequest{
		AckIds: ackIDs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to acknowledge %d messages: %w", len(ackIDs), err)
	}
	return nil
}

func decodeMessage(data string) (*models.PhotoMessage, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}

	msg := &models.PhotoMessage{}
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("invalid photo message: %w", err)
	}
	return msg, nil
}
