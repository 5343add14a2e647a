package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PubSub publishes and waits for submission-complete notifications.
type PubSub struct {
	client *redis.Client
}

// NewPubSub connects to redis and verifies the connection.
func NewPubSub(addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PubSub{
		client: client,
	}, nil
}

// SubmissionNotification is the message published when a tax request
// reaches a terminal state.
type SubmissionNotification struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"` // success / failed
	Timestamp int64  `json:"timestamp"`
}

// Channel returns the per-request notification channel name.
func Channel(requestID string) string {
	return fmt.Sprintf("submission:result:%s", requestID)
}

// PublishSubmissionComplete publishes a terminal-state notification.
func (p *PubSub) PublishSubmissionComplete(ctx context.Context, notification *SubmissionNotification) error {
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.client.Publish(ctx, Channel(notification.RequestID), msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// WaitForSubmissionComplete blocks on the per-request channel until a
// notification arrives or the timeout passes.
func (p *PubSub) WaitForSubmissionComplete(ctx context.Context, requestID string, timeout time.Duration) (*SubmissionNotification, error) {
	sub := p.client.Subscribe(ctx, Channel(requestID))
	defer sub.Close()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := sub.ReceiveMessage(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("wait for submission result failed: %w", err)
	}

	var notification SubmissionNotification
	if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
		return nil, fmt.Errorf("unmarshal notification failed: %w", err)
	}

	return &notification, nil
}

// Close closes the redis connection.
func (p *PubSub) Close() error {
	return p.client.Close()
}
