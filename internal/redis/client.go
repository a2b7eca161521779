package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	webhookQueueKey      = "webhook:retry"
	webhookDeadLetterKey = "webhook:dead"
	trackingKeyPrefix    = "tracking:"
)

type Client struct {
	rdb *redis.Client
}

// PendingEvent is a verified webhook payload whose reconciliation failed and
// is waiting for an out-of-band retry.
type PendingEvent struct {
	Payload  []byte    `json:"payload"`
	Attempts int       `json:"attempts"`
	QueuedAt time.Time `json:"queued_at"`
}

// TrackingInfo is the public tracking projection. It deliberately carries no
// owner or payment details.
type TrackingInfo struct {
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Webhook retry queue

func (c *Client) EnqueueWebhookEvent(ctx context.Context, event *PendingEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal pending event: %w", err)
	}
	return c.rdb.RPush(ctx, webhookQueueKey, jsonData).Err()
}

// DequeueWebhookEvent pops the oldest pending event. It returns (nil, nil)
// when the queue is empty.
func (c *Client) DequeueWebhookEvent(ctx context.Context) (*PendingEvent, error) {
	val, err := c.rdb.LPop(ctx, webhookQueueKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop webhook event: %w", err)
	}

	var event PendingEvent
	if err := json.Unmarshal([]byte(val), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending event: %w", err)
	}
	return &event, nil
}

// DeadLetterWebhookEvent parks an event that exhausted its retry budget so it
// can be inspected by hand.
func (c *Client) DeadLetterWebhookEvent(ctx context.Context, event *PendingEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal pending event: %w", err)
	}
	return c.rdb.RPush(ctx, webhookDeadLetterKey, jsonData).Err()
}

// Tracking lookup cache

func (c *Client) SetTracking(ctx context.Context, info *TrackingInfo, ttl time.Duration) error {
	jsonData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking info: %w", err)
	}
	return c.rdb.Set(ctx, trackingKeyPrefix+info.TrackingNumber, jsonData, ttl).Err()
}

func (c *Client) GetTracking(ctx context.Context, trackingNumber string) (*TrackingInfo, error) {
	val, err := c.rdb.Get(ctx, trackingKeyPrefix+trackingNumber).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tracking info: %w", err)
	}

	var info TrackingInfo
	if err := json.Unmarshal([]byte(val), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracking info: %w", err)
	}
	return &info, nil
}

func (c *Client) InvalidateTracking(ctx context.Context, trackingNumber string) error {
	return c.rdb.Del(ctx, trackingKeyPrefix+trackingNumber).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
