// Package notifications publishes blog lifecycle events to Redis.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BlogEventsChannel carries every post lifecycle event.
const BlogEventsChannel = "blog:events"

// Lifecycle event types.
const (
	EventPostCreated     = "post_created"
	EventPostUpdated     = "post_updated"
	EventPostDeleted     = "post_deleted"
	EventPostPublished   = "post_published"
	EventPostUnpublished = "post_unpublished"
)

// PostEvent is the payload published on BlogEventsChannel.
type PostEvent struct {
	Type   string    `json:"type"`
	PostID uint      `json:"post_id"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishPostEvent publishes ev on BlogEventsChannel. It is a no-op without Redis.
func (n *Notifier) PublishPostEvent(ctx context.Context, ev PostEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, BlogEventsChannel, string(payload)).Err()
}
