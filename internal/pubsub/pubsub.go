// Package pubsub is a fire-and-forget event bus over Redis pub/sub. There is
// no delivery guarantee: subscribers that are down miss events.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Topics published and consumed by the services.
const (
	TopicWorkspaceAdded         = "workspace:added"
	TopicWorkspaceDeleted       = "workspace:deleted"
	TopicWorkspaceMemberAdded   = "workspace:member:added"
	TopicWorkspaceMemberRemoved = "workspace:member:removed"
	TopicWorkspaceMemberUpdated = "workspace:member:updated"
	TopicMessageCreated         = "message:created"
	TopicPreviewCallback        = "services:preview:callback"
)

const publishTimeout = 5 * time.Second

// Envelope wraps every published payload.
type Envelope struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
	At    int64           `json:"at"`
}

// Publisher is the subset of the bus used by services that only emit events.
type Publisher interface {
	Publish(ctx context.Context, topic string, data interface{}) error
}

// Bus publishes and subscribes on Redis channels.
type Bus struct {
	client *redis.Client
}

func NewBus(client *redis.Client) *Bus {
	return &Bus{client: client}
}

// Publish marshals data into an envelope and publishes it on topic. Errors
// are returned but callers treat publication as best-effort.
func (b *Bus) Publish(ctx context.Context, topic string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	body, err := json.Marshal(Envelope{Topic: topic, Data: raw, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return b.client.Publish(ctx, topic, body).Err()
}

// Subscribe starts a goroutine delivering each message on topic to handler.
// The returned cancel function stops the subscription.
func (b *Bus) Subscribe(topic string, handler func(data json.RawMessage)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	sub := b.client.Subscribe(ctx, topic)
	if _, err := sub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("[PubSub] Dropping malformed payload on %s: %v", topic, err)
					continue
				}
				handler(env.Data)
			}
		}
	}()
	return func() { cancelCtx() }, nil
}
