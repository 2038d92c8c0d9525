// Package redis publishes domain events on Redis Pub/Sub channels named
// <prefix>.<topic>, with the event encoded as JSON.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher implements ports.EventPublisher over a Redis client.
type Publisher struct {
	client *redis.Client
	prefix string
}

// NewClient connects to addr and verifies the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func NewPublisher(client *redis.Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix}
}

// Channel returns the channel a topic is published on.
func (p *Publisher) Channel(topic string) string {
	if p.prefix == "" {
		return topic
	}
	return p.prefix + "." + topic
}

func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", topic, err)
	}
	if err := p.client.Publish(ctx, p.Channel(topic), raw).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", topic, err)
	}
	return nil
}
