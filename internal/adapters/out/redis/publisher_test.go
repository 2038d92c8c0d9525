package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	publisher "shoecare/internal/adapters/out/redis"
	"shoecare/internal/core/domain/model/order"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pub := publisher.NewPublisher(client, "shoecare")
	channel := pub.Channel(order.TopicStatusChanged)
	assert.Equal(t, "shoecare."+order.TopicStatusChanged, channel)

	sub := client.Subscribe(ctx, channel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	event := order.StatusChanged{OrderNumber: "SC-20260309-ABC123", From: order.Pending, To: order.WaitingConfirmation}
	require.NoError(t, pub.Publish(ctx, event.Topic(), event))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got order.StatusChanged
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, event.OrderNumber, got.OrderNumber)
	assert.Equal(t, order.WaitingConfirmation, got.To)
}

func TestPublisher_PublishFailsWhenServerIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := publisher.NewPublisher(client, "").Publish(context.Background(), "orders.cancelled", map[string]string{"a": "b"})
	assert.ErrorContains(t, err, "redis: publish orders.cancelled")
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := publisher.NewClient(context.Background(), addr)
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = publisher.NewClient(context.Background(), addr)
	assert.ErrorContains(t, err, "redis: ping")
}
