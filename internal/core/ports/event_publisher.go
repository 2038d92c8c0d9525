package ports

import "context"

// EventPublisher delivers domain events to subscribers (notifications, sounds, dashboards).
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
