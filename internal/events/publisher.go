package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/metrics"
)

// Publisher hands booking events to the message channel.
type Publisher interface {
	Publish(ctx context.Context, event NotificationEvent) error
}

// RedisPublisher broadcasts on a single pub/sub channel. Delivery is
// at-most-once: with no subscriber listening the event is gone.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewRedisPublisher(client *redis.Client, channel string, m *metrics.Metrics, log zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		metrics: m,
		log:     log,
	}
}

// Publish returns once the transport accepted the message. It does not wait
// for any consumer.
func (p *RedisPublisher) Publish(ctx context.Context, event NotificationEvent) error {
	payload, err := event.Encode()
	if err != nil {
		p.metrics.EventsPublished.WithLabelValues(metrics.PublishError).Inc()
		return fmt.Errorf("encode event: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		p.metrics.EventsPublished.WithLabelValues(metrics.PublishError).Inc()
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}

	if receivers == 0 {
		p.metrics.EventsPublished.WithLabelValues(metrics.PublishNoSubscribers).Inc()
		p.log.Warn().
			Str("channel", p.channel).
			Str("event", event.Type).
			Str("appointment_id", event.BookingID.String()).
			Msg("no subscribers, event dropped")
		return nil
	}

	p.metrics.EventsPublished.WithLabelValues(metrics.PublishOK).Inc()
	p.log.Info().
		Str("channel", p.channel).
		Str("event", event.Type).
		Str("appointment_id", event.BookingID.String()).
		Int64("receivers", receivers).
		Msg("event published")
	return nil
}
