package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/metrics"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestPublish_DeliveredToSubscriber(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()
	m := metrics.New()

	sub, err := Subscribe(ctx, client, "notifications")
	require.NoError(t, err)
	defer sub.Close()

	pub := NewRedisPublisher(client, "notifications", m, zerolog.New(io.Discard))
	ev := NewAppointmentCreated(uuid.New(), uuid.New(), time.Now(), time.Now())
	require.NoError(t, pub.Publish(ctx, ev))

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, "notifications", msg.Channel)
		got, err := Decode(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, ev.BookingID, got.BookingID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(metrics.PublishOK)))
}

func TestPublish_NoSubscriberLosesEvent(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()
	m := metrics.New()

	pub := NewRedisPublisher(client, "notifications", m, zerolog.New(io.Discard))
	lost := NewAppointmentCreated(uuid.New(), uuid.New(), time.Now(), time.Now())
	require.NoError(t, pub.Publish(ctx, lost))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(metrics.PublishNoSubscribers)))

	// A consumer that joins late only sees what comes after it.
	sub, err := Subscribe(ctx, client, "notifications")
	require.NoError(t, err)
	defer sub.Close()

	next := NewAppointmentCreated(uuid.New(), uuid.New(), time.Now(), time.Now())
	require.NoError(t, pub.Publish(ctx, next))

	select {
	case msg := <-sub.Messages():
		got, err := Decode(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, next.BookingID, got.BookingID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublish_TransportDown(t *testing.T) {
	mr, client := newTestClient(t)
	m := metrics.New()
	mr.Close()

	pub := NewRedisPublisher(client, "notifications", m, zerolog.New(io.Discard))
	err := pub.Publish(context.Background(), NewAppointmentCreated(uuid.New(), uuid.New(), time.Now(), time.Now()))
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(metrics.PublishError)))
}

func TestSubscription_CloseEndsMessages(t *testing.T) {
	_, client := newTestClient(t)

	sub, err := Subscribe(context.Background(), client, "notifications")
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	select {
	case _, ok := <-sub.Messages():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("messages channel not closed")
	}
}
