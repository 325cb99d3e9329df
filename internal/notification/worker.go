package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/events"
	"github.com/hackgods/clinic-scheduling/internal/metrics"
)

type State int32

const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var errSubscriptionClosed = errors.New("subscription closed")

// Worker listens on the notification channel and handles one message at a
// time. Events published while it is not subscribed are never seen.
type Worker struct {
	client  *redis.Client
	channel string
	audit   AuditLog
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
	state   atomic.Int32
}

func NewWorker(client *redis.Client, channel string, audit AuditLog, m *metrics.Metrics, log zerolog.Logger) *Worker {
	return &Worker{
		client:  client,
		channel: channel,
		audit:   audit,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
}

// Run subscribes and processes messages until ctx is canceled. It returns
// nil on cancellation and an error if the subscription fails or ends.
func (w *Worker) Run(ctx context.Context) error {
	defer w.setState(StateStopped)

	sub, err := events.Subscribe(ctx, w.client, w.channel)
	if err != nil {
		return err
	}
	defer sub.Close()

	w.setState(StateListening)
	w.log.Info().Str("channel", w.channel).Msg("listening for notification events")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("notification worker stopping")
			return nil
		case msg, ok := <-sub.Messages():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errSubscriptionClosed
			}
			w.setState(StateProcessing)
			w.handle(ctx, msg)
			w.setState(StateListening)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg events.Message) {
	ev, err := events.Decode(msg.Payload)
	if err != nil {
		w.metrics.EventsProcessed.WithLabelValues(metrics.ProcessedMalformed).Inc()
		w.log.Warn().
			Err(err).
			Str("channel", msg.Channel).
			Str("payload", string(msg.Payload)).
			Msg("skipping malformed event")
		return
	}

	entry := AuditLogEntry{
		ID:          uuid.New(),
		Channel:     msg.Channel,
		Event:       ev.Type,
		Details:     json.RawMessage(msg.Payload),
		ProcessedAt: w.now().UTC(),
		Status:      StatusEmailSent,
	}

	if err := w.audit.Append(ctx, entry); err != nil {
		w.metrics.EventsProcessed.WithLabelValues(metrics.ProcessedError).Inc()
		w.log.Error().
			Err(err).
			Str("appointment_id", ev.BookingID.String()).
			Msg("failed to record notification")
		return
	}

	w.metrics.EventsProcessed.WithLabelValues(metrics.ProcessedOK).Inc()
	w.log.Info().
		Str("event", ev.Type).
		Str("appointment_id", ev.BookingID.String()).
		Str("patient_id", ev.ClinicalRecordID.String()).
		Msg("notification email simulated")
}
