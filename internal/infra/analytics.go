package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Analytics publishes game events (session lifecycle, purchases, encounter
// resolutions) to a Kafka stream. Emission is asynchronous through a buffered
// channel so a purchase never blocks on the broker; when disabled every call
// is a no-op.
type Analytics struct {
	writer  *kafka.Writer
	topic   string
	logger  *slog.Logger
	events  chan analyticsEvent
	enabled bool
}

type analyticsEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// NewAnalytics creates the publisher. With no brokers, no topic, or enabled
// false, it stays disabled.
func NewAnalytics(brokers, topic string, enabled bool, logger *slog.Logger) *Analytics {
	if !enabled || brokers == "" || topic == "" {
		logger.Info("analytics publisher disabled")
		return &Analytics{logger: logger}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("analytics publisher initialized", "brokers", brokers, "topic", topic)
	return &Analytics{
		writer:  w,
		topic:   topic,
		logger:  logger,
		events:  make(chan analyticsEvent, 256),
		enabled: true,
	}
}

// Start drains the event channel until ctx is cancelled.
func (a *Analytics) Start(ctx context.Context) {
	if !a.enabled {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-a.events:
				a.publish(ctx, ev)
			}
		}
	}()
}

// Emit queues one event. Drops the event if the buffer is full rather than
// stalling the caller.
func (a *Analytics) Emit(eventType string, payload map[string]any) {
	if !a.enabled {
		return
	}
	ev := analyticsEvent{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
	select {
	case a.events <- ev:
	default:
		a.logger.Warn("analytics buffer full, event dropped", "type", eventType)
	}
}

func (a *Analytics) publish(ctx context.Context, ev analyticsEvent) {
	value, err := json.Marshal(ev)
	if err != nil {
		a.logger.Error("marshal analytics event", "error", err, "type", ev.Type)
		return
	}
	if err := a.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Type),
		Value: value,
	}); err != nil {
		a.logger.Error("publish analytics event", "error", err, "type", ev.Type)
	}
}

// Close shuts down the Kafka writer.
func (a *Analytics) Close() error {
	if a.writer != nil {
		return a.writer.Close()
	}
	return nil
}
