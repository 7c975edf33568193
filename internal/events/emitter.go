package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Sink is the transport, normally *kafka.Producer from internal/kafka.
type Sink interface {
	Publish(topic string, key, value []byte, headers ...kafka.Header)
}

// Emitter frames payloads into envelopes. A nil *Emitter discards events,
// which keeps tests and tools free of a broker.
type Emitter struct {
	Sink     Sink
	Producer string
	Now      func() time.Time
}

func NewEmitter(sink Sink, producer string) *Emitter {
	return &Emitter{Sink: sink, Producer: producer, Now: time.Now}
}

// Emit publishes one event keyed by key, typically the aggregate id, so
// all events of one aggregate stay ordered in a partition.
func (e *Emitter) Emit(ctx context.Context, topic, eventType, key string, payload any) {
	if e == nil || e.Sink == nil {
		return
	}
	env, err := e.envelope(ctx, eventType, key, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("event dropped")
		return
	}
	b, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("event dropped")
		return
	}
	e.Sink.Publish(topic, []byte(key), b,
		kafka.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(Version))},
	)
}

func (e *Emitter) envelope(ctx context.Context, eventType, key string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode payload: %w", err)
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  Version,
		OccurredAt:    now().UTC(),
		Producer:      e.Producer,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: key,
		Payload:       raw,
	}, nil
}
