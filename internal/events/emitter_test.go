package events

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic   string
	key     []byte
	value   []byte
	headers []kafka.Header
}

type recordingSink struct{ msgs []published }

func (s *recordingSink) Publish(topic string, key, value []byte, headers ...kafka.Header) {
	s.msgs = append(s.msgs, published{topic: topic, key: key, value: value, headers: headers})
}

func TestEmitFramesEnvelope(t *testing.T) {
	sink := &recordingSink{}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := &Emitter{Sink: sink, Producer: "biashara-api", Now: func() time.Time { return fixed }}

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	e.Emit(ctx, TopicStockMoved, EventStockMoved, "prod-1", StockMovedPayload{
		ProductID: "prod-1", MovementType: "SALE", Quantity: 3, PreviousStock: 5, NewStock: 2,
	})

	require.Len(t, sink.msgs, 1)
	msg := sink.msgs[0]
	assert.Equal(t, TopicStockMoved, msg.topic)
	assert.Equal(t, []byte("prod-1"), msg.key)
	assert.Equal(t, "x-event-type", msg.headers[0].Key)
	assert.Equal(t, []byte(EventStockMoved), msg.headers[0].Value)

	env, err := DecodeEnvelope(msg.value)
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, EventStockMoved, env.EventType)
	assert.Equal(t, Version, env.EventVersion)
	assert.Equal(t, "biashara-api", env.Producer)
	assert.Equal(t, "req-1", env.TraceID)
	assert.Equal(t, "prod-1", env.CorrelationID)
	assert.True(t, fixed.Equal(env.OccurredAt))

	p, err := UnwrapPayload[StockMovedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NewStock)
	assert.Equal(t, "SALE", p.MovementType)
}

func TestNilEmitterIsNoop(t *testing.T) {
	var e *Emitter
	assert.NotPanics(t, func() {
		e.Emit(context.Background(), TopicOrderCreated, EventOrderCreated, "o1", OrderCreatedPayload{})
	})
}

func TestDecodeEnvelopeInvalid(t *testing.T) {
	_, err := DecodeEnvelope([]byte("{"))
	assert.Error(t, err)
}
