// Package eventstest records published events in memory.
package eventstest

import (
	"sync"

	"github.com/dukapilot/biashara360/internal/events"
	"github.com/segmentio/kafka-go"
)

type Message struct {
	Topic    string
	Key      string
	Envelope events.Envelope
}

// Recorder is an events.Sink that keeps every message it is handed.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Publish(topic string, key, value []byte, _ ...kafka.Header) {
	env, err := events.DecodeEnvelope(value)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Message{Topic: topic, Key: string(key), Envelope: env})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Of returns the payloads published on topic, decoded as T.
func Of[T any](r *Recorder, topic string) []T {
	var out []T
	for _, m := range r.Messages() {
		if m.Topic != topic {
			continue
		}
		p, err := events.UnwrapPayload[T](m.Envelope.Payload)
		if err != nil {
			panic(err)
		}
		out = append(out, p)
	}
	return out
}

// Emitter returns an emitter wired to a fresh recorder.
func Emitter() (*events.Emitter, *Recorder) {
	r := &Recorder{}
	return events.NewEmitter(r, "test"), r
}
