package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishDropsWhenInboxFull(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, 1)
	t.Cleanup(p.Close)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Publish("stock.moved", []byte("p1"), []byte("a"))
		p.Publish("stock.moved", []byte("p1"), []byte("b"))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full inbox")
	}
	assert.Len(t, p.inbox, 1)
	assert.Equal(t, "a", string((<-p.inbox).Value))
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, 1)
	p.Close()
	p.Close()

	assert.NotPanics(t, func() { p.Publish("stock.moved", nil, []byte("x")) })
}
