package capture

import (
	"sync"

	"github.com/AlbertLei-Web3/AlphaRadar/db"
	"github.com/AlbertLei-Web3/AlphaRadar/telemetry"
)

// Broadcaster fans captured messages out to live-tail subscribers (the SSE
// endpoint). Slow subscribers lose messages instead of blocking the capture
// path.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan db.SignalMessage]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan db.SignalMessage]struct{})}
}

// Subscribe returns a buffered channel receiving future captures. Callers must
// Unsubscribe when done.
func (b *Broadcaster) Subscribe(buf int) chan db.SignalMessage {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan db.SignalMessage, buf)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	n := len(b.subs)
	b.mu.Unlock()
	if telemetry.SSEClientsGauge != nil {
		telemetry.SSEClientsGauge.Set(float64(n))
	}
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Broadcaster) Unsubscribe(ch chan db.SignalMessage) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	n := len(b.subs)
	b.mu.Unlock()
	if telemetry.SSEClientsGauge != nil {
		telemetry.SSEClientsGauge.Set(float64(n))
	}
}

// Publish delivers m to every subscriber whose buffer has room.
func (b *Broadcaster) Publish(m db.SignalMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- m:
		default:
			// Drop for this subscriber rather than stall the recorder.
		}
	}
}
