package feed

import (
	"context"
	"sync"

	"golang.org/x/exp/slog"
)

// Broker is the in-process push transport: Publish fans an event out to
// every subscriber of the room, immediately. It backs push mode when no
// external pusher is configured, and tests run sessions against it
// without any store polling.
type Broker struct {
	log  *slog.Logger
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewBroker(log *slog.Logger) *Broker {
	return &Broker{
		log:  log,
		subs: make(map[string]map[chan Event]struct{}),
	}
}

func (b *Broker) Subscribe(ctx context.Context, roomCode string) (<-chan Event, error) {
	out := make(chan Event, 16)

	b.mu.Lock()
	if b.subs[roomCode] == nil {
		b.subs[roomCode] = make(map[chan Event]struct{})
	}

	b.subs[roomCode][out] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()

		b.mu.Lock()
		delete(b.subs[roomCode], out)
		b.mu.Unlock()

		close(out)
	}()

	return out, nil
}

func (b *Broker) Publish(roomCode string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[roomCode] {
		select {
		case sub <- event:
		default:
			// a stalled subscriber must not stall the room; poll mode
			// resyncs it from the next snapshot anyway
			b.log.Warn("dropping event for slow subscriber",
				slog.String("room_code", roomCode),
				slog.String("event", string(event.Type)))
		}
	}
}
