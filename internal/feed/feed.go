package feed

import (
	"context"

	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
)

type EventType string

const (
	RoomUpdated  EventType = "room-updated"
	ChatAppended EventType = "chat-appended"
	SpinAppended EventType = "spin-appended"
)

// Event is a single change delivery. Exactly one payload field is set,
// matching Type.
type Event struct {
	Type      EventType
	Room      *model.Room
	Message   *model.ChatMessage
	SpinEvent *model.SpinEvent
}

// Feed delivers room, chat and spin changes for one room as a uniform
// stream, whether the transport underneath pushes or polls. The channel
// is closed when ctx is cancelled.
type Feed interface {
	Subscribe(ctx context.Context, roomCode string) (<-chan Event, error)
}

// Publisher is the write side: mutators hand their change here and the
// configured transports fan it out.
type Publisher interface {
	Publish(roomCode string, event Event)
}

type multiPublisher struct {
	publishers []Publisher
}

func MultiPublisher(publishers ...Publisher) Publisher {
	return &multiPublisher{publishers: publishers}
}

func (m *multiPublisher) Publish(roomCode string, event Event) {
	for _, p := range m.publishers {
		p.Publish(roomCode, event)
	}
}
