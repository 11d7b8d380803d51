package event

import (
	"encoding/json"

	"github.com/Shariar-hash/WheellWise/internal/feed"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"
)

type PusherEvent struct {
	log    *slog.Logger
	pusher *pusher.Client
}

func NewPusherEvent(log *slog.Logger, pusherClient *pusher.Client) *PusherEvent {
	return &PusherEvent{
		log:    log,
		pusher: pusherClient,
	}
}

func (p *PusherEvent) TriggerEvent(channel string, eventName string, data map[string]interface{}) error {
	if err := p.pusher.Trigger(channel, eventName, data); err != nil {
		p.log.Error("failed to trigger pusher event", sl.Err(err))
		return err
	}
	return nil
}

// Publish adapts a feed event onto a pusher channel named after the
// room. Delivery failures are logged and swallowed; poll mode covers
// any subscriber the push never reached.
func (p *PusherEvent) Publish(roomCode string, ev feed.Event) {
	data, err := EventData(ev)
	if err != nil {
		p.log.Error("failed to encode event payload", sl.Err(err))

		return
	}

	_ = p.TriggerEvent(RoomChannel(roomCode), string(ev.Type), data)
}

func RoomChannel(roomCode string) string {
	return "room-" + roomCode
}

// EventData flattens the event payload into the generic map shape the
// push transports carry on the wire.
func EventData(ev feed.Event) (map[string]interface{}, error) {
	var payload interface{}

	switch ev.Type {
	case feed.RoomUpdated:
		payload = ev.Room
	case feed.ChatAppended:
		payload = ev.Message
	case feed.SpinAppended:
		payload = ev.SpinEvent
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}

	if err = json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}

	return data, nil
}
