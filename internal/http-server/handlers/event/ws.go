package event

import (
	"encoding/json"
	"sync"

	"github.com/Shariar-hash/WheellWise/internal/feed"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	wshandler "github.com/Shariar-hash/WheellWise/internal/ws/handler"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"
)

// WSEvent publishes through the self-hosted ws relay (cmd/ws) instead
// of Pusher. One outbound connection, shared by every room.
type WSEvent struct {
	log  *slog.Logger
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewWSEvent(log *slog.Logger, conn *websocket.Conn) *WSEvent {
	return &WSEvent{
		log:  log,
		conn: conn,
	}
}

func (w *WSEvent) TriggerEvent(channel string, eventName string, data map[string]interface{}) error {
	message := wshandler.Message{
		Channel: channel,
		Event:   eventName,
		Data:    data,
	}

	raw, err := json.Marshal(message)
	if err != nil {
		return err
	}

	// gorilla conns allow one concurrent writer
	w.mu.Lock()
	defer w.mu.Unlock()

	if err = w.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		w.log.Error("failed to send ws event", sl.Err(err))
		return err
	}

	return nil
}

func (w *WSEvent) Publish(roomCode string, ev feed.Event) {
	data, err := EventData(ev)
	if err != nil {
		w.log.Error("failed to encode event payload", sl.Err(err))

		return
	}

	_ = w.TriggerEvent(RoomChannel(roomCode), string(ev.Type), data)
}
