package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"
)

// Message is the relay wire format. Channel is a room channel
// ("room-<code>"), Event is the feed event type, Data the payload.
// The reserved event "subscribe" registers the sender on Channel
// instead of broadcasting.
type Message struct {
	Channel string                 `json:"channel"`
	Event   string                 `json:"event"`
	Data    map[string]interface{} `json:"data"`
}

const eventSubscribe = "subscribe"

const writeWait = 5 * time.Second

type Subscription struct {
	Conn    *websocket.Conn
	Channel string
}

type Hub struct {
	Channels    map[string]map[*websocket.Conn]bool
	Broadcast   chan Message
	Subscribe   chan Subscription
	Unsubscribe chan *websocket.Conn
	mutex       sync.RWMutex
	log         *slog.Logger
}

func NewHub(
	log *slog.Logger,
) *Hub {
	return &Hub{
		Channels:    make(map[string]map[*websocket.Conn]bool),
		Broadcast:   make(chan Message),
		Subscribe:   make(chan Subscription),
		Unsubscribe: make(chan *websocket.Conn),
		log:         log,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (hub *Hub) run() {
	for {
		select {
		case sub := <-hub.Subscribe:
			if hub.Channels[sub.Channel] == nil {
				hub.Channels[sub.Channel] = make(map[*websocket.Conn]bool)
			}
			hub.Channels[sub.Channel][sub.Conn] = true
		case conn := <-hub.Unsubscribe:
			for _, receivers := range hub.Channels {
				delete(receivers, conn)
			}
		case message := <-hub.Broadcast:
			receivers, ok := hub.Channels[message.Channel]
			if !ok {
				continue
			}

			data, err := json.Marshal(message)
			if err != nil {
				hub.log.Error("failed to marshal message", sl.Err(err))

				continue
			}

			hub.log.Debug("broadcasting message", sl.String("channel", message.Channel),
				sl.String("event", message.Event))

			for conn := range receivers {
				// a stalled receiver must not wedge the broadcast loop
				// for every channel; drop it and let its read loop
				// clean up
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					hub.log.Error("failed to write message, dropping receiver", sl.Err(err))

					delete(receivers, conn)

					_ = conn.Close()
				}
			}
		}
	}
}

func (hub *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Error("failed to upgrade connection", sl.Err(err))

		return
	}
	defer func(ws *websocket.Conn) {
		hub.Unsubscribe <- ws

		if err = ws.Close(); err != nil {
			hub.log.Error("failed to close connection", sl.Err(err))
		}
	}(ws)

	// a client may pre-subscribe to its room channel via the query
	// string before any message flows
	if channel := r.URL.Query().Get("room"); channel != "" {
		hub.Subscribe <- Subscription{Conn: ws, Channel: channel}
	}

	for {
		_, p, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var message Message

		if err = json.Unmarshal(p, &message); err != nil {
			hub.log.Error("failed to unmarshal message", sl.Err(err))

			continue
		}

		hub.log.Debug("incoming message", sl.String("channel", message.Channel),
			sl.String("event", message.Event))

		// subscription is explicit: publishing on a channel must not
		// register the sender on it, or a write-only publisher ends up
		// receiving an echo of everything it sends
		if message.Event == eventSubscribe {
			hub.Subscribe <- Subscription{Conn: ws, Channel: message.Channel}

			continue
		}

		hub.Broadcast <- message
	}
}

func (hub *Hub) RunServer() {
	go hub.run()
}
