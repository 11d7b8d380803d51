package room

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/config"
	"github.com/Shariar-hash/WheellWise/internal/feed"
	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/Shariar-hash/WheellWise/internal/repository"
	"golang.org/x/exp/slog"
)

var (
	ErrForbidden    = errors.New("only the room owner may do that")
	ErrEmptyMessage = errors.New("message is empty")
	ErrNotJoined    = errors.New("session has not joined a room")
)

type State int

const (
	StateDisconnected State = iota
	StateJoining
	StateJoined
)

type Role int

const (
	RoleMember Role = iota
	RoleOwner
)

// Identity is what this participant presents to the room. Email is the
// durable identifier when the participant is signed in; Name alone for
// guests.
type Identity struct {
	Name  string
	Email string
	Image string
}

type Store interface {
	GetRoomByCode(code string) (*model.Room, error)
	SaveRoom(room model.Room) (int64, error)
	UpdateParticipants(code string, names []string) error
	UpdateOptions(code string, options []model.WheelOption) error
	Touch(code string) error
}

type ChatSaver interface {
	SaveMessage(message model.ChatMessage) (int64, error)
}

const chatHistoryLimit = 50

// Session is one participant's membership in one room. All state below
// is driven from a single event loop per client; deliveries via
// OnChange are the only path remote changes reach the local projection,
// which is replaced wholesale on every snapshot. The session's own
// pending writes are the one exception (optimistic echo).
type Session struct {
	log       *slog.Logger
	store     Store
	chat      ChatSaver
	feed      feed.Feed
	publisher feed.Publisher

	identity Identity
	code     string
	state    State
	role     Role

	room     *model.Room
	messages []model.ChatMessage
	target   string
	draft    string
}

func NewSession(
	log *slog.Logger,
	store Store,
	chat ChatSaver,
	changeFeed feed.Feed,
	publisher feed.Publisher,
	identity Identity) *Session {
	return &Session{
		log:       log,
		store:     store,
		chat:      chat,
		feed:      changeFeed,
		publisher: publisher,
		identity:  identity,
		state:     StateDisconnected,
		role:      RoleMember,
	}
}

// Join reads or creates the room and registers this participant.
// Ownership is decided once, here, by precedence: an explicit claim
// from the join request, then a durable-identity match, then a
// display-name match. It is convenience-level trust, not a security
// boundary; nothing stops a second device from claiming the same
// owner identity.
func (s *Session) Join(code string, ownerClaim bool) error {
	const op = "room.session.Join"

	log := s.log.With(
		slog.String("op", op),
		slog.String("room_code", code),
		slog.String("name", s.identity.Name),
	)

	s.state = StateJoining
	s.code = code

	found, err := s.store.GetRoomByCode(code)
	if err != nil && !errors.Is(err, repository.ErrRoomNotFound) {
		s.state = StateDisconnected

		return fmt.Errorf("%s: %w", op, err)
	}

	if found == nil {
		if !ownerClaim {
			s.state = StateDisconnected

			return fmt.Errorf("%s: %w", op, repository.ErrRoomNotFound)
		}

		created := model.Room{
			Code:         code,
			OwnerName:    s.identity.Name,
			OwnerEmail:   s.identity.Email,
			Participants: []string{s.identity.Name},
			Options:      DefaultOptions(),
		}

		id, err := s.store.SaveRoom(created)
		if err != nil {
			s.state = StateDisconnected

			return fmt.Errorf("%s: %w", op, err)
		}

		created.ID = id
		created.CreatedAt = time.Now()
		created.UpdatedAt = created.CreatedAt

		s.room = &created
		s.role = RoleOwner
		s.state = StateJoined

		log.Info("room created")

		s.echoRoom()

		return nil
	}

	s.role = resolveRole(found, s.identity, ownerClaim)

	if !found.HasParticipant(s.identity.Name) {
		// read-modify-write on the whole list; two clients joining in
		// the same window can race and the slower write wins (accepted
		// consistency model, store serializes per row)
		found.Participants = append(found.Participants, s.identity.Name)

		if err = s.store.UpdateParticipants(code, found.Participants); err != nil {
			s.state = StateDisconnected

			return fmt.Errorf("%s: %w", op, err)
		}
	}

	s.room = found
	s.state = StateJoined

	log.Info("joined room", slog.Bool("owner", s.role == RoleOwner))

	s.echoRoom()

	return nil
}

// Leave removes this participant's name. Best-effort: if the process
// dies before the write lands, the stale name stays listed until some
// external cleanup runs.
func (s *Session) Leave() error {
	const op = "room.session.Leave"

	if s.state != StateJoined {
		return nil
	}

	s.state = StateDisconnected

	remaining := make([]string, 0, len(s.room.Participants))
	for _, p := range s.room.Participants {
		if p != s.identity.Name {
			remaining = append(remaining, p)
		}
	}

	if err := s.store.UpdateParticipants(s.code, remaining); err != nil {
		s.log.Error("failed to leave room", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	s.room.Participants = remaining

	s.echoRoom()

	return nil
}

// Heartbeat touches the room's last-modified marker. Fire-and-forget;
// a missed heartbeat is logged and never surfaced.
func (s *Session) Heartbeat() {
	if s.state != StateJoined {
		return
	}

	if err := s.store.Touch(s.code); err != nil {
		s.log.Debug("heartbeat failed", sl.Err(err))
	}
}

// OnChange consumes one feed delivery. Room snapshots replace the local
// projection wholesale; the spin edge idle→spinning pins the
// transmitted result as the animation target, and the settle edge
// releases it.
func (s *Session) OnChange(ev feed.Event) {
	switch ev.Type {
	case feed.RoomUpdated:
		if ev.Room == nil {
			return
		}

		prev := s.room
		s.room = ev.Room

		if ev.Room.IsSpinning && (prev == nil || !prev.IsSpinning) {
			s.target = ev.Room.CurrentResult
		}

		if !ev.Room.IsSpinning && prev != nil && prev.IsSpinning {
			s.target = ""
		}
	case feed.ChatAppended:
		if ev.Message == nil {
			return
		}

		s.messages = append(s.messages, *ev.Message)
		if len(s.messages) > chatHistoryLimit {
			s.messages = s.messages[len(s.messages)-chatHistoryLimit:]
		}
	case feed.SpinAppended:
		if ev.SpinEvent == nil {
			return
		}

		// the event already carries the final answer; the local
		// animation runs toward this known destination
		s.target = ev.SpinEvent.Result

		if s.room != nil {
			s.room.IsSpinning = true
			s.room.CurrentResult = ev.SpinEvent.Result
		}
	}
}

// UpdateOptions writes the full options array. Owner-only at this
// layer; the storage layer does not enforce it.
func (s *Session) UpdateOptions(options []model.WheelOption) error {
	const op = "room.session.UpdateOptions"

	if s.state != StateJoined {
		return ErrNotJoined
	}

	if s.role != RoleOwner {
		return ErrForbidden
	}

	if err := s.store.UpdateOptions(s.code, options); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.room.Options = options

	s.echoRoom()

	return nil
}

func (s *Session) SetDraft(text string) {
	s.draft = text
}

func (s *Session) Draft() string {
	return s.draft
}

// SendMessage appends the current draft as a chat record. The draft is
// cleared before the write (optimistic) and restored when it fails.
func (s *Session) SendMessage() error {
	const op = "room.session.SendMessage"

	if s.state != StateJoined {
		return ErrNotJoined
	}

	text := strings.TrimSpace(s.draft)
	if text == "" {
		return ErrEmptyMessage
	}

	s.draft = ""

	message := model.ChatMessage{
		RoomCode:    s.code,
		SenderName:  s.identity.Name,
		SenderEmail: s.identity.Email,
		SenderImage: s.identity.Image,
		Message:     text,
		CreatedAt:   time.Now(),
	}

	id, err := s.chat.SaveMessage(message)
	if err != nil {
		s.draft = text

		return fmt.Errorf("%s: %w", op, err)
	}

	message.ID = id

	if s.publisher != nil {
		s.publisher.Publish(s.code, feed.Event{Type: feed.ChatAppended, Message: &message})
	}

	return nil
}

// Run drives the session until ctx is cancelled: feed deliveries into
// OnChange, heartbeats on the ticker. Leave fires on the way out.
func (s *Session) Run(ctx context.Context, heartbeatEvery time.Duration) error {
	const op = "room.session.Run"

	events, err := s.feed.Subscribe(ctx, s.code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ticker := time.NewTicker(heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.Leave()

			return nil
		case ev, ok := <-events:
			if !ok {
				_ = s.Leave()

				return nil
			}

			s.OnChange(ev)
		case <-ticker.C:
			s.Heartbeat()
		}
	}
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) IsOwner() bool {
	return s.role == RoleOwner
}

func (s *Session) Room() *model.Room {
	return s.room
}

func (s *Session) Messages() []model.ChatMessage {
	return s.messages
}

// Target is the predetermined winner the running animation must land
// on; empty outside a spin.
func (s *Session) Target() string {
	return s.target
}

func (s *Session) echoRoom() {
	if s.publisher == nil || s.room == nil {
		return
	}

	snapshot := *s.room
	snapshot.UpdatedAt = time.Now()

	s.publisher.Publish(s.code, feed.Event{Type: feed.RoomUpdated, Room: &snapshot})
}

func resolveRole(found *model.Room, identity Identity, ownerClaim bool) Role {
	if ownerClaim {
		return RoleOwner
	}

	if identity.Email != "" && identity.Email == found.OwnerEmail {
		return RoleOwner
	}

	if identity.Name == found.OwnerName {
		return RoleOwner
	}

	return RoleMember
}

// DefaultOptions builds the default wheel every new room starts with.
func DefaultOptions() []model.WheelOption {
	options := make([]model.WheelOption, 0, len(config.DefaultWheelConfig.Options))

	for i, opt := range config.DefaultWheelConfig.Options {
		options = append(options, model.WheelOption{
			ID:     strconv.Itoa(i + 1),
			Label:  opt.Label,
			Color:  opt.Color,
			Weight: 1,
			Count:  1,
		})
	}

	return options
}
