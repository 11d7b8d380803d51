package feed

import (
	"context"
	"errors"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/Shariar-hash/WheellWise/internal/repository"
	"golang.org/x/exp/slog"
)

type RoomGetter interface {
	GetRoomByCode(code string) (*model.Room, error)
}

type ChatLister interface {
	GetMessagesAfter(roomCode string, afterID int64) ([]model.ChatMessage, error)
	LatestMessageID(roomCode string) (int64, error)
}

type SpinLister interface {
	GetEventsAfter(roomCode string, afterID int64) ([]model.SpinEvent, error)
	LatestEventID(roomCode string) (int64, error)
}

// PollFeed synthesizes change events by refetching the room row on a
// short interval and the chat/spin rows on a longer one. Room snapshots
// are coalesced: a participant who joins and leaves between two polls
// produces no event. Chat and spin rows are never skipped; every row
// with an id above the watermark is delivered, so a row committed in
// the same millisecond as the last-seen one still comes through.
type PollFeed struct {
	log          *slog.Logger
	rooms        RoomGetter
	chats        ChatLister
	spins        SpinLister
	roomInterval time.Duration
	rowInterval  time.Duration
}

func NewPollFeed(
	log *slog.Logger,
	rooms RoomGetter,
	chats ChatLister,
	spins SpinLister,
	roomInterval time.Duration,
	rowInterval time.Duration) *PollFeed {
	return &PollFeed{
		log:          log,
		rooms:        rooms,
		chats:        chats,
		spins:        spins,
		roomInterval: roomInterval,
		rowInterval:  rowInterval,
	}
}

func (f *PollFeed) Subscribe(ctx context.Context, roomCode string) (<-chan Event, error) {
	out := make(chan Event, 16)

	go f.run(ctx, roomCode, out)

	return out, nil
}

func (f *PollFeed) run(ctx context.Context, roomCode string, out chan<- Event) {
	const op = "feed.poll.run"

	defer close(out)

	log := f.log.With(
		slog.String("op", op),
		slog.String("room_code", roomCode),
	)

	roomTicker := time.NewTicker(f.roomInterval)
	defer roomTicker.Stop()

	rowTicker := time.NewTicker(f.rowInterval)
	defer rowTicker.Stop()

	var lastRoomUpdate time.Time

	// rows at or below the ids present at subscription time are
	// history, not changes; a failed seed read falls back to replaying
	// history, which subscribers tolerate better than a gap
	lastChatID, err := f.chats.LatestMessageID(roomCode)
	if err != nil {
		log.Debug("failed to seed chat watermark", sl.Err(err))
	}

	lastSpinID, err := f.spins.LatestEventID(roomCode)
	if err != nil {
		log.Debug("failed to seed spin watermark", sl.Err(err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-roomTicker.C:
			lastRoomUpdate = f.pollRoom(ctx, log, roomCode, lastRoomUpdate, out)
		case <-rowTicker.C:
			lastChatID = f.pollChat(ctx, log, roomCode, lastChatID, out)
			lastSpinID = f.pollSpins(ctx, log, roomCode, lastSpinID, out)
		}
	}
}

func (f *PollFeed) pollRoom(
	ctx context.Context,
	log *slog.Logger,
	roomCode string,
	lastUpdate time.Time,
	out chan<- Event) time.Time {
	room, err := f.rooms.GetRoomByCode(roomCode)
	if err != nil {
		if !errors.Is(err, repository.ErrRoomNotFound) {
			// transient store hiccups never interrupt the stream
			log.Debug("room poll failed", sl.Err(err))
		}

		return lastUpdate
	}

	// snapshots must be observed in non-decreasing timestamp order
	if !room.UpdatedAt.After(lastUpdate) {
		return lastUpdate
	}

	select {
	case out <- Event{Type: RoomUpdated, Room: room}:
	case <-ctx.Done():
	}

	return room.UpdatedAt
}

func (f *PollFeed) pollChat(
	ctx context.Context,
	log *slog.Logger,
	roomCode string,
	afterID int64,
	out chan<- Event) int64 {
	messages, err := f.chats.GetMessagesAfter(roomCode, afterID)
	if err != nil {
		log.Debug("chat poll failed", sl.Err(err))

		return afterID
	}

	for i := range messages {
		message := messages[i]

		select {
		case out <- Event{Type: ChatAppended, Message: &message}:
		case <-ctx.Done():
			return afterID
		}

		afterID = message.ID
	}

	return afterID
}

func (f *PollFeed) pollSpins(
	ctx context.Context,
	log *slog.Logger,
	roomCode string,
	afterID int64,
	out chan<- Event) int64 {
	events, err := f.spins.GetEventsAfter(roomCode, afterID)
	if err != nil {
		log.Debug("spin poll failed", sl.Err(err))

		return afterID
	}

	for i := range events {
		event := events[i]

		select {
		case out <- Event{Type: SpinAppended, SpinEvent: &event}:
		case <-ctx.Done():
			return afterID
		}

		afterID = event.ID
	}

	return afterID
}
