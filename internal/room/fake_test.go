package room

import (
	"errors"
	"sync"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	"github.com/Shariar-hash/WheellWise/internal/repository"
)

// fakeStore is an in-memory RoomStore standing in for the MySQL
// repositories. Mutex-guarded because coordinator jobs run on worker
// goroutines.
type fakeStore struct {
	mu sync.Mutex

	rooms    map[string]*model.Room
	messages []model.ChatMessage
	events   []model.SpinEvent

	failSpinStateWrites int
	failMessageSaves    int
	nextID              int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms: make(map[string]*model.Room),
	}
}

func (f *fakeStore) nextIDLocked() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) GetRoomByCode(code string) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	found, ok := f.rooms[code]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}

	snapshot := *found
	snapshot.Participants = append([]string(nil), found.Participants...)
	snapshot.Options = append([]model.WheelOption(nil), found.Options...)

	return &snapshot, nil
}

func (f *fakeStore) SaveRoom(r model.Room) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r.ID = f.nextIDLocked()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	f.rooms[r.Code] = &r

	return r.ID, nil
}

func (f *fakeStore) UpdateParticipants(code string, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	found, ok := f.rooms[code]
	if !ok {
		return repository.ErrRoomNotFound
	}

	found.Participants = append([]string(nil), names...)
	found.UpdatedAt = time.Now()

	return nil
}

func (f *fakeStore) UpdateOptions(code string, options []model.WheelOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	found, ok := f.rooms[code]
	if !ok {
		return repository.ErrRoomNotFound
	}

	found.Options = append([]model.WheelOption(nil), options...)
	found.UpdatedAt = time.Now()

	return nil
}

func (f *fakeStore) UpdateSpinState(code string, spinning bool, result string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSpinStateWrites > 0 {
		f.failSpinStateWrites--

		return errors.New("store unavailable")
	}

	found, ok := f.rooms[code]
	if !ok {
		return repository.ErrRoomNotFound
	}

	found.IsSpinning = spinning
	found.CurrentResult = result
	found.UpdatedAt = time.Now()

	return nil
}

func (f *fakeStore) Touch(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	found, ok := f.rooms[code]
	if !ok {
		return repository.ErrRoomNotFound
	}

	found.UpdatedAt = time.Now()

	return nil
}

func (f *fakeStore) SaveMessage(message model.ChatMessage) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failMessageSaves > 0 {
		f.failMessageSaves--

		return 0, errors.New("store unavailable")
	}

	message.ID = f.nextIDLocked()
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, message)

	return message.ID, nil
}

func (f *fakeStore) GetMessagesAfter(roomCode string, afterID int64) ([]model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.ChatMessage

	for _, m := range f.messages {
		if m.RoomCode == roomCode && m.ID > afterID {
			out = append(out, m)
		}
	}

	return out, nil
}

func (f *fakeStore) LatestMessageID(roomCode string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest int64

	for _, m := range f.messages {
		if m.RoomCode == roomCode && m.ID > latest {
			latest = m.ID
		}
	}

	return latest, nil
}

func (f *fakeStore) SaveSpinEvent(ev model.SpinEvent) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ev.ID = f.nextIDLocked()
	ev.CreatedAt = time.Now()
	f.events = append(f.events, ev)

	return ev.ID, nil
}

func (f *fakeStore) GetEventsAfter(roomCode string, afterID int64) ([]model.SpinEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.SpinEvent

	for _, ev := range f.events {
		if ev.RoomCode == roomCode && ev.ID > afterID {
			out = append(out, ev)
		}
	}

	return out, nil
}

func (f *fakeStore) LatestEventID(roomCode string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest int64

	for _, ev := range f.events {
		if ev.RoomCode == roomCode && ev.ID > latest {
			latest = ev.ID
		}
	}

	return latest, nil
}

// room returns the live row, copied, for assertions.
func (f *fakeStore) room(code string) *model.Room {
	f.mu.Lock()
	defer f.mu.Unlock()

	found, ok := f.rooms[code]
	if !ok {
		return nil
	}

	snapshot := *found

	return &snapshot
}

// fixedSource forces the wheel onto a known option.
type fixedSource struct {
	value float64
}

func (s fixedSource) Float64() float64 {
	return s.value
}
