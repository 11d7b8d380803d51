package room

import (
	"context"
	"testing"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/config"
	"github.com/Shariar-hash/WheellWise/internal/feed"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/job"
	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	"github.com/Shariar-hash/WheellWise/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newTestSession(store *fakeStore, identity Identity) *Session {
	return NewSession(discardLogger(), store, store, nil, nil, identity)
}

func TestJoinCreatesRoomForOwnerClaim(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store, Identity{Name: "Alice"})

	err := session.Join("ABC123", true)
	require.NoError(t, err)

	assert.Equal(t, StateJoined, session.State())
	assert.True(t, session.IsOwner())

	saved := store.room("ABC123")
	require.NotNil(t, saved)
	assert.Equal(t, "Alice", saved.OwnerName)
	assert.Equal(t, []string{"Alice"}, saved.Participants)
	assert.Len(t, saved.Options, 4)
}

func TestJoinFailsWithoutClaimWhenRoomAbsent(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store, Identity{Name: "Bob"})

	err := session.Join("NOPE42", false)
	require.ErrorIs(t, err, repository.ErrRoomNotFound)

	assert.Equal(t, StateDisconnected, session.State())
}

func TestJoinAppendsParticipantInOrder(t *testing.T) {
	store := newFakeStore()

	owner := newTestSession(store, Identity{Name: "Alice"})
	require.NoError(t, owner.Join("ABC123", true))

	member := newTestSession(store, Identity{Name: "Bob"})
	require.NoError(t, member.Join("ABC123", false))

	assert.False(t, member.IsOwner())
	assert.Equal(t, []string{"Alice", "Bob"}, store.room("ABC123").Participants)
}

func TestJoinIsIdempotentOnName(t *testing.T) {
	store := newFakeStore()

	owner := newTestSession(store, Identity{Name: "Alice"})
	require.NoError(t, owner.Join("ABC123", true))

	again := newTestSession(store, Identity{Name: "Alice"})
	require.NoError(t, again.Join("ABC123", false))

	assert.Equal(t, []string{"Alice"}, store.room("ABC123").Participants)
}

func TestJoinOwnershipPrecedence(t *testing.T) {
	cases := []struct {
		name      string
		identity  Identity
		claim     bool
		wantOwner bool
	}{
		{
			name:      "ExplicitClaim",
			identity:  Identity{Name: "Mallory"},
			claim:     true,
			wantOwner: true,
		},
		{
			name:      "EmailMatch",
			identity:  Identity{Name: "Alice on phone", Email: "alice@example.com"},
			wantOwner: true,
		},
		{
			name:      "NameMatch",
			identity:  Identity{Name: "Alice"},
			wantOwner: true,
		},
		{
			name:     "NoMatch",
			identity: Identity{Name: "Bob", Email: "bob@example.com"},
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()

			owner := newTestSession(store, Identity{Name: "Alice", Email: "alice@example.com"})
			require.NoError(t, owner.Join("ABC123", true))

			session := newTestSession(store, tc.identity)
			require.NoError(t, session.Join("ABC123", tc.claim))

			assert.Equal(t, tc.wantOwner, session.IsOwner())
		})
	}
}

func TestLeaveRemovesOwnName(t *testing.T) {
	store := newFakeStore()

	owner := newTestSession(store, Identity{Name: "Alice"})
	require.NoError(t, owner.Join("ABC123", true))

	member := newTestSession(store, Identity{Name: "Bob"})
	require.NoError(t, member.Join("ABC123", false))

	require.NoError(t, member.Leave())

	assert.Equal(t, StateDisconnected, member.State())
	assert.Equal(t, []string{"Alice"}, store.room("ABC123").Participants)
}

func TestUpdateOptionsForbiddenForMember(t *testing.T) {
	store := newFakeStore()

	owner := newTestSession(store, Identity{Name: "Alice"})
	require.NoError(t, owner.Join("ABC123", true))

	member := newTestSession(store, Identity{Name: "Bob"})
	require.NoError(t, member.Join("ABC123", false))

	err := member.UpdateOptions([]model.WheelOption{{ID: "1", Label: "Pizza", Color: "#fff"}})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, owner.UpdateOptions([]model.WheelOption{{ID: "1", Label: "Pizza", Color: "#fff"}}))
	assert.Len(t, store.room("ABC123").Options, 1)
}

func TestSendMessageClearsAndRestoresDraft(t *testing.T) {
	store := newFakeStore()

	session := newTestSession(store, Identity{Name: "Alice"})
	require.NoError(t, session.Join("ABC123", true))

	session.SetDraft("   ")
	assert.ErrorIs(t, session.SendMessage(), ErrEmptyMessage)

	store.failMessageSaves = 1
	session.SetDraft("hello room")
	require.Error(t, session.SendMessage())
	assert.Equal(t, "hello room", session.Draft(), "draft must be restored on failure")

	require.NoError(t, session.SendMessage())
	assert.Empty(t, session.Draft())
	require.Len(t, store.messages, 1)
	assert.Equal(t, "hello room", store.messages[0].Message)
}

func TestOnChangeReplacesProjectionWholesale(t *testing.T) {
	store := newFakeStore()

	session := newTestSession(store, Identity{Name: "Bob"})
	require.NoError(t, session.Join("ABC123", true))

	update := &model.Room{
		Code:          "ABC123",
		OwnerName:     "Alice",
		Participants:  []string{"Alice", "Bob", "Carol"},
		IsSpinning:    true,
		CurrentResult: "🍌 Banana",
		UpdatedAt:     time.Now(),
	}

	session.OnChange(feed.Event{Type: feed.RoomUpdated, Room: update})

	assert.Equal(t, update, session.Room())
	assert.Equal(t, "🍌 Banana", session.Target(), "spin edge must pin the transmitted result")

	settled := *update
	settled.IsSpinning = false
	session.OnChange(feed.Event{Type: feed.RoomUpdated, Room: &settled})

	assert.Empty(t, session.Target())
	assert.Equal(t, "🍌 Banana", session.Room().CurrentResult)
}

func TestOnChangeSpinEventPinsTarget(t *testing.T) {
	store := newFakeStore()

	session := newTestSession(store, Identity{Name: "Bob"})
	require.NoError(t, session.Join("ABC123", true))

	session.OnChange(feed.Event{
		Type:      feed.SpinAppended,
		SpinEvent: &model.SpinEvent{RoomCode: "ABC123", Result: "🍇 Grape", SpunBy: "Alice"},
	})

	assert.Equal(t, "🍇 Grape", session.Target())
	assert.True(t, session.Room().IsSpinning)
}

func TestOnChangeKeepsBoundedChatHistory(t *testing.T) {
	store := newFakeStore()

	session := newTestSession(store, Identity{Name: "Bob"})
	require.NoError(t, session.Join("ABC123", true))

	for i := 0; i < chatHistoryLimit+10; i++ {
		session.OnChange(feed.Event{
			Type:    feed.ChatAppended,
			Message: &model.ChatMessage{RoomCode: "ABC123", SenderName: "Alice", Message: "hi"},
		})
	}

	assert.Len(t, session.Messages(), chatHistoryLimit)
}

// The full §convergence scenario: Alice creates the room, Bob joins,
// Alice spins with a draw forced into Banana's cumulative range, and
// both independently-polling sessions display Banana within one poll
// interval.
func TestSpinConvergesAcrossPollingSessions(t *testing.T) {
	store := newFakeStore()

	pollFeed := feed.NewPollFeed(discardLogger(), store, store, store,
		5*time.Millisecond, 5*time.Millisecond)

	alice := NewSession(discardLogger(), store, store, pollFeed, nil, Identity{Name: "Alice"})
	require.NoError(t, alice.Join("ABC123", true))

	bob := NewSession(discardLogger(), store, store, pollFeed, nil, Identity{Name: "Bob"})
	require.NoError(t, bob.Join("ABC123", false))

	assert.Equal(t, []string{"Alice", "Bob"}, store.room("ABC123").Participants)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aliceEvents, err := pollFeed.Subscribe(ctx, "ABC123")
	require.NoError(t, err)

	bobEvents, err := pollFeed.Subscribe(ctx, "ABC123")
	require.NoError(t, err)

	queue := job.NewQueue(16)
	job.NewWorkerPool(1, queue).Start()

	// defaults are Apple, Banana, Orange, Grape at one unit each:
	// total 4, draw 0.3*4 = 1.2 lands in Banana's [1, 2) range
	coordinator := NewCoordinator(discardLogger(), store, store, nil, queue,
		fixedSource{value: 0.3}, config.Spin{Duration: 30 * time.Millisecond, SettleGrace: 50 * time.Millisecond})

	spinEvent, err := coordinator.Spin("ABC123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "🍌 Banana", spinEvent.Result)

	driveUntilResult(t, alice, aliceEvents, "🍌 Banana")
	driveUntilResult(t, bob, bobEvents, "🍌 Banana")
}

func driveUntilResult(t *testing.T, session *Session, events <-chan feed.Event, want string) {
	t.Helper()

	deadline := time.After(2 * time.Second)

	for {
		select {
		case ev := <-events:
			session.OnChange(ev)

			if session.Room() != nil && session.Room().CurrentResult == want {
				return
			}
		case <-deadline:
			t.Fatalf("session never observed result %q", want)
		}
	}
}

func TestRunLeavesOnCancel(t *testing.T) {
	store := newFakeStore()

	broker := feed.NewBroker(discardLogger())

	owner := NewSession(discardLogger(), store, store, broker, broker, Identity{Name: "Alice"})
	require.NoError(t, owner.Join("ABC123", true))

	member := NewSession(discardLogger(), store, store, broker, broker, Identity{Name: "Bob"})
	require.NoError(t, member.Join("ABC123", false))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- member.Run(ctx, 10*time.Millisecond)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session loop did not stop")
	}

	assert.Equal(t, []string{"Alice"}, store.room("ABC123").Participants)
}
