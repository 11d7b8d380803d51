package room

import (
	"errors"
	"fmt"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/config"
	"github.com/Shariar-hash/WheellWise/internal/feed"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/job"
	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/Shariar-hash/WheellWise/internal/wheel"
	"golang.org/x/exp/slog"
)

var (
	ErrAlreadySpinning = errors.New("room is already spinning")
	ErrNoOptions       = errors.New("no options with positive effective weight")
	ErrSpinFailed      = errors.New("failed to start spin")
)

type SpinStore interface {
	GetRoomByCode(code string) (*model.Room, error)
	UpdateSpinState(code string, spinning bool, result string) error
}

type SpinEventSaver interface {
	SaveSpinEvent(event model.SpinEvent) (int64, error)
}

// Coordinator runs the owner-only spin: one selection up front, one
// atomic write carrying both the spinning flag and the final result,
// then a delayed settle write after the shared animation duration.
// Every client animates toward the result it already holds; nobody
// guesses.
type Coordinator struct {
	log         *slog.Logger
	rooms       SpinStore
	events      SpinEventSaver
	publisher   feed.Publisher
	queue       job.Queue
	rng         wheel.RandomSource
	duration    time.Duration
	settleGrace time.Duration
}

func NewCoordinator(
	log *slog.Logger,
	rooms SpinStore,
	events SpinEventSaver,
	publisher feed.Publisher,
	queue job.Queue,
	rng wheel.RandomSource,
	spinCfg config.Spin) *Coordinator {
	return &Coordinator{
		log:         log,
		rooms:       rooms,
		events:      events,
		publisher:   publisher,
		queue:       queue,
		rng:         rng,
		duration:    spinCfg.Duration,
		settleGrace: spinCfg.SettleGrace,
	}
}

func (c *Coordinator) Spin(code string, actor string) (*model.SpinEvent, error) {
	const op = "room.coordinator.Spin"

	log := c.log.With(
		slog.String("op", op),
		slog.String("room_code", code),
		slog.String("actor", actor),
	)

	current, err := c.rooms.GetRoomByCode(code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if current.IsSpinning {
		return nil, ErrAlreadySpinning
	}

	totalWeight := wheel.TotalEffectiveWeight(current.Options)
	if len(current.Options) == 0 || totalWeight <= 0 {
		return nil, ErrNoOptions
	}

	// the winner is fixed here, before any write; this single result is
	// what every participant converges on
	winner, draw, err := wheel.Spin(current.Options, c.rng)
	if err != nil {
		return nil, ErrNoOptions
	}

	if err = c.rooms.UpdateSpinState(code, true, winner.Label); err != nil {
		log.Error("failed to write spin state", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, ErrSpinFailed)
	}

	spinEvent := model.SpinEvent{
		RoomCode:    code,
		Result:      winner.Label,
		SpunBy:      actor,
		Draw:        draw,
		TotalWeight: totalWeight,
		CreatedAt:   time.Now(),
	}

	id, err := c.events.SaveSpinEvent(spinEvent)
	if err != nil {
		// audit only; the authoritative result is already on the room row
		log.Error("failed to append spin event", sl.Err(err))
	}

	spinEvent.ID = id

	log.Info("spin started", slog.String("result", winner.Label))

	if c.publisher != nil {
		c.publisher.Publish(code, feed.Event{Type: feed.SpinAppended, SpinEvent: &spinEvent})

		snapshot := *current
		snapshot.IsSpinning = true
		snapshot.CurrentResult = winner.Label
		snapshot.UpdatedAt = spinEvent.CreatedAt

		c.publisher.Publish(code, feed.Event{Type: feed.RoomUpdated, Room: &snapshot})
	}

	c.queue.Dispatch(&settleSpinJob{
		log:       c.log,
		rooms:     c.rooms,
		publisher: c.publisher,
		code:      code,
		result:    winner.Label,
	}, c.duration)

	// if the settle write is lost, the reaper forces the room out of
	// spinning instead of leaving it stuck for an admin to fix
	c.queue.Dispatch(&spinReaperJob{
		log:       c.log,
		rooms:     c.rooms,
		publisher: c.publisher,
		code:      code,
		result:    winner.Label,
	}, c.duration+c.settleGrace)

	return &spinEvent, nil
}
