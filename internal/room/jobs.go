package room

import (
	"time"

	"github.com/Shariar-hash/WheellWise/internal/feed"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"golang.org/x/exp/slog"
)

// settleSpinJob flips the room back to idle after the presentation
// delay, keeping the result untouched. Late-polling clients that missed
// the spinning snapshot learn the animation is done from this write.
type settleSpinJob struct {
	log       *slog.Logger
	rooms     SpinStore
	publisher feed.Publisher
	code      string
	result    string
}

func (j *settleSpinJob) Execute() {
	if err := j.rooms.UpdateSpinState(j.code, false, j.result); err != nil {
		j.log.Error("failed to settle spin", sl.Err(err),
			slog.String("room_code", j.code))

		return
	}

	publishSnapshot(j.log, j.rooms, j.publisher, j.code)
}

// spinReaperJob recovers a room stranded in spinning when the settle
// write was lost. It re-reads the row well past the animation window
// and forces idle, keeping whatever result the spin recorded. The job
// belongs to one spin, identified by its result; a different result on
// the row means a newer spin owns the room and this job must stand
// down rather than cut that spin short.
type spinReaperJob struct {
	log       *slog.Logger
	rooms     SpinStore
	publisher feed.Publisher
	code      string
	result    string
}

func (j *spinReaperJob) Execute() {
	current, err := j.rooms.GetRoomByCode(j.code)
	if err != nil {
		j.log.Debug("reaper skipped", sl.Err(err), slog.String("room_code", j.code))

		return
	}

	if !current.IsSpinning {
		return
	}

	if current.CurrentResult != j.result {
		return
	}

	j.log.Warn("room stuck in spinning state, forcing idle",
		slog.String("room_code", j.code))

	if err = j.rooms.UpdateSpinState(j.code, false, current.CurrentResult); err != nil {
		j.log.Error("failed to reap stuck spin", sl.Err(err),
			slog.String("room_code", j.code))

		return
	}

	publishSnapshot(j.log, j.rooms, j.publisher, j.code)
}

func publishSnapshot(log *slog.Logger, rooms SpinStore, publisher feed.Publisher, code string) {
	if publisher == nil {
		return
	}

	current, err := rooms.GetRoomByCode(code)
	if err != nil {
		log.Debug("snapshot publish skipped", sl.Err(err), slog.String("room_code", code))

		return
	}

	current.UpdatedAt = time.Now()

	publisher.Publish(code, feed.Event{Type: feed.RoomUpdated, Room: current})
}
