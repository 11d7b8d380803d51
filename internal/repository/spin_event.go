package repository

import (
	"fmt"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/mysql"
	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
)

type SpinEventRepository struct {
	dbhandler mysql.Handler
}

func NewSpinEventRepository(dbhandler mysql.Handler) *SpinEventRepository {
	return &SpinEventRepository{dbhandler: dbhandler}
}

func (repo *SpinEventRepository) SaveSpinEvent(event model.SpinEvent) (int64, error) {
	const op = "repository.spin_event.SaveSpinEvent"

	const query = "INSERT INTO spin_events(room_code, result, spun_by, draw, total_weight, created_at) " +
		"VALUES(?, ?, ?, ?, ?, ?)"

	res, err := repo.dbhandler.PrepareAndExecute(query,
		event.RoomCode, event.Result, event.SpunBy, event.Draw, event.TotalWeight, time.Now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// GetEventsAfter returns every spin event with an id greater than the
// watermark, oldest first.
func (repo *SpinEventRepository) GetEventsAfter(roomCode string, afterID int64) ([]model.SpinEvent, error) {
	const op = "repository.spin_event.GetEventsAfter"

	const query = "SELECT id, room_code, result, spun_by, draw, total_weight, created_at " +
		"FROM spin_events WHERE room_code = ? AND id > ? ORDER BY id ASC"

	rows, err := repo.dbhandler.PrepareAndQuery(query, roomCode, afterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []model.SpinEvent

	for rows.Next() {
		var event model.SpinEvent

		err = rows.Scan(&event.ID, &event.RoomCode, &event.Result, &event.SpunBy,
			&event.Draw, &event.TotalWeight, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// LatestEventID returns the highest spin event id in the room, 0 when
// the room has never spun.
func (repo *SpinEventRepository) LatestEventID(roomCode string) (int64, error) {
	const op = "repository.spin_event.LatestEventID"

	const query = "SELECT COALESCE(MAX(id), 0) FROM spin_events WHERE room_code = ?"

	row, err := repo.dbhandler.PrepareAndQueryRow(query, roomCode)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64

	if err = row.Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}
