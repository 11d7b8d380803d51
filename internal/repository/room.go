package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/mysql"
	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
)

type RoomRepository struct {
	dbhandler mysql.Handler
}

func NewRoomRepository(dbhandler mysql.Handler) *RoomRepository {
	return &RoomRepository{dbhandler: dbhandler}
}

func (repo *RoomRepository) SaveRoom(room model.Room) (int64, error) {
	const op = "repository.room.SaveRoom"

	const query = "INSERT INTO rooms(code, owner_name, owner_email, participants, wheel_options, " +
		"is_spinning, current_result, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)"

	participants, err := encodeParticipants(room.Participants)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	options, err := encodeOptions(room.Options)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()

	res, err := repo.dbhandler.PrepareAndExecute(query,
		room.Code, room.OwnerName, room.OwnerEmail, participants, options,
		room.IsSpinning, room.CurrentResult, now, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (repo *RoomRepository) GetRoomByCode(code string) (*model.Room, error) {
	const op = "repository.room.GetRoomByCode"

	const query = "SELECT id, code, owner_name, owner_email, participants, wheel_options, " +
		"is_spinning, current_result, created_at, updated_at FROM rooms WHERE code = ?"

	row, err := repo.dbhandler.PrepareAndQueryRow(query, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		room         model.Room
		participants []byte
		options      []byte
		result       sql.NullString
		email        sql.NullString
	)

	err = row.Scan(&room.ID, &room.Code, &room.OwnerName, &email, &participants, &options,
		&room.IsSpinning, &result, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	room.OwnerEmail = email.String
	room.CurrentResult = result.String

	room.Participants, err = decodeParticipants(participants)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	room.Options, err = decodeOptions(options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &room, nil
}

func (repo *RoomRepository) CodeExists(code string) (bool, error) {
	const op = "repository.room.CodeExists"

	const query = "SELECT COUNT(*) FROM rooms WHERE code = ?"

	row, err := repo.dbhandler.PrepareAndQueryRow(query, code)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var count int

	err = row.Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return count > 0, nil
}

func (repo *RoomRepository) UpdateParticipants(code string, names []string) error {
	const op = "repository.room.UpdateParticipants"

	const query = "UPDATE rooms SET participants = ?, updated_at = ? WHERE code = ?"

	participants, err := encodeParticipants(names)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = repo.dbhandler.PrepareAndExecute(query, participants, time.Now(), code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *RoomRepository) UpdateOptions(code string, opts []model.WheelOption) error {
	const op = "repository.room.UpdateOptions"

	const query = "UPDATE rooms SET wheel_options = ?, updated_at = ? WHERE code = ?"

	options, err := encodeOptions(opts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = repo.dbhandler.PrepareAndExecute(query, options, time.Now(), code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateSpinState writes the spin flag and the result in one statement,
// so observers never see the flag without the result it belongs to.
func (repo *RoomRepository) UpdateSpinState(code string, spinning bool, result string) error {
	const op = "repository.room.UpdateSpinState"

	const query = "UPDATE rooms SET is_spinning = ?, current_result = ?, updated_at = ? WHERE code = ?"

	_, err := repo.dbhandler.PrepareAndExecute(query, spinning, result, time.Now(), code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Touch bumps updated_at without changing anything else. Heartbeats use
// it as a liveness marker.
func (repo *RoomRepository) Touch(code string) error {
	const op = "repository.room.Touch"

	const query = "UPDATE rooms SET updated_at = ? WHERE code = ?"

	_, err := repo.dbhandler.PrepareAndExecute(query, time.Now(), code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func encodeParticipants(names []string) ([]byte, error) {
	if names == nil {
		names = []string{}
	}

	return json.Marshal(names)
}

func decodeParticipants(data []byte) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}

	var names []string

	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}

	return names, nil
}

func encodeOptions(opts []model.WheelOption) ([]byte, error) {
	if opts == nil {
		opts = []model.WheelOption{}
	}

	return json.Marshal(opts)
}

func decodeOptions(data []byte) ([]model.WheelOption, error) {
	if len(data) == 0 {
		return []model.WheelOption{}, nil
	}

	var opts []model.WheelOption

	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, err
	}

	return opts, nil
}
