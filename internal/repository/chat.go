package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/mysql"
	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
)

type ChatRepository struct {
	dbhandler mysql.Handler
}

func NewChatRepository(dbhandler mysql.Handler) *ChatRepository {
	return &ChatRepository{dbhandler: dbhandler}
}

func (repo *ChatRepository) SaveMessage(message model.ChatMessage) (int64, error) {
	const op = "repository.chat.SaveMessage"

	const query = "INSERT INTO chat_messages(room_code, sender_name, sender_email, sender_image, " +
		"message, created_at) VALUES(?, ?, ?, ?, ?, ?)"

	res, err := repo.dbhandler.PrepareAndExecute(query,
		message.RoomCode, message.SenderName, message.SenderEmail, message.SenderImage,
		message.Message, time.Now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (repo *ChatRepository) GetRecentMessages(roomCode string, limit int) ([]model.ChatMessage, error) {
	const op = "repository.chat.GetRecentMessages"

	const query = "SELECT id, room_code, sender_name, sender_email, sender_image, message, created_at " +
		"FROM chat_messages WHERE room_code = ? ORDER BY created_at DESC LIMIT ?"

	rows, err := repo.dbhandler.PrepareAndQuery(query, roomCode, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// reverse back to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// GetMessagesAfter returns every message with an id greater than the
// watermark, oldest first. Poll-mode feeds rely on getting all rows,
// not just the latest one; the id watermark cannot skip a row the way
// a same-millisecond created_at comparison can.
func (repo *ChatRepository) GetMessagesAfter(roomCode string, afterID int64) ([]model.ChatMessage, error) {
	const op = "repository.chat.GetMessagesAfter"

	const query = "SELECT id, room_code, sender_name, sender_email, sender_image, message, created_at " +
		"FROM chat_messages WHERE room_code = ? AND id > ? ORDER BY id ASC"

	rows, err := repo.dbhandler.PrepareAndQuery(query, roomCode, afterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return messages, nil
}

// LatestMessageID returns the highest message id in the room, 0 when
// the room has no messages yet. Feeds seed their watermark from it.
func (repo *ChatRepository) LatestMessageID(roomCode string) (int64, error) {
	const op = "repository.chat.LatestMessageID"

	const query = "SELECT COALESCE(MAX(id), 0) FROM chat_messages WHERE room_code = ?"

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

func scanMessages(rows *sql.Rows) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage

	for rows.Next() {
		var (
			message model.ChatMessage
			email   sql.NullString
			image   sql.NullString
		)

		err := rows.Scan(&message.ID, &message.RoomCode, &message.SenderName, &email, &image,
			&message.Message, &message.CreatedAt)
		if err != nil {
			return nil, err
		}

		message.SenderEmail = email.String
		message.SenderImage = image.String

		messages = append(messages, message)
	}

	return messages, rows.Err()
}
