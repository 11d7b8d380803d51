package model

import "time"

type ChatMessage struct {
	ID          int64     `json:"id"`
	RoomCode    string    `json:"room_code"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email,omitempty"`
	SenderImage string    `json:"sender_image,omitempty"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
