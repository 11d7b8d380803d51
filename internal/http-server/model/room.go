package model

import "time"

type Room struct {
	ID            int64         `json:"id"`
	Code          string        `json:"room_code"`
	OwnerName     string        `json:"room_owner"`
	OwnerEmail    string        `json:"room_owner_email,omitempty"`
	Participants  []string      `json:"participants"`
	Options       []WheelOption `json:"wheel_options"`
	IsSpinning    bool          `json:"is_spinning"`
	CurrentResult string        `json:"current_result,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// HasParticipant reports whether name is already on the participant list.
func (r *Room) HasParticipant(name string) bool {
	for _, p := range r.Participants {
		if p == name {
			return true
		}
	}

	return false
}
