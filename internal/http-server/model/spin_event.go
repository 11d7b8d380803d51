package model

import "time"

// SpinEvent is an append-only audit record of a single spin. The room
// row stays authoritative for the current result; events exist for the
// audit trail and as the change-notification trigger. Draw and
// TotalWeight are kept so any result can be replayed against the option
// set that produced it.
type SpinEvent struct {
	ID          int64     `json:"id"`
	RoomCode    string    `json:"room_code"`
	Result      string    `json:"result"`
	SpunBy      string    `json:"spun_by"`
	Draw        float64   `json:"draw"`
	TotalWeight float64   `json:"total_weight"`
	CreatedAt   time.Time `json:"created_at"`
}
