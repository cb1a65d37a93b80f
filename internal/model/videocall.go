package model

import "time"

type CallStatus string

const (
	CallStatusScheduled CallStatus = "scheduled"
	CallStatusActive    CallStatus = "active"
	CallStatusEnded     CallStatus = "ended"
)

// VideoCall tracks one call between two users. The room id is handed to
// both clients; media transport itself happens in the browser.
type VideoCall struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"room_id"`
	HostID    string     `json:"host_id"`
	GuestID   string     `json:"guest_id"`
	Status    CallStatus `json:"status"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
