package ws

import "time"

type EventType string

const (
	EventNewMessage        EventType = "new_message"
	EventMessageRead       EventType = "message_read"
	EventTyping            EventType = "typing"
	EventApplicationStatus EventType = "application_status"
	EventNewApplication    EventType = "new_application"
	EventCallStarted       EventType = "call_started"
	EventCallEnded         EventType = "call_ended"
	EventError             EventType = "error"
)

// IncomingMessage is what the client sends to the server. Sending chat
// messages goes through the REST API; the socket only carries ephemeral
// signals (typing) and read receipts.
type IncomingMessage struct {
	Type        EventType `json:"type"`
	OtherUserID string    `json:"other_user_id,omitempty"`
}

// OutgoingMessage is what the server sends to the client.
// Payload uses typed structs to avoid heap-heavy map[string]any.
type OutgoingMessage struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// TypingPayload tells the counterpart the user is typing.
type TypingPayload struct {
	UserID string `json:"user_id"`
}

// MessageReadPayload tells the sender their thread was opened.
type MessageReadPayload struct {
	ReaderID string    `json:"reader_id"`
	Count    int64     `json:"count"`
	ReadAt   time.Time `json:"read_at"`
}

// ApplicationStatusPayload is pushed to a candidate when a company moves
// their application through review.
type ApplicationStatusPayload struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
	JobTitle      string `json:"job_title"`
	CompanyName   string `json:"company_name"`
}

// NewApplicationPayload is pushed to a company when a candidate applies.
type NewApplicationPayload struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	JobTitle      string `json:"job_title"`
	CandidateName string `json:"candidate_name"`
}

// CallPayload is pushed on call lifecycle changes.
type CallPayload struct {
	CallID          string `json:"call_id"`
	RoomID          string `json:"room_id"`
	FromUserID      string `json:"from_user_id"`
	Status          string `json:"status"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}
