package model

import "time"

type MessageType string

const (
	MessageTypeText            MessageType = "text"
	MessageTypeVideoCallInvite MessageType = "video_call_invite"
	MessageTypeVideoCallEnded  MessageType = "video_call_ended"
)

// Message is one row of the direct-message log between two users.
// Immutable except read_at, which is set once when the receiver opens
// the thread.
type Message struct {
	ID                string              `json:"id"`
	SenderID          string              `json:"sender_id"`
	ReceiverID        string              `json:"receiver_id"`
	Content           string              `json:"content"`
	MessageType       MessageType         `json:"message_type"`
	VideoCallID       *string             `json:"video_call_id,omitempty"`
	VideoCallDuration *int                `json:"video_call_duration,omitempty"`
	ApplicationID     *string             `json:"application_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	ReadAt            *time.Time          `json:"read_at,omitempty"`
	Sender            *ProfilePublic      `json:"sender,omitempty"`
	Receiver          *ProfilePublic      `json:"receiver,omitempty"`
	Application       *ApplicationContext `json:"application,omitempty"`
}

// ApplicationContext links a message to the job it was exchanged over.
type ApplicationContext struct {
	JobTitle    string `json:"job_title"`
	CompanyName string `json:"company_name"`
}

// Counterpart returns the other participant's id relative to userID.
func (m *Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// CounterpartProfile returns the other participant's embedded profile
// relative to userID, or nil if the row was fetched without profiles.
func (m *Message) CounterpartProfile(userID string) *ProfilePublic {
	if m.SenderID == userID {
		return m.Receiver
	}
	return m.Sender
}

// UnreadBy reports whether the message is addressed to userID and has not
// been read yet.
func (m *Message) UnreadBy(userID string) bool {
	return m.ReceiverID == userID && m.ReadAt == nil
}

// Conversation is a derived, non-persisted summary of all messages between
// the current user and one counterpart.
type Conversation struct {
	OtherUserID     string    `json:"other_user_id"`
	OtherUserName   string    `json:"other_user_name"`
	OtherUserEmail  string    `json:"other_user_email"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
	ApplicationID   *string   `json:"application_id,omitempty"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
}
