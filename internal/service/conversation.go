package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jobboard/internal/logger"
	"github.com/jobboard/internal/model"
	"github.com/jobboard/internal/repository"
	"github.com/jobboard/internal/ws"
)

var (
	ErrEmptyContent = errors.New("message content is empty")
	ErrNoReceiver   = errors.New("receiver not found")
)

// EventSender fans an event out to a user's live WebSocket connections and
// reports presence. *ws.Hub implements it; nil disables socket delivery.
type EventSender interface {
	SendToUser(userID string, msg ws.OutgoingMessage)
	IsOnline(userID string) bool
}

// PushNotifier sends web push notifications; nil disables push.
type PushNotifier interface {
	Notify(ctx context.Context, userID, title, body string, data map[string]string)
}

// BuildConversations folds a user's message log, sorted newest first, into
// one summary per counterpart. The first row seen per counterpart is the
// freshest and seeds the summary; every unread incoming row bumps the
// counter. Output order follows first appearance, so conversations come out
// sorted by last activity.
func BuildConversations(userID string, messages []model.Message) []model.Conversation {
	index := make(map[string]int, 16)
	conversations := make([]model.Conversation, 0, 16)
	for i := range messages {
		m := &messages[i]
		otherID := m.Counterpart(userID)
		pos, seen := index[otherID]
		if !seen {
			c := model.Conversation{
				OtherUserID:     otherID,
				LastMessage:     m.Content,
				LastMessageTime: m.CreatedAt,
				ApplicationID:   m.ApplicationID,
			}
			if p := m.CounterpartProfile(userID); p != nil {
				c.OtherUserName = p.DisplayName()
				c.OtherUserEmail = p.Email
				c.AvatarURL = p.AvatarURL
			}
			index[otherID] = len(conversations)
			conversations = append(conversations, c)
			pos = index[otherID]
		}
		if m.UnreadBy(userID) {
			conversations[pos].UnreadCount++
		}
	}
	return conversations
}

// MessageService backs the inbox: conversation summaries, threads and
// sending. Delivery to live sockets and push endpoints is best effort.
type MessageService struct {
	msgRepo     *repository.MessageRepository
	profileRepo *repository.ProfileRepository
	events      EventSender
	push        PushNotifier
}

func NewMessageService(
	msgRepo *repository.MessageRepository,
	profileRepo *repository.ProfileRepository,
	events EventSender,
	push PushNotifier,
) *MessageService {
	return &MessageService{msgRepo: msgRepo, profileRepo: profileRepo, events: events, push: push}
}

func (s *MessageService) Conversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	messages, err := s.msgRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildConversations(userID, messages), nil
}

// UnreadCount returns the total number of unread incoming messages, for the
// inbox badge.
func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.msgRepo.CountUnread(ctx, userID)
}

// Thread returns the exchange with one counterpart, oldest first, and marks
// every unread incoming message as read. The counterpart gets a read
// receipt over their socket when anything was actually marked.
func (s *MessageService) Thread(ctx context.Context, userID, otherID string) ([]model.Message, error) {
	messages, err := s.msgRepo.GetThread(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	n, err := s.msgRepo.MarkThreadRead(ctx, userID, otherID, now)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		for i := range messages {
			if messages[i].ReceiverID == userID && messages[i].ReadAt == nil {
				messages[i].ReadAt = &now
			}
		}
		if s.events != nil {
			s.events.SendToUser(otherID, ws.OutgoingMessage{
				Type:    ws.EventMessageRead,
				Payload: ws.MessageReadPayload{ReaderID: userID, Count: n, ReadAt: now},
			})
		}
	}
	return messages, nil
}

// Send stores a text message and notifies the receiver. Whitespace-only
// content is rejected before anything is written.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, content string, applicationID *string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.profileRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoReceiver
		}
		return nil, err
	}

	m := &model.Message{
		ID:            uuid.New().String(),
		SenderID:      senderID,
		ReceiverID:    receiverID,
		Content:       content,
		MessageType:   model.MessageTypeText,
		ApplicationID: applicationID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.msgRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	// Re-fetch to pick up the embedded participant profiles.
	saved, err := s.msgRepo.GetByID(ctx, m.ID)
	if err != nil {
		logger.Errorf("send: refetch message %s: %v", m.ID, err)
		saved = m
	}

	s.notifyNewMessage(ctx, saved)
	return saved, nil
}

// NotifyNewMessage pushes an already-persisted message to the receiver.
// Used by the call flow, which writes its own message rows.
func (s *MessageService) NotifyNewMessage(ctx context.Context, m *model.Message) {
	s.notifyNewMessage(ctx, m)
}

func (s *MessageService) notifyNewMessage(ctx context.Context, m *model.Message) {
	if s.events != nil {
		s.events.SendToUser(m.ReceiverID, ws.OutgoingMessage{Type: ws.EventNewMessage, Payload: m})
		// A live socket already delivered the message in full.
		if s.events.IsOnline(m.ReceiverID) {
			return
		}
	}
	if s.push != nil {
		title := "New message"
		if m.Sender != nil {
			title = m.Sender.DisplayName()
		}
		data := map[string]string{"sender_id": m.SenderID, "message_id": m.ID}
		go s.push.Notify(context.Background(), m.ReceiverID, title, truncateBody(m.Content), data)
	}
}

// truncateBody caps push notification text at 120 bytes without splitting a
// UTF-8 rune.
func truncateBody(body string) string {
	if len(body) <= 120 {
		return body
	}
	cut := 117
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}
