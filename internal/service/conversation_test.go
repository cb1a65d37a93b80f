package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/internal/model"
)

func msgAt(sender, receiver, content string, t time.Time, read bool) model.Message {
	m := model.Message{
		ID:          sender + "->" + receiver + "@" + t.Format(time.RFC3339),
		SenderID:    sender,
		ReceiverID:  receiver,
		Content:     content,
		MessageType: model.MessageTypeText,
		CreatedAt:   t,
	}
	if read {
		readAt := t.Add(time.Minute)
		m.ReadAt = &readAt
	}
	return m
}

func TestBuildConversationsFoldsByCounterpart(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Newest first, the way the repository returns them.
	messages := []model.Message{
		msgAt("alice", "me", "latest from alice", base.Add(3*time.Hour), false),
		msgAt("alice", "me", "older from alice", base.Add(2*time.Hour), true),
		msgAt("bob", "me", "hello from bob", base.Add(1*time.Hour), false),
	}

	conversations := BuildConversations("me", messages)
	require.Len(t, conversations, 2)

	assert.Equal(t, "alice", conversations[0].OtherUserID)
	assert.Equal(t, "latest from alice", conversations[0].LastMessage)
	assert.Equal(t, base.Add(3*time.Hour), conversations[0].LastMessageTime)
	assert.Equal(t, 1, conversations[0].UnreadCount)

	assert.Equal(t, "bob", conversations[1].OtherUserID)
	assert.Equal(t, "hello from bob", conversations[1].LastMessage)
	assert.Equal(t, base.Add(1*time.Hour), conversations[1].LastMessageTime)
	assert.Equal(t, 1, conversations[1].UnreadCount)
}

func TestBuildConversationsOrderedByLastActivity(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	messages := []model.Message{
		msgAt("me", "carol", "to carol", base.Add(5*time.Hour), false),
		msgAt("dave", "me", "from dave", base.Add(4*time.Hour), true),
		msgAt("carol", "me", "from carol", base.Add(3*time.Hour), true),
	}

	conversations := BuildConversations("me", messages)
	require.Len(t, conversations, 2)
	assert.Equal(t, "carol", conversations[0].OtherUserID)
	assert.Equal(t, "dave", conversations[1].OtherUserID)
}

func TestBuildConversationsOwnUnreadNotCounted(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Outgoing messages the counterpart has not read yet must not bump
	// the caller's unread counter.
	messages := []model.Message{
		msgAt("me", "erin", "sent one", base.Add(2*time.Hour), false),
		msgAt("me", "erin", "sent two", base.Add(1*time.Hour), false),
	}

	conversations := BuildConversations("me", messages)
	require.Len(t, conversations, 1)
	assert.Equal(t, 0, conversations[0].UnreadCount)
}

func TestBuildConversationsSeedsProfileAndApplication(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appID := "app-1"

	m := msgAt("frank", "me", "about the role", base, false)
	m.ApplicationID = &appID
	m.Sender = &model.ProfilePublic{
		ID:        "frank",
		FullName:  "Frank Ocean",
		Email:     "frank@example.com",
		AvatarURL: "https://cdn.example.com/frank.png",
	}

	conversations := BuildConversations("me", []model.Message{m})
	require.Len(t, conversations, 1)
	c := conversations[0]
	assert.Equal(t, "Frank Ocean", c.OtherUserName)
	assert.Equal(t, "frank@example.com", c.OtherUserEmail)
	assert.Equal(t, "https://cdn.example.com/frank.png", c.AvatarURL)
	require.NotNil(t, c.ApplicationID)
	assert.Equal(t, appID, *c.ApplicationID)
}

func TestBuildConversationsNameFallsBackToEmail(t *testing.T) {
	m := msgAt("grace", "me", "hi", time.Now(), false)
	m.Sender = &model.ProfilePublic{ID: "grace", Email: "grace@example.com"}

	conversations := BuildConversations("me", []model.Message{m})
	require.Len(t, conversations, 1)
	assert.Equal(t, "grace@example.com", conversations[0].OtherUserName)
}

func TestSendRejectsWhitespaceOnly(t *testing.T) {
	// Rejection happens before any storage access, so a zero service is enough.
	s := NewMessageService(nil, nil, nil, nil)
	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := s.Send(context.Background(), "a", "b", content, nil)
		assert.ErrorIs(t, err, ErrEmptyContent, "content=%q", content)
	}
}

func TestBuildConversationsEmpty(t *testing.T) {
	conversations := BuildConversations("me", nil)
	assert.Empty(t, conversations)
	assert.NotNil(t, conversations)
}
