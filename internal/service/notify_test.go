package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/internal/model"
	"github.com/jobboard/internal/ws"
)

type fakeEvents struct {
	online map[string]bool
	sent   []ws.OutgoingMessage
}

func (f *fakeEvents) SendToUser(userID string, msg ws.OutgoingMessage) {
	f.sent = append(f.sent, msg)
}

func (f *fakeEvents) IsOnline(userID string) bool { return f.online[userID] }

type fakePush struct {
	bodies chan string
}

func newFakePush() *fakePush { return &fakePush{bodies: make(chan string, 1)} }

func (f *fakePush) Notify(ctx context.Context, userID, title, body string, data map[string]string) {
	f.bodies <- body
}

func (f *fakePush) received(t *testing.T) string {
	t.Helper()
	select {
	case body := <-f.bodies:
		return body
	case <-time.After(time.Second):
		t.Fatal("expected a push notification")
		return ""
	}
}

func (f *fakePush) assertNone(t *testing.T) {
	t.Helper()
	select {
	case body := <-f.bodies:
		t.Fatalf("unexpected push notification %q", body)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifySkipsPushForOnlineReceiver(t *testing.T) {
	events := &fakeEvents{online: map[string]bool{"bob": true}}
	push := newFakePush()
	s := NewMessageService(nil, nil, events, push)

	s.NotifyNewMessage(context.Background(), &model.Message{
		ID: "m1", SenderID: "alice", ReceiverID: "bob", Content: "hi",
	})

	require.Len(t, events.sent, 1)
	assert.Equal(t, ws.EventNewMessage, events.sent[0].Type)
	push.assertNone(t)
}

func TestNotifyPushesOfflineReceiver(t *testing.T) {
	events := &fakeEvents{online: map[string]bool{}}
	push := newFakePush()
	s := NewMessageService(nil, nil, events, push)

	s.NotifyNewMessage(context.Background(), &model.Message{
		ID: "m1", SenderID: "alice", ReceiverID: "bob", Content: "hi",
	})

	require.Len(t, events.sent, 1)
	assert.Equal(t, "hi", push.received(t))
}

func TestNotifyTruncatesOnRuneBoundary(t *testing.T) {
	events := &fakeEvents{online: map[string]bool{}}
	push := newFakePush()
	s := NewMessageService(nil, nil, events, push)

	// 100 two-byte runes: 200 bytes, so the 117-byte cut lands mid-rune.
	content := strings.Repeat("й", 100)
	s.NotifyNewMessage(context.Background(), &model.Message{
		ID: "m1", SenderID: "alice", ReceiverID: "bob", Content: content,
	})

	body := push.received(t)
	assert.True(t, utf8.ValidString(body))
	assert.True(t, strings.HasSuffix(body, "..."))
	assert.LessOrEqual(t, len(body), 120)
}

func TestTruncateBodyShortUnchanged(t *testing.T) {
	assert.Equal(t, "hello", truncateBody("hello"))
	exact := strings.Repeat("a", 120)
	assert.Equal(t, exact, truncateBody(exact))
	assert.Equal(t, strings.Repeat("a", 117)+"...", truncateBody(strings.Repeat("a", 121)))
}
