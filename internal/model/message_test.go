package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounterpart(t *testing.T) {
	m := Message{SenderID: "a", ReceiverID: "b"}
	assert.Equal(t, "b", m.Counterpart("a"))
	assert.Equal(t, "a", m.Counterpart("b"))
}

func TestCounterpartProfile(t *testing.T) {
	sender := &ProfilePublic{ID: "a"}
	receiver := &ProfilePublic{ID: "b"}
	m := Message{SenderID: "a", ReceiverID: "b", Sender: sender, Receiver: receiver}

	assert.Same(t, receiver, m.CounterpartProfile("a"))
	assert.Same(t, sender, m.CounterpartProfile("b"))

	bare := Message{SenderID: "a", ReceiverID: "b"}
	assert.Nil(t, bare.CounterpartProfile("a"))
}

func TestUnreadBy(t *testing.T) {
	now := time.Now()
	unread := Message{SenderID: "a", ReceiverID: "b"}
	read := Message{SenderID: "a", ReceiverID: "b", ReadAt: &now}

	assert.True(t, unread.UnreadBy("b"))
	assert.False(t, unread.UnreadBy("a"))
	assert.False(t, read.UnreadBy("b"))
}
