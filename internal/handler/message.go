package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobboard/internal/middleware"
	"github.com/jobboard/internal/model"
	"github.com/jobboard/internal/service"
)

type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// GetConversations returns the user's inbox: one summary per counterpart,
// most recent first, with unread counts.
func (h *MessageHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	conversations, err := h.messages.Conversations(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get conversations")
		return
	}
	if conversations == nil {
		conversations = []model.Conversation{}
	}
	writeJSON(w, http.StatusOK, conversations)
}

// GetUnreadCount returns the total unread message count for the inbox badge.
func (h *MessageHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	n, err := h.messages.UnreadCount(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count unread")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// GetThread returns the exchange with one user, oldest first. Opening the
// thread marks its incoming messages as read.
func (h *MessageHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	otherID := chi.URLParam(r, "userId")
	if otherID == "" || otherID == userID {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	messages, err := h.messages.Thread(r.Context(), userID, otherID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var req struct {
		ReceiverID    string  `json:"receiver_id"`
		Content       string  `json:"content"`
		ApplicationID *string `json:"application_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.ReceiverID == "" || req.ReceiverID == userID {
		writeError(w, http.StatusBadRequest, "invalid receiver_id")
		return
	}
	m, err := h.messages.Send(r.Context(), userID, req.ReceiverID, req.Content, req.ApplicationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			writeError(w, http.StatusBadRequest, "content is empty")
		case errors.Is(err, service.ErrNoReceiver):
			writeError(w, http.StatusNotFound, "receiver not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
