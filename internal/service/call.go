package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jobboard/internal/logger"
	"github.com/jobboard/internal/model"
	"github.com/jobboard/internal/repository"
	"github.com/jobboard/internal/ws"
)

var ErrCallEnded = errors.New("call already ended")

// CallService drives the video call lifecycle. Media flows peer to peer in
// the browser; the server only tracks state and writes the chat trail:
// an invite message on start and a duration message on end.
type CallService struct {
	callRepo *repository.VideoCallRepository
	msgRepo  *repository.MessageRepository
	messages *MessageService
	events   EventSender
}

func NewCallService(
	callRepo *repository.VideoCallRepository,
	msgRepo *repository.MessageRepository,
	messages *MessageService,
	events EventSender,
) *CallService {
	return &CallService{callRepo: callRepo, msgRepo: msgRepo, messages: messages, events: events}
}

// Start schedules a call and drops an invite message into the thread.
func (s *CallService) Start(ctx context.Context, hostID, guestID string, applicationID *string) (*model.VideoCall, error) {
	now := time.Now().UTC()
	call := &model.VideoCall{
		ID:        uuid.New().String(),
		RoomID:    uuid.New().String(),
		HostID:    hostID,
		GuestID:   guestID,
		Status:    model.CallStatusScheduled,
		CreatedAt: now,
	}
	if err := s.callRepo.Create(ctx, call); err != nil {
		return nil, err
	}

	m := &model.Message{
		ID:            uuid.New().String(),
		SenderID:      hostID,
		ReceiverID:    guestID,
		Content:       "Video call invitation",
		MessageType:   model.MessageTypeVideoCallInvite,
		VideoCallID:   &call.ID,
		ApplicationID: applicationID,
		CreatedAt:     now,
	}
	if err := s.msgRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	if saved, err := s.msgRepo.GetByID(ctx, m.ID); err == nil {
		m = saved
	} else {
		logger.Errorf("call start: refetch invite %s: %v", m.ID, err)
	}
	s.messages.NotifyNewMessage(ctx, m)

	if s.events != nil {
		s.events.SendToUser(guestID, ws.OutgoingMessage{
			Type: ws.EventCallStarted,
			Payload: ws.CallPayload{
				CallID:     call.ID,
				RoomID:     call.RoomID,
				FromUserID: hostID,
				Status:     string(call.Status),
			},
		})
	}
	return call, nil
}

// Activate marks the call live once both sides joined the room.
func (s *CallService) Activate(ctx context.Context, userID, callID string) (*model.VideoCall, error) {
	call, err := s.callRepo.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if userID != call.HostID && userID != call.GuestID {
		return nil, ErrForbidden
	}
	if call.Status == model.CallStatusEnded {
		return nil, ErrCallEnded
	}
	now := time.Now().UTC()
	if err := s.callRepo.SetActive(ctx, callID, now); err != nil {
		return nil, err
	}
	call.Status = model.CallStatusActive
	call.StartedAt = &now
	return call, nil
}

// End closes the call and writes the duration message into the thread.
// Either participant can end; ending twice is rejected.
func (s *CallService) End(ctx context.Context, userID, callID string, durationSeconds int) (*model.VideoCall, error) {
	call, err := s.callRepo.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if userID != call.HostID && userID != call.GuestID {
		return nil, ErrForbidden
	}
	if call.Status == model.CallStatusEnded {
		return nil, ErrCallEnded
	}
	now := time.Now().UTC()
	if err := s.callRepo.SetEnded(ctx, callID, now); err != nil {
		return nil, err
	}
	call.Status = model.CallStatusEnded
	call.EndedAt = &now
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	otherID := call.GuestID
	if userID == call.GuestID {
		otherID = call.HostID
	}
	duration := durationSeconds
	m := &model.Message{
		ID:                uuid.New().String(),
		SenderID:          userID,
		ReceiverID:        otherID,
		Content:           fmt.Sprintf("Video call ended (Duration: %s)", FormatCallDuration(durationSeconds)),
		MessageType:       model.MessageTypeVideoCallEnded,
		VideoCallID:       &call.ID,
		VideoCallDuration: &duration,
		CreatedAt:         now,
	}
	if err := s.msgRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	if saved, err := s.msgRepo.GetByID(ctx, m.ID); err == nil {
		m = saved
	}
	s.messages.NotifyNewMessage(ctx, m)

	if s.events != nil {
		payload := ws.CallPayload{
			CallID:          call.ID,
			RoomID:          call.RoomID,
			FromUserID:      userID,
			Status:          string(call.Status),
			DurationSeconds: durationSeconds,
		}
		s.events.SendToUser(otherID, ws.OutgoingMessage{Type: ws.EventCallEnded, Payload: payload})
	}
	return call, nil
}

// FormatCallDuration renders seconds as M:SS for the end-of-call message.
func FormatCallDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
