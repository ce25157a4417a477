package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

var (
	ErrCallNotFound       = errors.New("call not found")
	ErrNotCallParticipant = errors.New("you are not a participant of this call")
	ErrInvalidCallType    = errors.New("call type must be audio or video")
	ErrInvalidCallStatus  = errors.New("call status must be missed or completed")
	ErrDurationRequired   = errors.New("completing a call requires a duration")
)

type CallService struct {
	callRepo repository.CallRepository
	userRepo repository.UserRepository
	notifier Notifier
}

func NewCallService(callRepo repository.CallRepository, userRepo repository.UserRepository) *CallService {
	return &CallService{
		callRepo: callRepo,
		userRepo: userRepo,
	}
}

func (s *CallService) SetNotifier(n Notifier) {
	s.notifier = n
}

type UpdateCallInput struct {
	Status   string `json:"status"`
	Duration *int   `json:"duration,omitempty"`
}

// Create records a call at initiation. Every call starts as missed; it
// only becomes completed through an explicit status update.
func (s *CallService) Create(ctx context.Context, callerID, receiverID uuid.UUID, callType string) (*domain.Call, error) {
	if callType != domain.CallTypeAudio && callType != domain.CallTypeVideo {
		return nil, ErrInvalidCallType
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	call := &domain.Call{
		ID:         uuid.New(),
		CallerID:   callerID,
		ReceiverID: receiverID,
		Type:       callType,
		Status:     domain.CallStatusMissed,
		StartedAt:  time.Now(),
	}

	if err := s.callRepo.Create(ctx, call); err != nil {
		return nil, fmt.Errorf("creating call: %w", err)
	}

	full, err := s.callRepo.GetByID(ctx, call.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && receiver.Notifications.CallNotifications {
		s.notifier.NotifyIncomingCall(full)
	}

	return full, nil
}

// UpdateStatus finalizes a call record. Completing requires a duration.
func (s *CallService) UpdateStatus(ctx context.Context, userID, callID uuid.UUID, input UpdateCallInput) (*domain.Call, error) {
	if input.Status != domain.CallStatusMissed && input.Status != domain.CallStatusCompleted {
		return nil, ErrInvalidCallStatus
	}
	if input.Status == domain.CallStatusCompleted && input.Duration == nil {
		return nil, ErrDurationRequired
	}

	call, err := s.callRepo.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, ErrCallNotFound
	}
	if call.CallerID != userID && call.ReceiverID != userID {
		return nil, ErrNotCallParticipant
	}

	now := time.Now()
	call.Status = input.Status
	call.EndedAt = &now
	call.Duration = input.Duration

	if err := s.callRepo.Update(ctx, call); err != nil {
		return nil, fmt.Errorf("updating call: %w", err)
	}

	return s.callRepo.GetByID(ctx, callID)
}

// History returns all calls the user took part in, newest first.
func (s *CallService) History(ctx context.Context, userID uuid.UUID) ([]domain.Call, error) {
	calls, err := s.callRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if calls == nil {
		calls = []domain.Call{}
	}
	return calls, nil
}
