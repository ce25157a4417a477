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
	ErrCannotFriendSelf    = errors.New("cannot send a friend request to yourself")
	ErrRequestAlreadySent  = errors.New("friend request already sent")
	ErrRequestNotFound     = errors.New("friend request not found")
	ErrNotRequestReceiver  = errors.New("only the request receiver can respond")
	ErrAlreadyResponded    = errors.New("friend request already responded to")
	ErrInvalidFriendStatus = errors.New("status must be accepted or rejected")
)

type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	notifier   Notifier
}

func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

func (s *FriendService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SendRequest sends a friend request to a user identified by email. At most
// one pending request may exist per (sender, receiver) pair; the storage
// constraint backs that up against concurrent sends.
func (s *FriendService) SendRequest(ctx context.Context, senderID uuid.UUID, email string) (*domain.FriendRequest, error) {
	receiver, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}
	if receiver.ID == senderID {
		return nil, ErrCannotFriendSelf
	}

	existing, err := s.friendRepo.GetPendingByUsers(ctx, senderID, receiver.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRequestAlreadySent
	}

	req := &domain.FriendRequest{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Status:     domain.FriendRequestPending,
		CreatedAt:  time.Now(),
	}

	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRequestAlreadySent
		}
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	full, err := s.friendRepo.GetRequestByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && receiver.Notifications.FriendRequestNotifications {
		s.notifier.NotifyFriendRequest(full)
	}

	return full, nil
}

// Respond accepts or rejects a pending request. Only the receiver may
// respond, and only once.
func (s *FriendService) Respond(ctx context.Context, userID, requestID uuid.UUID, status string) (*domain.FriendRequest, error) {
	if status != domain.FriendRequestAccepted && status != domain.FriendRequestRejected {
		return nil, ErrInvalidFriendStatus
	}

	req, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.ReceiverID != userID {
		return nil, ErrNotRequestReceiver
	}
	if req.Status != domain.FriendRequestPending {
		return nil, ErrAlreadyResponded
	}

	return s.friendRepo.UpdateStatus(ctx, requestID, status)
}

// ListIncoming returns the user's pending incoming requests, newest first.
func (s *FriendService) ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	reqs, err := s.friendRepo.ListIncomingPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.FriendRequest{}
	}
	return reqs, nil
}
