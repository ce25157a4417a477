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
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("you are not a participant of this conversation")
	ErrCannotChatSelf       = errors.New("cannot start a conversation with yourself")
	ErrUserNotFound         = errors.New("user not found")
)

// ConversationService is the conversation directory: it owns the
// one-conversation-per-pair invariant and the recency-ordered listing.
type ConversationService struct {
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
	presence PresenceStore
	notifier Notifier
}

func NewConversationService(convRepo repository.ConversationRepository, userRepo repository.UserRepository, presence PresenceStore) *ConversationService {
	return &ConversationService{
		convRepo: convRepo,
		userRepo: userRepo,
		presence: presence,
	}
}

func (s *ConversationService) SetNotifier(n Notifier) {
	s.notifier = n
}

// GetOrCreate resolves the unique conversation for an unordered user pair,
// creating it on first contact. Safe under concurrent calls: the storage
// unique constraint decides the winner and the loser re-resolves to the
// existing row instead of erroring.
func (s *ConversationService) GetOrCreate(ctx context.Context, userID, otherUserID uuid.UUID) (*domain.Conversation, error) {
	if userID == otherUserID {
		return nil, ErrCannotChatSelf
	}

	other, err := s.userRepo.GetByID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	u1, u2 := domain.CanonicalPair(userID, otherUserID)

	conv, err := s.convRepo.GetByUsers(ctx, u1, u2)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		s.decorate(ctx, conv, userID, other)
		return conv, nil
	}

	now := time.Now()
	conv = &domain.Conversation{
		ID:        uuid.New(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.convRepo.Create(ctx, conv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race: someone else created it between our lookup
			// and insert. Return theirs.
			existing, err := s.convRepo.GetByUsers(ctx, u1, u2)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, fmt.Errorf("conversation vanished after duplicate insert")
			}
			s.decorate(ctx, existing, userID, other)
			return existing, nil
		}
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	s.decorate(ctx, conv, userID, other)

	if s.notifier != nil {
		s.notifier.NotifyNewConversation(conv, otherUserID)
	}

	return conv, nil
}

// List returns the user's conversations ordered by most recent activity.
func (s *ConversationService) List(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	convs, err := s.convRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	for i := range convs {
		s.decoratePresence(ctx, &convs[i])
	}
	return convs, nil
}

// UnreadCounts is always computed off the ledger's read-state, never from
// a cache.
func (s *ConversationService) UnreadCounts(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	return s.convRepo.UnreadCounts(ctx, userID)
}

// IsParticipant is the authorization primitive shared by the message
// surface and the push-channel join path.
func (s *ConversationService) IsParticipant(ctx context.Context, userID, conversationID uuid.UUID) (bool, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return false, err
	}
	if conv == nil {
		return false, ErrConversationNotFound
	}
	return conv.HasParticipant(userID), nil
}

func (s *ConversationService) decorate(ctx context.Context, conv *domain.Conversation, userID uuid.UUID, other *domain.User) {
	conv.OtherUserID = other.ID
	conv.OtherUsername = other.Username
	conv.OtherAvatarURL = other.AvatarURL
	conv.OtherLastSeen = other.LastSeen
	s.decoratePresence(ctx, conv)
}

func (s *ConversationService) decoratePresence(ctx context.Context, conv *domain.Conversation) {
	if s.presence == nil {
		return
	}
	conv.OtherOnline = s.presence.IsOnline(ctx, conv.OtherUserID)
	if seen, ok := s.presence.LastSeen(ctx, conv.OtherUserID); ok && seen.After(conv.OtherLastSeen) {
		conv.OtherLastSeen = seen
	}
}
