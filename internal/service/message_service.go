package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

var (
	ErrMessageNotFound    = errors.New("message not found")
	ErrInvalidMessageType = errors.New("message type must be text, file or voice")
	ErrFileURLRequired    = errors.New("file and voice messages require a file_url")
	ErrEmptyContent       = errors.New("message content is required")
)

// MessageService is the ledger: the single order-assigning authority for
// messages within a conversation. Broadcast is a side effect of a
// successful append, never an independent write path.
type MessageService struct {
	messageRepo repository.MessageRepository
	convRepo    repository.ConversationRepository
	notifier    Notifier

	// sendMu serializes append through broadcast enqueue per conversation,
	// so events reach the hub queue in the order the ledger accepted them.
	// Striped by conversation id to bound memory.
	sendMu [64]sync.Mutex
}

func NewMessageService(messageRepo repository.MessageRepository, convRepo repository.ConversationRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		convRepo:    convRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SendMessageInput struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Content        string    `json:"content"`
	Type           string    `json:"type"`
	FileURL        *string   `json:"file_url,omitempty"`
	// Nonce is a client-generated idempotency key. Retrying a send with
	// the same nonce returns the already-appended message instead of
	// duplicating it.
	Nonce *string `json:"nonce,omitempty"`
}

type MessageListResponse struct {
	Messages []domain.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

func (s *MessageService) Send(ctx context.Context, senderID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	if err := s.checkParticipant(ctx, senderID, input.ConversationID); err != nil {
		return nil, err
	}

	msgType := input.Type
	if msgType == "" {
		msgType = domain.MessageTypeText
	}
	if !domain.ValidMessageType(msgType) {
		return nil, ErrInvalidMessageType
	}
	if msgType != domain.MessageTypeText {
		if input.FileURL == nil || *input.FileURL == "" {
			return nil, ErrFileURLRequired
		}
	} else if input.Content == "" {
		return nil, ErrEmptyContent
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: input.ConversationID,
		SenderID:       senderID,
		Content:        input.Content,
		Type:           msgType,
		FileURL:        input.FileURL,
		ReadBy:         []uuid.UUID{senderID},
		ClientNonce:    input.Nonce,
		CreatedAt:      time.Now(),
	}

	// Held until after NotifyNewMessage: a later append in the same
	// conversation must not enqueue its broadcast before ours.
	mu := s.conversationLock(input.ConversationID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.messageRepo.Append(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && input.Nonce != nil {
			// Retried send: the earlier attempt already landed.
			existing, err := s.messageRepo.GetByNonce(ctx, input.ConversationID, senderID, *input.Nonce)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("appending message: %w", err)
	}

	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

// List returns the conversation's messages oldest first, with cursor
// pagination for history scroll-back.
func (s *MessageService) List(ctx context.Context, userID, conversationID uuid.UUID, before *uuid.UUID, limit int) (*MessageListResponse, error) {
	if err := s.checkParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := s.messageRepo.ListByConversation(ctx, conversationID, before, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[len(messages)-limit:]
	}

	if messages == nil {
		messages = []domain.Message{}
	}

	return &MessageListResponse{
		Messages: messages,
		HasMore:  hasMore,
	}, nil
}

// MarkRead adds userID to the message's readBy set. Idempotent: re-marking
// by the same user is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	if err := s.checkParticipant(ctx, userID, msg.ConversationID); err != nil {
		return nil, err
	}

	return s.messageRepo.MarkRead(ctx, messageID, userID)
}

// ToggleFavorite flips the message's shared favorite flag.
func (s *MessageService) ToggleFavorite(ctx context.Context, userID, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	if err := s.checkParticipant(ctx, userID, msg.ConversationID); err != nil {
		return nil, err
	}

	return s.messageRepo.ToggleFavorite(ctx, messageID)
}

func (s *MessageService) conversationLock(id uuid.UUID) *sync.Mutex {
	return &s.sendMu[id[0]%64]
}

func (s *MessageService) checkParticipant(ctx context.Context, userID, conversationID uuid.UUID) error {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationNotFound
	}
	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}
	return nil
}
