package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

// fakeStore is an in-memory stand-in for the postgres layer. It enforces
// the same uniqueness constraints and the same guarded pointer advancement
// so service behavior under races can be exercised without a database.
// The per-repo adapter types below expose it through the repository
// interfaces.
type fakeStore struct {
	mu sync.Mutex

	users   map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID

	convs  map[uuid.UUID]*domain.Conversation
	byPair map[[2]uuid.UUID]uuid.UUID

	messages map[uuid.UUID]*domain.Message
	nextSeq  int64

	friendReqs map[uuid.UUID]*domain.FriendRequest

	calls map[uuid.UUID]*domain.Call
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[uuid.UUID]*domain.User),
		byEmail:    make(map[string]uuid.UUID),
		convs:      make(map[uuid.UUID]*domain.Conversation),
		byPair:     make(map[[2]uuid.UUID]uuid.UUID),
		messages:   make(map[uuid.UUID]*domain.Message),
		friendReqs: make(map[uuid.UUID]*domain.FriendRequest),
		calls:      make(map[uuid.UUID]*domain.Call),
	}
}

func (f *fakeStore) addUser(email string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &domain.User{
		ID:            uuid.New(),
		Email:         email,
		Username:      email,
		Notifications: domain.DefaultNotificationSettings(),
		CreatedAt:     time.Now(),
	}
	f.users[user.ID] = user
	f.byEmail[email] = user.ID
	return user
}

func (f *fakeStore) userRepo() repository.UserRepository {
	return fakeUserRepo{f}
}

func (f *fakeStore) convRepo() repository.ConversationRepository {
	return fakeConvRepo{f}
}

func (f *fakeStore) messageRepo() repository.MessageRepository {
	return fakeMessageRepo{f}
}

func (f *fakeStore) friendRepo() repository.FriendRepository {
	return fakeFriendRepo{f}
}

func (f *fakeStore) callRepo() repository.CallRepository {
	return fakeCallRepo{f}
}

type fakeUserRepo struct{ s *fakeStore }

func (r fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.byEmail[user.Email]; taken {
		return repository.ErrDuplicate
	}
	cp := *user
	r.s.users[user.ID] = &cp
	r.s.byEmail[user.Email] = user.ID
	return nil
}

func (r fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (r fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *r.s.users[id]
	return &cp, nil
}

func (r fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[user.ID]
	if !ok {
		return nil
	}
	delete(r.s.byEmail, old.Email)
	cp := *user
	r.s.users[user.ID] = &cp
	r.s.byEmail[user.Email] = user.ID
	return nil
}

func (r fakeUserRepo) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user, ok := r.s.users[id]; ok {
		user.LastSeen = time.Now()
	}
	return nil
}

type fakeConvRepo struct{ s *fakeStore }

func (r fakeConvRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{conv.User1ID, conv.User2ID}
	if _, exists := r.s.byPair[key]; exists {
		return repository.ErrDuplicate
	}
	cp := *conv
	r.s.convs[conv.ID] = &cp
	r.s.byPair[key] = conv.ID
	return nil
}

func (r fakeConvRepo) GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byPair[[2]uuid.UUID{user1ID, user2ID}]
	if !ok {
		return nil, nil
	}
	cp := *r.s.convs[id]
	return &cp, nil
}

func (r fakeConvRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	conv, ok := r.s.convs[id]
	if !ok {
		return nil, nil
	}
	cp := *conv
	return &cp, nil
}

func (r fakeConvRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Conversation
	for _, conv := range r.s.convs {
		if !conv.HasParticipant(userID) {
			continue
		}
		cp := *conv
		cp.OtherUserID = conv.OtherParticipant(userID)
		if other, ok := r.s.users[cp.OtherUserID]; ok {
			cp.OtherUsername = other.Username
			cp.OtherLastSeen = other.LastSeen
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r fakeConvRepo) UnreadCounts(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[uuid.UUID]int)
	for _, msg := range r.s.messages {
		conv, ok := r.s.convs[msg.ConversationID]
		if !ok || !conv.HasParticipant(userID) {
			continue
		}
		if msg.SenderID == userID || msg.ReadByUser(userID) {
			continue
		}
		counts[msg.ConversationID]++
	}
	return counts, nil
}

type fakeMessageRepo struct{ s *fakeStore }

func (r fakeMessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if msg.ClientNonce != nil {
		for _, existing := range r.s.messages {
			if existing.ConversationID == msg.ConversationID &&
				existing.SenderID == msg.SenderID &&
				existing.ClientNonce != nil && *existing.ClientNonce == *msg.ClientNonce {
				return repository.ErrDuplicate
			}
		}
	}

	r.s.nextSeq++
	msg.Seq = r.s.nextSeq
	r.s.messages[msg.ID] = copyMessage(msg)

	// Same guarded advancement as the SQL: only a later ledger entry may
	// move the pointer.
	if conv, ok := r.s.convs[msg.ConversationID]; ok && conv.LastMessageSeq < msg.Seq {
		id := msg.ID
		conv.LastMessageID = &id
		conv.LastMessageSeq = msg.Seq
		conv.UpdatedAt = msg.CreatedAt
	}
	return nil
}

func (r fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg, ok := r.s.messages[id]
	if !ok {
		return nil, nil
	}
	return copyMessage(msg), nil
}

func (r fakeMessageRepo) GetByNonce(ctx context.Context, conversationID, senderID uuid.UUID, nonce string) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, msg := range r.s.messages {
		if msg.ConversationID == conversationID && msg.SenderID == senderID &&
			msg.ClientNonce != nil && *msg.ClientNonce == nonce {
			return copyMessage(msg), nil
		}
	}
	return nil, nil
}

func (r fakeMessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var cutoff int64 = -1
	if before != nil {
		if b, ok := r.s.messages[*before]; ok {
			cutoff = b.Seq
		}
	}

	var out []domain.Message
	for _, msg := range r.s.messages {
		if msg.ConversationID != conversationID {
			continue
		}
		if cutoff >= 0 && msg.Seq >= cutoff {
			continue
		}
		out = append(out, *copyMessage(msg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })

	// Matches the SQL shape: the last `limit` entries in ledger order.
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r fakeMessageRepo) MarkRead(ctx context.Context, messageID, userID uuid.UUID) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg, ok := r.s.messages[messageID]
	if !ok {
		return nil, nil
	}
	if !msg.ReadByUser(userID) {
		msg.ReadBy = append(msg.ReadBy, userID)
	}
	return copyMessage(msg), nil
}

func (r fakeMessageRepo) ToggleFavorite(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg, ok := r.s.messages[messageID]
	if !ok {
		return nil, nil
	}
	msg.IsFavorite = !msg.IsFavorite
	return copyMessage(msg), nil
}

func copyMessage(msg *domain.Message) *domain.Message {
	cp := *msg
	cp.ReadBy = append([]uuid.UUID(nil), msg.ReadBy...)
	return &cp
}

type fakeFriendRepo struct{ s *fakeStore }

func (r fakeFriendRepo) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.friendReqs {
		if existing.SenderID == req.SenderID && existing.ReceiverID == req.ReceiverID &&
			existing.Status == domain.FriendRequestPending {
			return repository.ErrDuplicate
		}
	}
	cp := *req
	r.s.friendReqs[req.ID] = &cp
	return nil
}

func (r fakeFriendRepo) GetRequestByID(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.friendReqs[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r fakeFriendRepo) GetPendingByUsers(ctx context.Context, senderID, receiverID uuid.UUID) (*domain.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, req := range r.s.friendReqs {
		if req.SenderID == senderID && req.ReceiverID == receiverID && req.Status == domain.FriendRequestPending {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeFriendRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.friendReqs[id]
	if !ok {
		return nil, nil
	}
	req.Status = status
	cp := *req
	return &cp, nil
}

func (r fakeFriendRepo) ListIncomingPending(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.FriendRequest
	for _, req := range r.s.friendReqs {
		if req.ReceiverID == userID && req.Status == domain.FriendRequestPending {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeCallRepo struct{ s *fakeStore }

func (r fakeCallRepo) Create(ctx context.Context, call *domain.Call) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *call
	r.s.calls[call.ID] = &cp
	return nil
}

func (r fakeCallRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Call, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	call, ok := r.s.calls[id]
	if !ok {
		return nil, nil
	}
	cp := *call
	return &cp, nil
}

func (r fakeCallRepo) Update(ctx context.Context, call *domain.Call) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *call
	r.s.calls[call.ID] = &cp
	return nil
}

func (r fakeCallRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Call, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Call
	for _, call := range r.s.calls {
		if call.CallerID == userID || call.ReceiverID == userID {
			out = append(out, *call)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

// recordingNotifier captures pushed events for assertions.
type recordingNotifier struct {
	mu            sync.Mutex
	messages      []*domain.Message
	conversations []uuid.UUID // recipient ids
	friendReqs    []*domain.FriendRequest
	calls         []*domain.Call
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) NotifyNewConversation(conv *domain.Conversation, recipientID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.conversations = append(n.conversations, recipientID)
}

func (n *recordingNotifier) NotifyFriendRequest(req *domain.FriendRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.friendReqs = append(n.friendReqs, req)
}

func (n *recordingNotifier) NotifyIncomingCall(call *domain.Call) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call)
}
