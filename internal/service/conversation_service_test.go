package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationFixture(t *testing.T) (*fakeStore, *ConversationService) {
	t.Helper()
	store := newFakeStore()
	svc := NewConversationService(store.convRepo(), store.userRepo(), nil)
	return store, svc
}

func TestGetOrCreateReturnsSameConversation(t *testing.T) {
	store, svc := newConversationFixture(t)
	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")

	first, err := svc.GetOrCreate(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Same pair, both directions, always the same row.
	again, err := svc.GetOrCreate(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	reversed, err := svc.GetOrCreate(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, reversed.ID)

	assert.Len(t, store.convs, 1)
}

func TestGetOrCreateConcurrent(t *testing.T) {
	store, svc := newConversationFixture(t)
	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")

	const workers = 16
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := alice.ID, bob.ID
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := svc.GetOrCreate(context.Background(), a, b)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
	}
	for i := 1; i < workers; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Len(t, store.convs, 1)
}

func TestGetOrCreateSelf(t *testing.T) {
	store, svc := newConversationFixture(t)
	alice := store.addUser("alice@example.com")

	_, err := svc.GetOrCreate(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrCannotChatSelf)
}

func TestGetOrCreateUnknownUser(t *testing.T) {
	store, svc := newConversationFixture(t)
	alice := store.addUser("alice@example.com")

	_, err := svc.GetOrCreate(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetOrCreateNotifiesOtherParticipantOnce(t *testing.T) {
	store, svc := newConversationFixture(t)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)

	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")

	_, err := svc.GetOrCreate(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	// Resolving an existing conversation must not re-announce it.
	_, err = svc.GetOrCreate(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	require.Len(t, notifier.conversations, 1)
	assert.Equal(t, bob.ID, notifier.conversations[0])
}

func TestListOrderedByRecentActivity(t *testing.T) {
	store, svc := newConversationFixture(t)
	msgSvc := NewMessageService(store.messageRepo(), store.convRepo())

	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")
	carol := store.addUser("carol@example.com")

	withBob, err := svc.GetOrCreate(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	withCarol, err := svc.GetOrCreate(context.Background(), alice.ID, carol.ID)
	require.NoError(t, err)

	// A message in the older conversation moves it to the front.
	_, err = msgSvc.Send(context.Background(), bob.ID, SendMessageInput{
		ConversationID: withBob.ID,
		Content:        "hey",
	})
	require.NoError(t, err)

	convs, err := svc.List(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, withBob.ID, convs[0].ID)
	assert.Equal(t, withCarol.ID, convs[1].ID)
}

func TestUnreadCountsComputedFromReadState(t *testing.T) {
	store, svc := newConversationFixture(t)
	msgSvc := NewMessageService(store.messageRepo(), store.convRepo())

	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")

	conv, err := svc.GetOrCreate(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	first, err := msgSvc.Send(context.Background(), alice.ID, SendMessageInput{ConversationID: conv.ID, Content: "one"})
	require.NoError(t, err)
	_, err = msgSvc.Send(context.Background(), alice.ID, SendMessageInput{ConversationID: conv.ID, Content: "two"})
	require.NoError(t, err)
	_, err = msgSvc.Send(context.Background(), bob.ID, SendMessageInput{ConversationID: conv.ID, Content: "three"})
	require.NoError(t, err)

	bobCounts, err := svc.UnreadCounts(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, bobCounts[conv.ID])

	aliceCounts, err := svc.UnreadCounts(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, aliceCounts[conv.ID])

	// Reading drops the count immediately, no cached state involved.
	_, err = msgSvc.MarkRead(context.Background(), bob.ID, first.ID)
	require.NoError(t, err)

	bobCounts, err = svc.UnreadCounts(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bobCounts[conv.ID])
}

type fakePresence struct {
	online map[uuid.UUID]bool
	seen   map[uuid.UUID]time.Time
}

func (p *fakePresence) IsOnline(ctx context.Context, userID uuid.UUID) bool {
	return p.online[userID]
}

func (p *fakePresence) LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool) {
	t, ok := p.seen[userID]
	return t, ok
}

func TestListDecoratesPresence(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")

	seen := time.Now().Add(-time.Minute)
	presence := &fakePresence{
		online: map[uuid.UUID]bool{bob.ID: true},
		seen:   map[uuid.UUID]time.Time{bob.ID: seen},
	}
	svc := NewConversationService(store.convRepo(), store.userRepo(), presence)

	_, err := svc.GetOrCreate(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	convs, err := svc.List(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.True(t, convs[0].OtherOnline)
	assert.WithinDuration(t, seen, convs[0].OtherLastSeen, time.Second)
}

func TestIsParticipant(t *testing.T) {
	store, svc := newConversationFixture(t)
	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")
	mallory := store.addUser("mallory@example.com")

	conv, err := svc.GetOrCreate(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	ok, err := svc.IsParticipant(context.Background(), alice.ID, conv.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsParticipant(context.Background(), mallory.ID, conv.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.IsParticipant(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
