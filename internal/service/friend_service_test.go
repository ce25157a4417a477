package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFriendFixture(t *testing.T) (*fakeStore, *FriendService) {
	t.Helper()
	store := newFakeStore()
	svc := NewFriendService(store.friendRepo(), store.userRepo())
	return store, svc
}

func TestSendFriendRequest(t *testing.T) {
	store, svc := newFriendFixture(t)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)

	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")

	req, err := svc.SendRequest(context.Background(), alice.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, req.SenderID)
	assert.Equal(t, bob.ID, req.ReceiverID)
	assert.Equal(t, "pending", req.Status)
	require.Len(t, notifier.friendReqs, 1)
}

func TestSendFriendRequestErrors(t *testing.T) {
	store, svc := newFriendFixture(t)
	alice := store.addUser("alice@example.com")
	store.addUser("bob@example.com")

	_, err := svc.SendRequest(context.Background(), alice.ID, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.SendRequest(context.Background(), alice.ID, "alice@example.com")
	assert.ErrorIs(t, err, ErrCannotFriendSelf)

	_, err = svc.SendRequest(context.Background(), alice.ID, "bob@example.com")
	require.NoError(t, err)

	// Only one pending request per direction.
	_, err = svc.SendRequest(context.Background(), alice.ID, "bob@example.com")
	assert.ErrorIs(t, err, ErrRequestAlreadySent)
}

func TestSendFriendRequestAfterRejection(t *testing.T) {
	store, svc := newFriendFixture(t)
	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")

	req, err := svc.SendRequest(context.Background(), alice.ID, "bob@example.com")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), bob.ID, req.ID, "rejected")
	require.NoError(t, err)

	// Once resolved, the pair may try again.
	_, err = svc.SendRequest(context.Background(), alice.ID, "bob@example.com")
	require.NoError(t, err)
}

func TestRespond(t *testing.T) {
	store, svc := newFriendFixture(t)
	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")

	req, err := svc.SendRequest(context.Background(), alice.ID, "bob@example.com")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), bob.ID, req.ID, "maybe")
	assert.ErrorIs(t, err, ErrInvalidFriendStatus)

	// The sender cannot accept their own request.
	_, err = svc.Respond(context.Background(), alice.ID, req.ID, "accepted")
	assert.ErrorIs(t, err, ErrNotRequestReceiver)

	_, err = svc.Respond(context.Background(), bob.ID, uuid.New(), "accepted")
	assert.ErrorIs(t, err, ErrRequestNotFound)

	accepted, err := svc.Respond(context.Background(), bob.ID, req.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)

	_, err = svc.Respond(context.Background(), bob.ID, req.ID, "rejected")
	assert.ErrorIs(t, err, ErrAlreadyResponded)
}

func TestListIncoming(t *testing.T) {
	store, svc := newFriendFixture(t)
	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")
	carol := store.addUser("carol@example.com")

	_, err := svc.SendRequest(context.Background(), alice.ID, "carol@example.com")
	require.NoError(t, err)
	_, err = svc.SendRequest(context.Background(), bob.ID, "carol@example.com")
	require.NoError(t, err)

	reqs, err := svc.ListIncoming(context.Background(), carol.ID)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)

	// Senders see nothing incoming.
	reqs, err = svc.ListIncoming(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestFriendRequestNotificationGate(t *testing.T) {
	store, svc := newFriendFixture(t)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)

	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")
	bob.Notifications.FriendRequestNotifications = false
	require.NoError(t, store.userRepo().Update(context.Background(), bob))

	_, err := svc.SendRequest(context.Background(), alice.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, notifier.friendReqs)
}
