package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/pkg/logger"
)

// PresenceRecorder persists online/offline transitions. Optional; a nil
// recorder disables presence bookkeeping.
type PresenceRecorder interface {
	SetOnline(ctx context.Context, userID uuid.UUID)
	SetOffline(ctx context.Context, userID uuid.UUID, lastSeen time.Time)
}

// Hub owns the room registry: which connections are subscribed to which
// conversation. Membership changes are synchronous; fan-out runs on a
// single consumer goroutine so events for one conversation reach every
// subscribed connection in the order they were enqueued, which is the
// order the ledger accepted them.
type Hub struct {
	mu sync.RWMutex
	// rooms maps conversationID → subscribed connections.
	rooms map[uuid.UUID]map[*Client]struct{}
	// clients maps userID → that user's open connections (multi-device).
	clients map[uuid.UUID]map[*Client]struct{}

	queue    chan outbound
	presence PresenceRecorder
}

type outbound struct {
	// exactly one of conversationID / userID is set
	conversationID *uuid.UUID
	userID         *uuid.UUID
	data           []byte
	exclude        *uuid.UUID // optional: skip this user's connections
}

func NewHub(presence PresenceRecorder) *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]map[*Client]struct{}),
		clients:  make(map[uuid.UUID]map[*Client]struct{}),
		queue:    make(chan outbound, 256),
		presence: presence,
	}
}

// Run drains the fan-out queue. Call this in a goroutine.
func (h *Hub) Run() {
	for out := range h.queue {
		h.deliver(out)
	}
}

func (h *Hub) deliver(out outbound) {
	var targets []*Client

	h.mu.RLock()
	switch {
	case out.conversationID != nil:
		for c := range h.rooms[*out.conversationID] {
			if out.exclude != nil && c.userID == *out.exclude {
				continue
			}
			targets = append(targets, c)
		}
	case out.userID != nil:
		for c := range h.clients[*out.userID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- out.data:
		default:
			// Slow consumer: drop the connection rather than stall the
			// queue. The ledger is the catch-up path on reconnect.
			logger.Warn().Str("user_id", c.userID.String()).Msg("ws hub: send buffer full, dropping client")
			h.Unregister(c)
		}
	}
}

// Register adds a freshly accepted connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	first := len(h.clients[c.userID]) == 1
	total := len(h.clients)
	h.mu.Unlock()

	logger.Info().Str("user_id", c.userID.String()).Int("users_online", total).Msg("ws hub: client connected")

	if first {
		if h.presence != nil {
			h.presence.SetOnline(context.Background(), c.userID)
		}
		h.broadcastPresence(c.userID, "online")
	}
}

// Unregister removes a connection from the user registry and every room it
// joined. Idempotent; safe to call for an already removed client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if ok {
		if _, present := set[c]; !present {
			ok = false
		}
	}
	if ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
		for convID := range c.joined {
			if room := h.rooms[convID]; room != nil {
				delete(room, c)
				if len(room) == 0 {
					delete(h.rooms, convID)
				}
			}
		}
		c.joined = nil
	}
	last := ok && h.clients[c.userID] == nil
	h.mu.Unlock()

	if !ok {
		return
	}

	// send stays open so in-flight fan-out cannot hit a closed channel;
	// WritePump exits via done and the channel gets collected with the client.
	close(c.done)
	logger.Info().Str("user_id", c.userID.String()).Msg("ws hub: client disconnected")

	if last {
		if h.presence != nil {
			h.presence.SetOffline(context.Background(), c.userID, time.Now())
		}
		h.broadcastPresence(c.userID, "offline")
	}
}

// RefreshPresence re-arms the online TTL for a connected user.
func (h *Hub) RefreshPresence(userID uuid.UUID) {
	if h.presence != nil {
		h.presence.SetOnline(context.Background(), userID)
	}
}

// Join subscribes a connection to a conversation's room. Authorization is
// the caller's job; the hub only tracks membership.
func (h *Hub) Join(c *Client, conversationID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Unregister nils out joined when it drops a connection. The read pump
	// may still race in with a join; adding the dead connection to a room
	// would leak the membership, so treat it as gone.
	if c.joined == nil {
		return
	}
	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[*Client]struct{})
	}
	h.rooms[conversationID][c] = struct{}{}
	c.joined[conversationID] = struct{}{}
}

// Leave unsubscribes a connection from a room.
func (h *Hub) Leave(c *Client, conversationID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room := h.rooms[conversationID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	delete(c.joined, conversationID)
}

// BroadcastToConversation fans an event out to every connection in the
// conversation's room.
func (h *Hub) BroadcastToConversation(conversationID uuid.UUID, event *Event, excludeUserID *uuid.UUID) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("ws hub: marshal error")
		return
	}
	h.queue <- outbound{conversationID: &conversationID, data: data, exclude: excludeUserID}
}

// BroadcastToUser sends an event to all of a user's connections.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("ws hub: marshal error")
		return
	}
	h.queue <- outbound{userID: &userID, data: data}
}

// broadcastPresence tells every connected user about an online/offline flip.
func (h *Hub) broadcastPresence(userID uuid.UUID, status string) {
	evt, err := NewEvent(EventTypePresence, nil, PresencePayload{UserID: userID, Status: status})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}

	h.mu.RLock()
	var targets []*Client
	for uid, set := range h.clients {
		if uid == userID {
			continue
		}
		for c := range set {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- data:
		default:
		}
	}
}
