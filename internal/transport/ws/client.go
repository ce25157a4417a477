package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/pkg/logger"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Authorizer decides whether a user may join a conversation's room.
type Authorizer interface {
	IsParticipant(ctx context.Context, userID, conversationID uuid.UUID) (bool, error)
}

// MessageSender is the single durable write path for messages arriving
// over the push channel. Delivery to rooms happens as a side effect of a
// successful append, never independently.
type MessageSender interface {
	Send(ctx context.Context, senderID uuid.UUID, input service.SendMessageInput) (*domain.Message, error)
}

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID

	authorizer Authorizer
	sender     MessageSender

	// joined tracks this connection's rooms for cleanup on disconnect.
	// Guarded by hub.mu.
	joined map[uuid.UUID]struct{}

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, authorizer Authorizer, sender MessageSender) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		userID:     userID,
		authorizer: authorizer,
		sender:     sender,
		joined:     make(map[uuid.UUID]struct{}),
		send:       make(chan []byte, sendBufSize),
		done:       make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket and routes them.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				logger.Debug().Str("user_id", c.userID.String()).Msg("ws: client disconnected")
			} else {
				logger.Warn().Err(err).Str("user_id", c.userID.String()).Msg("ws: read error")
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				logger.Warn().Err(err).Str("user_id", c.userID.String()).Msg("ws: write error")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeConversationJoin:
		var p ConversationPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid conversation.join payload")
			return
		}
		c.handleJoin(p.ConversationID)

	case EventTypeConversationLeave:
		var p ConversationPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid conversation.leave payload")
			return
		}
		c.hub.Leave(c, p.ConversationID)

	case EventTypeMessageSend:
		var input service.SendMessageInput
		if err := json.Unmarshal(event.Payload, &input); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid message.send payload")
			return
		}
		c.handleSend(input)

	case EventTypePing:
		c.hub.RefreshPresence(c.userID)
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// handleJoin subscribes this connection to a room, but only if the user is
// a participant of the conversation. An unauthorized join has no effect.
func (c *Client) handleJoin(conversationID uuid.UUID) {
	ok, err := c.authorizer.IsParticipant(context.Background(), c.userID, conversationID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			c.sendError("NOT_FOUND", "conversation not found")
			return
		}
		logger.Error().Err(err).Str("user_id", c.userID.String()).Msg("ws: join authorization failed")
		c.sendError("INTERNAL", "could not join conversation")
		return
	}
	if !ok {
		c.sendError("FORBIDDEN", "you are not a participant of this conversation")
		return
	}

	c.hub.Join(c, conversationID)
	logger.Debug().Str("user_id", c.userID.String()).Str("conversation_id", conversationID.String()).Msg("ws: joined room")
}

// handleSend pushes a message through the ledger. The broadcast back to
// the room is triggered by the append, not done here, so the push channel
// and the REST path share one durable write path.
func (c *Client) handleSend(input service.SendMessageInput) {
	_, err := c.sender.Send(context.Background(), c.userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			c.sendError("NOT_FOUND", "conversation not found")
		case errors.Is(err, service.ErrNotParticipant):
			c.sendError("FORBIDDEN", "you are not a participant of this conversation")
		case errors.Is(err, service.ErrInvalidMessageType), errors.Is(err, service.ErrFileURLRequired), errors.Is(err, service.ErrEmptyContent):
			c.sendError("INVALID_MESSAGE", err.Error())
		default:
			logger.Error().Err(err).Str("user_id", c.userID.String()).Msg("ws: send failed")
			c.sendError("INTERNAL", "could not send message")
		}
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
