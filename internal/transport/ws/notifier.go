package ws

import (
	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/pkg/logger"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageNew, &msg.ConversationID, MessagePayload{Message: *msg})
	if err != nil {
		logger.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToConversation(msg.ConversationID, evt, nil)
}

func (n *HubNotifier) NotifyNewConversation(conv *domain.Conversation, recipientID uuid.UUID) {
	evt, err := NewEvent(EventTypeConversationNew, &conv.ID, ConversationNewPayload{Conversation: *conv})
	if err != nil {
		logger.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToUser(recipientID, evt)
}

func (n *HubNotifier) NotifyFriendRequest(req *domain.FriendRequest) {
	evt, err := NewEvent(EventTypeFriendRequest, nil, FriendRequestPayload{FriendRequest: *req})
	if err != nil {
		logger.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToUser(req.ReceiverID, evt)
}

func (n *HubNotifier) NotifyIncomingCall(call *domain.Call) {
	evt, err := NewEvent(EventTypeCallIncoming, nil, CallPayload{Call: *call})
	if err != nil {
		logger.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToUser(call.ReceiverID, evt)
}
