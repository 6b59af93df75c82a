package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/seekershq/seekers-backend/internal/middleware"
	"github.com/seekershq/seekers-backend/internal/realtime"
	"github.com/seekershq/seekers-backend/internal/services"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS layer on the HTTP side.
		return true
	},
}

// clientMessage is what the frontend sends over the WebSocket.
type clientMessage struct {
	Type           string  `json:"type"`
	ConversationID string  `json:"conversation_id,omitempty"`
	ReceiverID     string  `json:"receiver_id,omitempty"`
	RequestID      string  `json:"request_id,omitempty"`
	UserID         string  `json:"user_id,omitempty"`
	Content        string  `json:"content,omitempty"`
	AttachmentURL  *string `json:"attachment_url,omitempty"`
	Message        *string `json:"message,omitempty"`
}

// Client-to-server event types.
const (
	opJoinPersonalRoom  = "join_personal_room"
	opJoinConversation  = "join_conversation"
	opLeaveConversation = "leave_conversation"
	opSendMessage       = "send_message"
	opTyping            = "typing"
	opStopTyping        = "stop_typing"
	opMarkAsRead        = "mark_as_read"
	opSendChatRequest   = "send_chat_request"
	opAcceptChatRequest = "accept_chat_request"
	opRejectChatRequest = "reject_chat_request"
	opCheckOnline       = "check_online"
	opPing              = "ping"
)

// WSHandler serves the realtime chat socket. Every state change goes through
// the same ChatService as the REST endpoints; the socket is transport only.
type WSHandler struct {
	hub    *realtime.Hub
	events EventPublisher
	chat   *services.ChatService
	tokens *services.TokenService
}

func NewWSHandler(hub *realtime.Hub, events EventPublisher, chat *services.ChatService, tokens *services.TokenService) *WSHandler {
	return &WSHandler{hub: hub, events: events, chat: chat, tokens: tokens}
}

// Serve authenticates the handshake, upgrades, and runs the read loop until
// the connection drops.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.Verify(middleware.ExtractToken(r))
	if err != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := h.hub.Register(userID, conn)
	defer h.hub.Unregister(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		h.dispatch(ctx, client, msg)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, client *realtime.Client, msg clientMessage) {
	switch msg.Type {
	case opJoinPersonalRoom:
		// Register already joined the personal room; accepted for older clients.
	case opJoinConversation:
		h.joinConversation(ctx, client, msg)
	case opLeaveConversation:
		h.leaveConversation(ctx, client, msg)
	case opSendMessage:
		h.sendMessage(ctx, client, msg)
	case opTyping:
		h.typing(ctx, client, msg, realtime.EventUserTyping)
	case opStopTyping:
		h.typing(ctx, client, msg, realtime.EventUserStoppedTyping)
	case opMarkAsRead:
		h.markAsRead(ctx, client, msg)
	case opSendChatRequest:
		h.sendChatRequest(ctx, client, msg)
	case opAcceptChatRequest:
		h.acceptChatRequest(ctx, client, msg)
	case opRejectChatRequest:
		h.rejectChatRequest(ctx, client, msg)
	case opCheckOnline:
		h.checkOnline(client, msg)
	case opPing:
		// Read deadline already refreshed.
	default:
		// Ignore unknown types.
	}
}

func (h *WSHandler) sendError(client *realtime.Client, err error) {
	client.Send(realtime.Event{
		Type:      realtime.EventError,
		Data:      envelope{"message": err.Error()},
		Timestamp: time.Now().UTC(),
	})
}

func (h *WSHandler) joinConversation(ctx context.Context, client *realtime.Client, msg clientMessage) {
	conversationID, err := uuid.Parse(msg.ConversationID)
	if err != nil {
		return
	}
	// Membership check; non-participants cannot join the room.
	if _, err := h.chat.Conversation(ctx, client.UserID, conversationID); err != nil {
		h.sendError(client, err)
		return
	}

	room := realtime.ConversationRoom(conversationID)
	h.hub.Join(client, room)
	h.events.Publish(ctx, room, realtime.Event{
		Type: realtime.EventUserJoined,
		Data: envelope{"user_id": client.UserID, "conversation_id": conversationID},
	})
}

func (h *WSHandler) leaveConversation(ctx context.Context, client *realtime.Client, msg clientMessage) {
	conversationID, err := uuid.Parse(msg.ConversationID)
	if err != nil {
		return
	}
	room := realtime.ConversationRoom(conversationID)
	h.hub.Leave(client, room)
	h.events.Publish(ctx, room, realtime.Event{
		Type: realtime.EventUserLeft,
		Data: envelope{"user_id": client.UserID, "conversation_id": conversationID},
	})
}

func (h *WSHandler) sendMessage(ctx context.Context, client *realtime.Client, msg clientMessage) {
	receiverID, err := uuid.Parse(msg.ReceiverID)
	if err != nil {
		return
	}

	saved, err := h.chat.SendMessage(ctx, client.UserID, receiverID, msg.Content, msg.AttachmentURL)
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.events.Publish(ctx, realtime.ConversationRoom(saved.ConversationID), realtime.Event{
		Type: realtime.EventNewMessage,
		Data: saved,
	})
	h.events.Publish(ctx, realtime.UserRoom(receiverID), realtime.Event{
		Type: realtime.EventMessageNotification,
		Data: saved,
	})
}

func (h *WSHandler) typing(ctx context.Context, client *realtime.Client, msg clientMessage, eventType string) {
	conversationID, err := uuid.Parse(msg.ConversationID)
	if err != nil {
		return
	}
	room := realtime.ConversationRoom(conversationID)
	if !h.hub.InRoom(client.UserID, room) {
		return
	}
	h.events.Publish(ctx, room, realtime.Event{
		Type: eventType,
		Data: envelope{"user_id": client.UserID, "conversation_id": conversationID},
	})
}

func (h *WSHandler) markAsRead(ctx context.Context, client *realtime.Client, msg clientMessage) {
	conversationID, err := uuid.Parse(msg.ConversationID)
	if err != nil {
		return
	}

	n, err := h.chat.MarkAsRead(ctx, client.UserID, conversationID)
	if err != nil {
		h.sendError(client, err)
		return
	}
	if n == 0 {
		return
	}
	h.events.Publish(ctx, realtime.ConversationRoom(conversationID), realtime.Event{
		Type: realtime.EventMessagesRead,
		Data: envelope{"conversation_id": conversationID, "reader_id": client.UserID, "count": n},
	})
}

func (h *WSHandler) sendChatRequest(ctx context.Context, client *realtime.Client, msg clientMessage) {
	receiverID, err := uuid.Parse(msg.ReceiverID)
	if err != nil {
		return
	}

	req, err := h.chat.SendRequest(ctx, client.UserID, receiverID, msg.Message)
	if err != nil {
		h.sendError(client, err)
		return
	}
	h.events.Publish(ctx, realtime.UserRoom(receiverID), realtime.Event{
		Type: realtime.EventRequestReceived,
		Data: req,
	})
}

func (h *WSHandler) acceptChatRequest(ctx context.Context, client *realtime.Client, msg clientMessage) {
	requestID, err := uuid.Parse(msg.RequestID)
	if err != nil {
		return
	}

	req, conv, err := h.chat.AcceptRequest(ctx, requestID, client.UserID)
	if err != nil {
		h.sendError(client, err)
		return
	}
	h.events.Publish(ctx, realtime.UserRoom(req.SenderID), realtime.Event{
		Type: realtime.EventRequestAccepted,
		Data: envelope{"request": req, "conversation": conv},
	})
}

func (h *WSHandler) rejectChatRequest(ctx context.Context, client *realtime.Client, msg clientMessage) {
	requestID, err := uuid.Parse(msg.RequestID)
	if err != nil {
		return
	}

	req, err := h.chat.RejectRequest(ctx, requestID, client.UserID)
	if err != nil {
		h.sendError(client, err)
		return
	}
	h.events.Publish(ctx, realtime.UserRoom(req.SenderID), realtime.Event{
		Type: realtime.EventRequestRejected,
		Data: req,
	})
}

// checkOnline answers from this instance's connection registry only.
func (h *WSHandler) checkOnline(client *realtime.Client, msg clientMessage) {
	userID, err := uuid.Parse(msg.UserID)
	if err != nil {
		return
	}
	client.Send(realtime.Event{
		Type:      realtime.EventOnlineStatus,
		Data:      envelope{"user_id": userID, "online": h.hub.IsOnline(userID)},
		Timestamp: time.Now().UTC(),
	})
}
