// Package realtime fans chat events out to connected WebSocket clients.
// Clients join rooms (one per conversation plus a personal room per user);
// events are published through Redis so every instance delivers to its own
// local connections.
package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Server-to-client event types.
const (
	EventNewMessage          = "new_message"
	EventMessageNotification = "message_notification"
	EventUserTyping          = "user_typing"
	EventUserStoppedTyping   = "user_stopped_typing"
	EventMessagesRead        = "messages_read"
	EventMessageDeleted      = "message_deleted"
	EventRequestReceived     = "chat_request_received"
	EventRequestAccepted     = "chat_request_accepted"
	EventRequestRejected     = "chat_request_rejected"
	EventRequestCancelled    = "chat_request_cancelled"
	EventOnlineStatus        = "online_status"
	EventUserJoined          = "user_joined"
	EventUserLeft            = "user_left"
	EventError               = "error"
)

// Event is the payload delivered to clients and carried over Redis.
type Event struct {
	Type      string      `json:"type"`
	Room      string      `json:"room,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp,omitempty"`
}

// ConversationRoom names the room shared by a conversation's participants.
func ConversationRoom(conversationID uuid.UUID) string {
	return "conversation_" + conversationID.String()
}

// UserRoom names a user's personal room, used for notifications that must
// reach the user outside any open conversation.
func UserRoom(userID uuid.UUID) string {
	return "user_" + userID.String()
}
