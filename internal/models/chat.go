package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRequestStatus is the lifecycle state of a chat request.
// pending -> accepted | rejected; rejected rows are reopened back to pending
// by a fresh send so the unordered pair keeps a single row.
type ChatRequestStatus string

const (
	RequestPending  ChatRequestStatus = "pending"
	RequestAccepted ChatRequestStatus = "accepted"
	RequestRejected ChatRequestStatus = "rejected"
)

// ChatRequest is a proposal from sender to receiver to enable messaging.
type ChatRequest struct {
	ID         uuid.UUID         `json:"id"`
	SenderID   uuid.UUID         `json:"sender_id"`
	ReceiverID uuid.UUID         `json:"receiver_id"`
	Status     ChatRequestStatus `json:"status"`
	Message    *string           `json:"message,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`

	Sender   *PublicUser `json:"sender,omitempty"`
	Receiver *PublicUser `json:"receiver,omitempty"`
}

// Conversation is the single messaging channel for an unordered user pair.
// Participant1 is always the lower of the two ids so the pair maps to exactly
// one row regardless of who initiated.
type Conversation struct {
	ID            uuid.UUID  `json:"id"`
	Participant1  uuid.UUID  `json:"participant_1_id"`
	Participant2  uuid.UUID  `json:"participant_2_id"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	Other *PublicUser `json:"other_user,omitempty"`
}

// CanonicalPair orders two user ids ascending for conversation identity.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}

// Message belongs to exactly one conversation. Immutable after creation except
// for read-state and the soft-delete stamp.
type Message struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	ReceiverID     uuid.UUID  `json:"receiver_id"`
	Content        string     `json:"content"`
	AttachmentURL  *string    `json:"attachment_url,omitempty"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"-"`

	Sender   *PublicUser `json:"sender,omitempty"`
	Receiver *PublicUser `json:"receiver,omitempty"`
}

// UnreadConversation is one entry of the unread-by-conversation aggregate.
type UnreadConversation struct {
	ConversationID uuid.UUID  `json:"conversation_id"`
	UnreadCount    int        `json:"unread_count"`
	OtherUser      PublicUser `json:"other_user"`
}

// GalleryItem is one uploaded media entry in a user's gallery.
type GalleryItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	URL       string    `json:"url"`
	PublicID  string    `json:"-"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
}
