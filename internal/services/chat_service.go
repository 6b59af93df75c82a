package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/seekershq/seekers-backend/internal/models"
	"github.com/seekershq/seekers-backend/pkg/apperr"
)

// ChatRepository is the chat persistence surface the chat service depends on.
type ChatRepository interface {
	RequestByID(ctx context.Context, id uuid.UUID) (*models.ChatRequest, error)
	RequestByPair(ctx context.Context, a, b uuid.UUID) (*models.ChatRequest, error)
	AcceptedRequestExists(ctx context.Context, a, b uuid.UUID) (bool, error)
	CreateRequest(ctx context.Context, r *models.ChatRequest) error
	UpdateRequest(ctx context.Context, r *models.ChatRequest) error
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	PendingRequests(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error)
	SentRequests(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error)
	AllRequests(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error)

	GetOrCreateConversation(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error)
	ConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	UserConversations(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Conversation, int, error)

	SaveMessage(ctx context.Context, m *models.Message) error
	MessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ConversationMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]models.Message, int, error)
	SearchMessages(ctx context.Context, conversationID uuid.UUID, term string, page, limit int) ([]models.Message, int, error)
	MarkAsRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	UnreadByConversation(ctx context.Context, userID uuid.UUID) ([]models.UnreadConversation, error)
	SoftDeleteMessage(ctx context.Context, id uuid.UUID) error
}

// UserFinder is the minimal account lookup the chat service needs.
type UserFinder interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ChatService enforces the request -> accept -> conversation -> message flow.
// Messaging between two users is closed until a chat request between them is
// accepted, and stays open from then on.
type ChatService struct {
	repo  ChatRepository
	users UserFinder
}

func NewChatService(repo ChatRepository, users UserFinder) *ChatService {
	return &ChatService{repo: repo, users: users}
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// NormalizePage clamps pagination inputs to sane bounds.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// SendRequest opens (or reopens) the single request row for the pair. A
// rejected row is reused and flipped back to pending under the new direction,
// so the unordered-pair uniqueness holds across retries.
func (s *ChatService) SendRequest(ctx context.Context, senderID, receiverID uuid.UUID, message *string) (*models.ChatRequest, error) {
	if senderID == receiverID {
		return nil, apperr.Validation(MsgChatSelfRequest)
	}

	receiver, err := s.users.ByID(ctx, receiverID)
	if err != nil {
		return nil, apperr.Internal("failed to look up receiver", err)
	}
	if receiver == nil {
		return nil, apperr.NotFound(MsgReceiverNotFound)
	}

	existing, err := s.repo.RequestByPair(ctx, senderID, receiverID)
	if err != nil {
		return nil, apperr.Internal("failed to look up chat request", err)
	}
	if existing != nil {
		switch existing.Status {
		case models.RequestAccepted:
			return nil, apperr.Conflict(MsgChatAlreadyEnabled)
		case models.RequestPending:
			return nil, apperr.Conflict(MsgChatRequestPending)
		case models.RequestRejected:
			existing.SenderID = senderID
			existing.ReceiverID = receiverID
			existing.Status = models.RequestPending
			existing.Message = message
			if err := s.repo.UpdateRequest(ctx, existing); err != nil {
				return nil, apperr.Internal("failed to reopen chat request", err)
			}
			return s.requestByID(ctx, existing.ID)
		}
	}

	req := &models.ChatRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
		Message:    message,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, apperr.Internal("failed to create chat request", err)
	}
	return s.requestByID(ctx, req.ID)
}

// AcceptRequest transitions pending -> accepted and materializes the
// conversation so both sides can message immediately.
func (s *ChatService) AcceptRequest(ctx context.Context, requestID, userID uuid.UUID) (*models.ChatRequest, *models.Conversation, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.ReceiverID != userID {
		return nil, nil, apperr.Forbidden(MsgOnlyReceiverAccepts)
	}

	req.Status = models.RequestAccepted
	if err := s.repo.UpdateRequest(ctx, req); err != nil {
		return nil, nil, apperr.Internal("failed to accept chat request", err)
	}

	conv, err := s.repo.GetOrCreateConversation(ctx, req.SenderID, req.ReceiverID)
	if err != nil {
		return nil, nil, apperr.Internal("failed to create conversation", err)
	}
	return req, conv, nil
}

// RejectRequest transitions pending -> rejected. The row stays so a later send
// can reopen it.
func (s *ChatService) RejectRequest(ctx context.Context, requestID, userID uuid.UUID) (*models.ChatRequest, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverID != userID {
		return nil, apperr.Forbidden(MsgOnlyReceiverRejects)
	}

	req.Status = models.RequestRejected
	if err := s.repo.UpdateRequest(ctx, req); err != nil {
		return nil, apperr.Internal("failed to reject chat request", err)
	}
	return req, nil
}

// CancelRequest lets the sender withdraw a pending request. The row is removed
// outright so a fresh request starts clean.
func (s *ChatService) CancelRequest(ctx context.Context, requestID, userID uuid.UUID) (*models.ChatRequest, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.SenderID != userID {
		return nil, apperr.Forbidden(MsgOnlySenderCancels)
	}
	if err := s.repo.DeleteRequest(ctx, req.ID); err != nil {
		return nil, apperr.Internal("failed to cancel chat request", err)
	}
	return req, nil
}

// IsChatAllowed reports whether an accepted request exists between the pair.
func (s *ChatService) IsChatAllowed(ctx context.Context, a, b uuid.UUID) (bool, error) {
	allowed, err := s.repo.AcceptedRequestExists(ctx, a, b)
	if err != nil {
		return false, apperr.Internal("failed to check chat authorization", err)
	}
	return allowed, nil
}

func (s *ChatService) PendingRequests(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error) {
	page, limit = NormalizePage(page, limit)
	reqs, total, err := s.repo.PendingRequests(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list pending requests", err)
	}
	return reqs, total, nil
}

func (s *ChatService) SentRequests(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error) {
	page, limit = NormalizePage(page, limit)
	reqs, total, err := s.repo.SentRequests(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list sent requests", err)
	}
	return reqs, total, nil
}

func (s *ChatService) AllRequests(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error) {
	page, limit = NormalizePage(page, limit)
	reqs, total, err := s.repo.AllRequests(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list requests", err)
	}
	return reqs, total, nil
}

// GetOrCreateConversation resolves the pair's conversation, gated on chat
// authorization.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, userID, otherID uuid.UUID) (*models.Conversation, error) {
	allowed, err := s.IsChatAllowed(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden(MsgChatNotAllowed)
	}
	conv, err := s.repo.GetOrCreateConversation(ctx, userID, otherID)
	if err != nil {
		return nil, apperr.Internal("failed to resolve conversation", err)
	}
	return conv, nil
}

func (s *ChatService) Conversations(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Conversation, int, error) {
	page, limit = NormalizePage(page, limit)
	convs, total, err := s.repo.UserConversations(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list conversations", err)
	}
	return convs, total, nil
}

// SendMessage persists a message from sender to receiver, creating the
// conversation on first contact. The chat gate applies to every send, not only
// the first.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string, attachmentURL *string) (*models.Message, error) {
	if content == "" && attachmentURL == nil {
		return nil, apperr.Validation("Message content is required")
	}

	allowed, err := s.IsChatAllowed(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden(MsgChatNotAllowed)
	}

	conv, err := s.repo.GetOrCreateConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, apperr.Internal("failed to resolve conversation", err)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		AttachmentURL:  attachmentURL,
	}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return nil, apperr.Internal("failed to save message", err)
	}
	return msg, nil
}

// Messages pages through a conversation oldest-first, restricted to its
// participants.
func (s *ChatService) Messages(ctx context.Context, userID, conversationID uuid.UUID, page, limit int) ([]models.Message, int, error) {
	if _, err := s.conversationForUser(ctx, conversationID, userID); err != nil {
		return nil, 0, err
	}
	page, limit = NormalizePage(page, limit)
	msgs, total, err := s.repo.ConversationMessages(ctx, conversationID, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list messages", err)
	}
	return msgs, total, nil
}

// SearchMessages runs a case-insensitive substring search within one
// conversation, newest first.
func (s *ChatService) SearchMessages(ctx context.Context, userID, conversationID uuid.UUID, term string, page, limit int) ([]models.Message, int, error) {
	if term == "" {
		return nil, 0, apperr.Validation("Search term is required")
	}
	if _, err := s.conversationForUser(ctx, conversationID, userID); err != nil {
		return nil, 0, err
	}
	page, limit = NormalizePage(page, limit)
	msgs, total, err := s.repo.SearchMessages(ctx, conversationID, term, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to search messages", err)
	}
	return msgs, total, nil
}

// MarkAsRead flips read-state on all messages addressed to userID in the
// conversation and returns the count of newly read messages.
func (s *ChatService) MarkAsRead(ctx context.Context, userID, conversationID uuid.UUID) (int64, error) {
	if _, err := s.conversationForUser(ctx, conversationID, userID); err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAsRead(ctx, conversationID, userID)
	if err != nil {
		return 0, apperr.Internal("failed to mark messages as read", err)
	}
	return n, nil
}

func (s *ChatService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("failed to count unread messages", err)
	}
	return n, nil
}

func (s *ChatService) UnreadByConversation(ctx context.Context, userID uuid.UUID) ([]models.UnreadConversation, error) {
	out, err := s.repo.UnreadByConversation(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to aggregate unread messages", err)
	}
	return out, nil
}

// DeleteMessage soft-deletes a message and returns it. Only a participant of
// the message may delete it.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, messageID uuid.UUID) (*models.Message, error) {
	msg, err := s.repo.MessageByID(ctx, messageID)
	if err != nil {
		return nil, apperr.Internal("failed to look up message", err)
	}
	if msg == nil || msg.DeletedAt != nil {
		return nil, apperr.NotFound(MsgMessageNotFound)
	}
	if msg.SenderID != userID && msg.ReceiverID != userID {
		return nil, apperr.Forbidden(MsgNotAParticipant)
	}
	if err := s.repo.SoftDeleteMessage(ctx, messageID); err != nil {
		return nil, apperr.Internal("failed to delete message", err)
	}
	return msg, nil
}

// Conversation returns a conversation the user participates in.
func (s *ChatService) Conversation(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	return s.conversationForUser(ctx, conversationID, userID)
}

func (s *ChatService) conversationForUser(ctx context.Context, conversationID, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.repo.ConversationByID(ctx, conversationID)
	if err != nil {
		return nil, apperr.Internal("failed to look up conversation", err)
	}
	if conv == nil {
		return nil, apperr.NotFound(MsgConversationNotFound)
	}
	if conv.Participant1 != userID && conv.Participant2 != userID {
		return nil, apperr.Forbidden(MsgNotAParticipant)
	}
	return conv, nil
}

func (s *ChatService) pendingRequest(ctx context.Context, requestID uuid.UUID) (*models.ChatRequest, error) {
	req, err := s.repo.RequestByID(ctx, requestID)
	if err != nil {
		return nil, apperr.Internal("failed to look up chat request", err)
	}
	if req == nil || req.Status != models.RequestPending {
		return nil, apperr.NotFound(MsgChatRequestNotFound)
	}
	return req, nil
}

func (s *ChatService) requestByID(ctx context.Context, id uuid.UUID) (*models.ChatRequest, error) {
	req, err := s.repo.RequestByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to load chat request", err)
	}
	if req == nil {
		return nil, apperr.NotFound(MsgChatRequestNotFound)
	}
	return req, nil
}
