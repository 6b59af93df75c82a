package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seekershq/seekers-backend/internal/middleware"
	"github.com/seekershq/seekers-backend/internal/models"
	"github.com/seekershq/seekers-backend/internal/realtime"
	"github.com/seekershq/seekers-backend/internal/services"
)

// EventPublisher pushes realtime events to rooms across all instances.
type EventPublisher interface {
	Publish(ctx context.Context, room string, event realtime.Event) error
}

type ChatHandler struct {
	chat   *services.ChatService
	events EventPublisher
}

func NewChatHandler(chat *services.ChatService, events EventPublisher) *ChatHandler {
	return &ChatHandler{chat: chat, events: events}
}

type SendRequestRequest struct {
	ReceiverID string  `json:"receiver_id"`
	Message    *string `json:"message,omitempty"`
}

type SendMessageRequest struct {
	ReceiverID    string  `json:"receiver_id"`
	Content       string  `json:"content"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
}

type ConversationRequest struct {
	UserID string `json:"user_id"`
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return services.NormalizePage(page, limit)
}

func authedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, envelope{"success": false, "message": "Authentication required. Please login."})
	}
	return userID, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondValidation(w, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// publish is best-effort; a Redis hiccup must not fail the API call.
func (h *ChatHandler) publish(ctx context.Context, room string, event realtime.Event) {
	if err := h.events.Publish(ctx, room, event); err != nil {
		log.Printf("⚠️ failed to publish %s event: %v", event.Type, err)
	}
}

// SendRequest creates or reopens a chat request and notifies the receiver.
func (h *ChatHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	var req SendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		respondValidation(w, "Invalid receiver_id")
		return
	}

	created, err := h.chat.SendRequest(r.Context(), userID, receiverID, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}

	h.publish(r.Context(), realtime.UserRoom(receiverID), realtime.Event{
		Type: realtime.EventRequestReceived,
		Data: created,
	})
	respondSuccess(w, http.StatusCreated, "Chat request sent", envelope{"request": created})
}

// AcceptRequest accepts a pending request and opens the conversation.
func (h *ChatHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "requestID")
	if !ok {
		return
	}

	req, conv, err := h.chat.AcceptRequest(r.Context(), requestID, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	h.publish(r.Context(), realtime.UserRoom(req.SenderID), realtime.Event{
		Type: realtime.EventRequestAccepted,
		Data: envelope{"request": req, "conversation": conv},
	})
	respondSuccess(w, http.StatusOK, "Chat request accepted", envelope{
		"request":      req,
		"conversation": conv,
	})
}

// RejectRequest rejects a pending request.
func (h *ChatHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "requestID")
	if !ok {
		return
	}

	req, err := h.chat.RejectRequest(r.Context(), requestID, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	h.publish(r.Context(), realtime.UserRoom(req.SenderID), realtime.Event{
		Type: realtime.EventRequestRejected,
		Data: req,
	})
	respondSuccess(w, http.StatusOK, "Chat request rejected", envelope{"request": req})
}

// CancelRequest withdraws the caller's own pending request.
func (h *ChatHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "requestID")
	if !ok {
		return
	}

	req, err := h.chat.CancelRequest(r.Context(), requestID, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	h.publish(r.Context(), realtime.UserRoom(req.ReceiverID), realtime.Event{
		Type: realtime.EventRequestCancelled,
		Data: envelope{"request_id": req.ID},
	})
	respondSuccess(w, http.StatusOK, "Chat request cancelled", nil)
}

func (h *ChatHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.chat.PendingRequests)
}

func (h *ChatHandler) SentRequests(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.chat.SentRequests)
}

func (h *ChatHandler) AllRequests(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.chat.AllRequests)
}

func (h *ChatHandler) listRequests(w http.ResponseWriter, r *http.Request,
	list func(context.Context, uuid.UUID, int, int) ([]models.ChatRequest, int, error)) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	reqs, total, err := list(r.Context(), userID, page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", envelope{
		"requests":   reqs,
		"pagination": pagination(page, limit, total),
	})
}

// ChatAllowed reports whether the caller may message the given user.
func (h *ChatHandler) ChatAllowed(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	otherID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	allowed, err := h.chat.IsChatAllowed(r.Context(), userID, otherID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", envelope{"allowed": allowed})
}

// Conversations lists the caller's conversations by recency.
func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	convs, total, err := h.chat.Conversations(r.Context(), userID, page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", envelope{
		"conversations": convs,
		"pagination":    pagination(page, limit, total),
	})
}

// OpenConversation resolves the conversation with another user, creating it if
// the chat gate allows.
func (h *ChatHandler) OpenConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	var req ConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	otherID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondValidation(w, "Invalid user_id")
		return
	}

	conv, err := h.chat.GetOrCreateConversation(r.Context(), userID, otherID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", envelope{"conversation": conv})
}

// SendMessage persists a message and fans it out to the conversation room and
// the receiver's personal room.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		respondValidation(w, "Invalid receiver_id")
		return
	}

	msg, err := h.chat.SendMessage(r.Context(), userID, receiverID, req.Content, req.AttachmentURL)
	if err != nil {
		respondError(w, err)
		return
	}

	h.publish(r.Context(), realtime.ConversationRoom(msg.ConversationID), realtime.Event{
		Type: realtime.EventNewMessage,
		Data: msg,
	})
	h.publish(r.Context(), realtime.UserRoom(receiverID), realtime.Event{
		Type: realtime.EventMessageNotification,
		Data: msg,
	})
	respondSuccess(w, http.StatusCreated, "", envelope{"data": msg})
}

// Messages pages through a conversation oldest-first.
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	conversationID, ok := pathUUID(w, r, "conversationID")
	if !ok {
		return
	}
	page, limit := pageParams(r)

	msgs, total, err := h.chat.Messages(r.Context(), userID, conversationID, page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", envelope{
		"messages":   msgs,
		"pagination": pagination(page, limit, total),
	})
}

// SearchMessages searches within one conversation.
func (h *ChatHandler) SearchMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	conversationID, ok := pathUUID(w, r, "conversationID")
	if !ok {
		return
	}
	page, limit := pageParams(r)

	msgs, total, err := h.chat.SearchMessages(r.Context(), userID, conversationID, r.URL.Query().Get("q"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", envelope{
		"messages":   msgs,
		"pagination": pagination(page, limit, total),
	})
}

// MarkAsRead flips unread messages addressed to the caller and notifies the
// conversation.
func (h *ChatHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	conversationID, ok := pathUUID(w, r, "conversationID")
	if !ok {
		return
	}

	n, err := h.chat.MarkAsRead(r.Context(), userID, conversationID)
	if err != nil {
		respondError(w, err)
		return
	}

	if n > 0 {
		h.publish(r.Context(), realtime.ConversationRoom(conversationID), realtime.Event{
			Type: realtime.EventMessagesRead,
			Data: envelope{"conversation_id": conversationID, "reader_id": userID, "count": n},
		})
	}
	respondSuccess(w, http.StatusOK, "", envelope{"marked_read": n})
}

// UnreadCount returns the caller's total unread messages.
func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	n, err := h.chat.UnreadCount(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", envelope{"unread_count": n})
}

// UnreadByConversation returns per-conversation unread aggregates.
func (h *ChatHandler) UnreadByConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	out, err := h.chat.UnreadByConversation(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", envelope{"conversations": out})
}

// DeleteMessage soft-deletes a message and notifies the conversation.
func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	messageID, ok := pathUUID(w, r, "messageID")
	if !ok {
		return
	}

	msg, err := h.chat.DeleteMessage(r.Context(), userID, messageID)
	if err != nil {
		respondError(w, err)
		return
	}

	h.publish(r.Context(), realtime.ConversationRoom(msg.ConversationID), realtime.Event{
		Type: realtime.EventMessageDeleted,
		Data: envelope{"message_id": msg.ID, "conversation_id": msg.ConversationID},
	})
	respondSuccess(w, http.StatusOK, "Message deleted", nil)
}
