package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seekershq/seekers-backend/internal/models"
	"github.com/seekershq/seekers-backend/pkg/apperr"
)

type fakeChatRepo struct {
	requests map[uuid.UUID]*models.ChatRequest
	convs    map[uuid.UUID]*models.Conversation
	messages map[uuid.UUID]*models.Message
	seq      time.Time
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		requests: make(map[uuid.UUID]*models.ChatRequest),
		convs:    make(map[uuid.UUID]*models.Conversation),
		messages: make(map[uuid.UUID]*models.Message),
		seq:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeChatRepo) tick() time.Time {
	f.seq = f.seq.Add(time.Second)
	return f.seq
}

func (f *fakeChatRepo) RequestByID(_ context.Context, id uuid.UUID) (*models.ChatRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeChatRepo) RequestByPair(_ context.Context, a, b uuid.UUID) (*models.ChatRequest, error) {
	for _, r := range f.requests {
		if (r.SenderID == a && r.ReceiverID == b) || (r.SenderID == b && r.ReceiverID == a) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeChatRepo) AcceptedRequestExists(_ context.Context, a, b uuid.UUID) (bool, error) {
	for _, r := range f.requests {
		if r.Status != models.RequestAccepted {
			continue
		}
		if (r.SenderID == a && r.ReceiverID == b) || (r.SenderID == b && r.ReceiverID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChatRepo) CreateRequest(_ context.Context, r *models.ChatRequest) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = f.tick()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	f.requests[r.ID] = &cp
	return nil
}

func (f *fakeChatRepo) UpdateRequest(_ context.Context, r *models.ChatRequest) error {
	r.UpdatedAt = f.tick()
	cp := *r
	f.requests[r.ID] = &cp
	return nil
}

func (f *fakeChatRepo) DeleteRequest(_ context.Context, id uuid.UUID) error {
	delete(f.requests, id)
	return nil
}

func (f *fakeChatRepo) listRequests(match func(*models.ChatRequest) bool, page, limit int) ([]models.ChatRequest, int, error) {
	var out []models.ChatRequest
	for _, r := range f.requests {
		if match(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (f *fakeChatRepo) PendingRequests(_ context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error) {
	return f.listRequests(func(r *models.ChatRequest) bool {
		return r.ReceiverID == userID && r.Status == models.RequestPending
	}, page, limit)
}

func (f *fakeChatRepo) SentRequests(_ context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error) {
	return f.listRequests(func(r *models.ChatRequest) bool {
		return r.SenderID == userID
	}, page, limit)
}

func (f *fakeChatRepo) AllRequests(_ context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error) {
	return f.listRequests(func(r *models.ChatRequest) bool {
		return r.SenderID == userID || r.ReceiverID == userID
	}, page, limit)
}

func (f *fakeChatRepo) GetOrCreateConversation(_ context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	p1, p2 := models.CanonicalPair(a, b)
	for _, c := range f.convs {
		if c.Participant1 == p1 && c.Participant2 == p2 {
			cp := *c
			return &cp, nil
		}
	}
	c := &models.Conversation{
		ID:           uuid.New(),
		Participant1: p1,
		Participant2: p2,
		CreatedAt:    f.tick(),
	}
	f.convs[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeChatRepo) ConversationByID(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	c, ok := f.convs[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChatRepo) UserConversations(_ context.Context, userID uuid.UUID, page, limit int) ([]models.Conversation, int, error) {
	var out []models.Conversation
	for _, c := range f.convs {
		if c.Participant1 == userID || c.Participant2 == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].LastMessageAt, out[j].LastMessageAt
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		return ti.After(*tj)
	})
	return out, len(out), nil
}

func (f *fakeChatRepo) SaveMessage(_ context.Context, m *models.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = f.tick()
	cp := *m
	f.messages[m.ID] = &cp

	conv := f.convs[m.ConversationID]
	content := m.Content
	at := m.CreatedAt
	conv.LastMessage = &content
	conv.LastMessageAt = &at
	return nil
}

func (f *fakeChatRepo) MessageByID(_ context.Context, id uuid.UUID) (*models.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeChatRepo) listMessages(match func(*models.Message) bool, newestFirst bool, page, limit int) ([]models.Message, int, error) {
	var out []models.Message
	for _, m := range f.messages {
		if match(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	total := len(out)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (f *fakeChatRepo) ConversationMessages(_ context.Context, conversationID uuid.UUID, page, limit int) ([]models.Message, int, error) {
	return f.listMessages(func(m *models.Message) bool {
		return m.ConversationID == conversationID && m.DeletedAt == nil
	}, false, page, limit)
}

func (f *fakeChatRepo) SearchMessages(_ context.Context, conversationID uuid.UUID, term string, page, limit int) ([]models.Message, int, error) {
	return f.listMessages(func(m *models.Message) bool {
		return m.ConversationID == conversationID && m.DeletedAt == nil && containsFold(m.Content, term)
	}, true, page, limit)
}

func (f *fakeChatRepo) MarkAsRead(_ context.Context, conversationID, userID uuid.UUID) (int64, error) {
	var n int64
	now := f.tick()
	for _, m := range f.messages {
		if m.ConversationID == conversationID && m.ReceiverID == userID && !m.IsRead {
			m.IsRead = true
			at := now
			m.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeChatRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, m := range f.messages {
		if m.ReceiverID == userID && !m.IsRead && m.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeChatRepo) UnreadByConversation(_ context.Context, userID uuid.UUID) ([]models.UnreadConversation, error) {
	counts := make(map[uuid.UUID]int)
	for _, m := range f.messages {
		if m.ReceiverID == userID && !m.IsRead && m.DeletedAt == nil {
			counts[m.ConversationID]++
		}
	}
	var out []models.UnreadConversation
	for id, n := range counts {
		out = append(out, models.UnreadConversation{ConversationID: id, UnreadCount: n})
	}
	return out, nil
}

func (f *fakeChatRepo) SoftDeleteMessage(_ context.Context, id uuid.UUID) error {
	if m, ok := f.messages[id]; ok && m.DeletedAt == nil {
		at := f.tick()
		m.DeletedAt = &at
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	h := []rune(haystack)
	n := []rune(needle)
	lower := func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + 'a' - 'A'
		}
		return r
	}
	for i := 0; i+len(n) <= len(h); i++ {
		ok := true
		for j := range n {
			if lower(h[i+j]) != lower(n[j]) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

type chatFixture struct {
	svc   *ChatService
	repo  *fakeChatRepo
	users *fakeUserStore

	alice uuid.UUID
	bob   uuid.UUID
	carol uuid.UUID
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	fx := &chatFixture{
		repo:  newFakeChatRepo(),
		users: newFakeUserStore(),
	}
	fx.svc = NewChatService(fx.repo, fx.users)

	for _, name := range []string{"alice", "bob", "carol"} {
		u := &models.User{
			ID:       uuid.New(),
			Email:    name + "@example.com",
			Name:     name,
			Username: name,
		}
		fx.users.users[u.Email] = u
		switch name {
		case "alice":
			fx.alice = u.ID
		case "bob":
			fx.bob = u.ID
		case "carol":
			fx.carol = u.ID
		}
	}
	return fx
}

// enable opens an accepted request between a and b.
func (fx *chatFixture) enable(t *testing.T, a, b uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	req, err := fx.svc.SendRequest(ctx, a, b, nil)
	require.NoError(t, err)
	_, _, err = fx.svc.AcceptRequest(ctx, req.ID, b)
	require.NoError(t, err)
}

func TestSendRequestToSelf(t *testing.T) {
	fx := newChatFixture(t)

	_, err := fx.svc.SendRequest(context.Background(), fx.alice, fx.alice, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, MsgChatSelfRequest, err.Error())
}

func TestSendRequestUnknownReceiver(t *testing.T) {
	fx := newChatFixture(t)

	_, err := fx.svc.SendRequest(context.Background(), fx.alice, uuid.New(), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, MsgReceiverNotFound, err.Error())
}

func TestSendRequestCreatesPending(t *testing.T) {
	fx := newChatFixture(t)
	note := "hey"

	req, err := fx.svc.SendRequest(context.Background(), fx.alice, fx.bob, &note)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, fx.alice, req.SenderID)
	assert.Equal(t, fx.bob, req.ReceiverID)
	require.NotNil(t, req.Message)
	assert.Equal(t, "hey", *req.Message)
}

func TestSendRequestDuplicateEitherDirection(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	_, err := fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.NoError(t, err)

	// Same direction.
	_, err = fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, MsgChatRequestPending, err.Error())

	// Reverse direction hits the same pair row.
	_, err = fx.svc.SendRequest(ctx, fx.bob, fx.alice, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSendRequestAfterAcceptConflicts(t *testing.T) {
	fx := newChatFixture(t)
	fx.enable(t, fx.alice, fx.bob)

	_, err := fx.svc.SendRequest(context.Background(), fx.bob, fx.alice, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, MsgChatAlreadyEnabled, err.Error())
}

func TestSendRequestReopensRejectedRow(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	first, err := fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.NoError(t, err)
	_, err = fx.svc.RejectRequest(ctx, first.ID, fx.bob)
	require.NoError(t, err)

	// Bob now initiates; the rejected row is reused with the direction flipped.
	reopened, err := fx.svc.SendRequest(ctx, fx.bob, fx.alice, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, reopened.ID)
	assert.Equal(t, models.RequestPending, reopened.Status)
	assert.Equal(t, fx.bob, reopened.SenderID)
	assert.Equal(t, fx.alice, reopened.ReceiverID)
	assert.Len(t, fx.repo.requests, 1)
}

func TestAcceptRequestReceiverOnly(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	req, err := fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.NoError(t, err)

	_, _, err = fx.svc.AcceptRequest(ctx, req.ID, fx.alice)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, MsgOnlyReceiverAccepts, err.Error())

	accepted, conv, err := fx.svc.AcceptRequest(ctx, req.ID, fx.bob)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, accepted.Status)
	require.NotNil(t, conv)

	p1, p2 := models.CanonicalPair(fx.alice, fx.bob)
	assert.Equal(t, p1, conv.Participant1)
	assert.Equal(t, p2, conv.Participant2)
}

func TestAcceptRequestNotPending(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	req, err := fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.NoError(t, err)
	_, _, err = fx.svc.AcceptRequest(ctx, req.ID, fx.bob)
	require.NoError(t, err)

	// Accepting twice finds no pending request.
	_, _, err = fx.svc.AcceptRequest(ctx, req.ID, fx.bob)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, MsgChatRequestNotFound, err.Error())
}

func TestRejectRequestReceiverOnly(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	req, err := fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.NoError(t, err)

	_, err = fx.svc.RejectRequest(ctx, req.ID, fx.alice)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, MsgOnlyReceiverRejects, err.Error())

	rejected, err := fx.svc.RejectRequest(ctx, req.ID, fx.bob)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)
}

func TestCancelRequestSenderOnly(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	req, err := fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.NoError(t, err)

	_, err = fx.svc.CancelRequest(ctx, req.ID, fx.bob)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, MsgOnlySenderCancels, err.Error())

	cancelled, err := fx.svc.CancelRequest(ctx, req.ID, fx.alice)
	require.NoError(t, err)
	assert.Equal(t, fx.bob, cancelled.ReceiverID)
	assert.Empty(t, fx.repo.requests)

	// A fresh request after cancel starts a brand-new row.
	again, err := fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, again.ID)
}

func TestSendMessageRequiresAcceptedRequest(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	_, err := fx.svc.SendMessage(ctx, fx.alice, fx.bob, "hello", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, MsgChatNotAllowed, err.Error())

	// A pending request is not enough.
	_, err = fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.NoError(t, err)
	_, err = fx.svc.SendMessage(ctx, fx.alice, fx.bob, "hello", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestSendMessageFlowsAfterAccept(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()
	fx.enable(t, fx.alice, fx.bob)

	// Messaging works in both directions once the request is accepted.
	m1, err := fx.svc.SendMessage(ctx, fx.alice, fx.bob, "hello", nil)
	require.NoError(t, err)
	m2, err := fx.svc.SendMessage(ctx, fx.bob, fx.alice, "hi back", nil)
	require.NoError(t, err)
	assert.Equal(t, m1.ConversationID, m2.ConversationID)

	conv := fx.repo.convs[m1.ConversationID]
	require.NotNil(t, conv.LastMessage)
	assert.Equal(t, "hi back", *conv.LastMessage)

	msgs, total, err := fx.svc.Messages(ctx, fx.alice, m1.ConversationID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "hi back", msgs[1].Content)
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	fx := newChatFixture(t)
	fx.enable(t, fx.alice, fx.bob)

	_, err := fx.svc.SendMessage(context.Background(), fx.alice, fx.bob, "", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMessagesParticipantOnly(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()
	fx.enable(t, fx.alice, fx.bob)

	m, err := fx.svc.SendMessage(ctx, fx.alice, fx.bob, "secret", nil)
	require.NoError(t, err)

	_, _, err = fx.svc.Messages(ctx, fx.carol, m.ConversationID, 1, 20)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, MsgNotAParticipant, err.Error())

	_, _, err = fx.svc.Messages(ctx, fx.carol, uuid.New(), 1, 20)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMarkAsReadCountsAndIsIdempotent(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()
	fx.enable(t, fx.alice, fx.bob)

	m, err := fx.svc.SendMessage(ctx, fx.alice, fx.bob, "one", nil)
	require.NoError(t, err)
	_, err = fx.svc.SendMessage(ctx, fx.alice, fx.bob, "two", nil)
	require.NoError(t, err)

	unread, err := fx.svc.UnreadCount(ctx, fx.bob)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	n, err := fx.svc.MarkAsRead(ctx, fx.bob, m.ConversationID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = fx.svc.MarkAsRead(ctx, fx.bob, m.ConversationID)
	require.NoError(t, err)
	assert.Zero(t, n)

	unread, err = fx.svc.UnreadCount(ctx, fx.bob)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestSearchMessages(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()
	fx.enable(t, fx.alice, fx.bob)

	m, err := fx.svc.SendMessage(ctx, fx.alice, fx.bob, "Dinner on Friday?", nil)
	require.NoError(t, err)
	_, err = fx.svc.SendMessage(ctx, fx.bob, fx.alice, "sounds good", nil)
	require.NoError(t, err)

	msgs, total, err := fx.svc.SearchMessages(ctx, fx.alice, m.ConversationID, "friday", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Dinner on Friday?", msgs[0].Content)

	_, _, err = fx.svc.SearchMessages(ctx, fx.alice, m.ConversationID, "", 1, 20)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteMessageParticipantOnly(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()
	fx.enable(t, fx.alice, fx.bob)

	m, err := fx.svc.SendMessage(ctx, fx.alice, fx.bob, "oops", nil)
	require.NoError(t, err)

	_, err = fx.svc.DeleteMessage(ctx, fx.carol, m.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	deleted, err := fx.svc.DeleteMessage(ctx, fx.alice, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, deleted.ID)

	// Deleted messages disappear from listings and cannot be deleted again.
	msgs, total, err := fx.svc.Messages(ctx, fx.alice, m.ConversationID, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, msgs)

	_, err = fx.svc.DeleteMessage(ctx, fx.alice, m.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetOrCreateConversationGated(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	_, err := fx.svc.GetOrCreateConversation(ctx, fx.alice, fx.bob)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	fx.enable(t, fx.alice, fx.bob)

	c1, err := fx.svc.GetOrCreateConversation(ctx, fx.alice, fx.bob)
	require.NoError(t, err)
	c2, err := fx.svc.GetOrCreateConversation(ctx, fx.bob, fx.alice)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)
}

func TestRequestListings(t *testing.T) {
	fx := newChatFixture(t)
	ctx := context.Background()

	_, err := fx.svc.SendRequest(ctx, fx.alice, fx.bob, nil)
	require.NoError(t, err)
	_, err = fx.svc.SendRequest(ctx, fx.carol, fx.bob, nil)
	require.NoError(t, err)

	pending, total, err := fx.svc.PendingRequests(ctx, fx.bob, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, pending, 2)

	sent, total, err := fx.svc.SentRequests(ctx, fx.alice, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, sent, 1)

	all, total, err := fx.svc.AllRequests(ctx, fx.bob, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)
}
