package store

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/seekershq/seekers-backend/internal/models"
)

type ChatStore struct {
	db *sql.DB
}

func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

const requestColumns = `r.id, r.created_at, r.updated_at, r.sender_id, r.receiver_id, r.status, r.message`

// RequestByID loads a request together with both participants' public profiles.
func (s *ChatStore) RequestByID(ctx context.Context, id uuid.UUID) (*models.ChatRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+`,
			su.id, su.name, su.username, COALESCE(su.profile_name, ''),
			ru.id, ru.name, ru.username, COALESCE(ru.profile_name, '')
		FROM chat_requests r
		JOIN users su ON su.id = r.sender_id
		JOIN users ru ON ru.id = r.receiver_id
		WHERE r.id = $1
	`, id)

	var r models.ChatRequest
	var msg sql.NullString
	var sender, receiver models.PublicUser
	err := row.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.SenderID, &r.ReceiverID, &r.Status, &msg,
		&sender.ID, &sender.Name, &sender.Username, &sender.ProfileName,
		&receiver.ID, &receiver.Name, &receiver.Username, &receiver.ProfileName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Message = nullStr(msg)
	r.Sender = &sender
	r.Receiver = &receiver
	return &r, nil
}

// RequestByPair finds the single request row for the unordered pair, in either
// orientation and any status.
func (s *ChatStore) RequestByPair(ctx context.Context, a, b uuid.UUID) (*models.ChatRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM chat_requests r
		WHERE (r.sender_id = $1 AND r.receiver_id = $2)
		   OR (r.sender_id = $2 AND r.receiver_id = $1)
	`, a, b)

	var r models.ChatRequest
	var msg sql.NullString
	err := row.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.SenderID, &r.ReceiverID, &r.Status, &msg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Message = nullStr(msg)
	return &r, nil
}

// AcceptedRequestExists is the chat authorization gate.
func (s *ChatStore) AcceptedRequestExists(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM chat_requests
			WHERE status = 'accepted'
			  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		)
	`, a, b).Scan(&exists)
	return exists, err
}

func (s *ChatStore) CreateRequest(ctx context.Context, r *models.ChatRequest) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_requests (id, created_at, updated_at, sender_id, receiver_id, status, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.ID, r.CreatedAt, r.UpdatedAt, r.SenderID, r.ReceiverID, r.Status, r.Message)
	return err
}

// UpdateRequest rewrites the mutable columns. Sender and receiver are included
// because reopening a rejected request may flip the direction.
func (s *ChatStore) UpdateRequest(ctx context.Context, r *models.ChatRequest) error {
	r.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE chat_requests
		SET updated_at = $2, sender_id = $3, receiver_id = $4, status = $5, message = $6
		WHERE id = $1
	`, r.ID, r.UpdatedAt, r.SenderID, r.ReceiverID, r.Status, r.Message)
	return err
}

// DeleteRequest hard-deletes a request row (sender cancel).
func (s *ChatStore) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_requests WHERE id = $1`, id)
	return err
}

func (s *ChatStore) requestList(ctx context.Context, where string, countWhere string, args []interface{}, page, limit int) ([]models.ChatRequest, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_requests r `+countWhere, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := `
		SELECT ` + requestColumns + `,
			su.id, su.name, su.username, COALESCE(su.profile_name, ''),
			ru.id, ru.name, ru.username, COALESCE(ru.profile_name, '')
		FROM chat_requests r
		JOIN users su ON su.id = r.sender_id
		JOIN users ru ON ru.id = r.receiver_id
		` + where + `
		ORDER BY r.created_at DESC
		LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.ChatRequest
	for rows.Next() {
		var r models.ChatRequest
		var msg sql.NullString
		var sender, receiver models.PublicUser
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.SenderID, &r.ReceiverID, &r.Status, &msg,
			&sender.ID, &sender.Name, &sender.Username, &sender.ProfileName,
			&receiver.ID, &receiver.Name, &receiver.Username, &receiver.ProfileName); err != nil {
			return nil, 0, err
		}
		r.Message = nullStr(msg)
		r.Sender = &sender
		r.Receiver = &receiver
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// PendingRequests lists requests awaiting the user's decision, newest first.
func (s *ChatStore) PendingRequests(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error) {
	where := `WHERE r.receiver_id = $1 AND r.status = 'pending'`
	return s.requestList(ctx, where, where, []interface{}{userID}, page, limit)
}

// SentRequests lists requests the user initiated, newest first.
func (s *ChatStore) SentRequests(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error) {
	where := `WHERE r.sender_id = $1`
	return s.requestList(ctx, where, where, []interface{}{userID}, page, limit)
}

// AllRequests lists requests on either side of the user, newest first.
func (s *ChatStore) AllRequests(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ChatRequest, int, error) {
	where := `WHERE (r.sender_id = $1 OR r.receiver_id = $1)`
	return s.requestList(ctx, where, where, []interface{}{userID}, page, limit)
}

// GetOrCreateConversation resolves the single conversation row for the pair.
// The pair is canonicalized before insert and the unique constraint makes
// concurrent first calls converge on one row (insert-on-conflict-do-nothing,
// then re-select).
func (s *ChatStore) GetOrCreateConversation(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	p1, p2 := models.CanonicalPair(a, b)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, created_at, participant_1_id, participant_2_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_1_id, participant_2_id) DO NOTHING
	`, uuid.New(), time.Now().UTC(), p1, p2)
	if err != nil {
		return nil, err
	}

	return s.conversationByPair(ctx, p1, p2)
}

func (s *ChatStore) conversationByPair(ctx context.Context, p1, p2 uuid.UUID) (*models.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, participant_1_id, participant_2_id, last_message, last_message_at
		FROM conversations WHERE participant_1_id = $1 AND participant_2_id = $2
	`, p1, p2)
	return scanConversation(row)
}

func (s *ChatStore) ConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, participant_1_id, participant_2_id, last_message, last_message_at
		FROM conversations WHERE id = $1
	`, id)
	return scanConversation(row)
}

func scanConversation(row *sql.Row) (*models.Conversation, error) {
	var c models.Conversation
	var lastMsg sql.NullString
	var lastAt sql.NullTime
	err := row.Scan(&c.ID, &c.CreatedAt, &c.Participant1, &c.Participant2, &lastMsg, &lastAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.LastMessage = nullStr(lastMsg)
	c.LastMessageAt = nullTime(lastAt)
	return &c, nil
}

// UserConversations lists the user's conversations ordered by recency, each
// annotated with the other participant's public profile.
func (s *ChatStore) UserConversations(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Conversation, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE participant_1_id = $1 OR participant_2_id = $1`,
		userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.created_at, c.participant_1_id, c.participant_2_id, c.last_message, c.last_message_at,
			u.id, u.name, u.username, COALESCE(u.profile_name, '')
		FROM conversations c
		JOIN users u ON u.id = CASE WHEN c.participant_1_id = $1 THEN c.participant_2_id ELSE c.participant_1_id END
		WHERE c.participant_1_id = $1 OR c.participant_2_id = $1
		ORDER BY c.last_message_at DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		var lastMsg sql.NullString
		var lastAt sql.NullTime
		var other models.PublicUser
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.Participant1, &c.Participant2, &lastMsg, &lastAt,
			&other.ID, &other.Name, &other.Username, &other.ProfileName); err != nil {
			return nil, 0, err
		}
		c.LastMessage = nullStr(lastMsg)
		c.LastMessageAt = nullTime(lastAt)
		c.Other = &other
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// SaveMessage inserts the message and updates the conversation's denormalized
// last-message fields in one transaction.
func (s *ChatStore) SaveMessage(ctx context.Context, m *models.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, created_at, conversation_id, sender_id, receiver_id, content, attachment_url, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
	`, m.ID, m.CreatedAt, m.ConversationID, m.SenderID, m.ReceiverID, m.Content, m.AttachmentURL)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE conversations SET last_message = $2, last_message_at = $3 WHERE id = $1
	`, m.ConversationID, m.Content, m.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const messageColumns = `m.id, m.created_at, m.conversation_id, m.sender_id, m.receiver_id, m.content,
	m.attachment_url, m.is_read, m.read_at, m.deleted_at`

func (s *ChatStore) MessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages m WHERE m.id = $1`, id)

	var m models.Message
	var attachment sql.NullString
	var readAt, deletedAt sql.NullTime
	err := row.Scan(&m.ID, &m.CreatedAt, &m.ConversationID, &m.SenderID, &m.ReceiverID,
		&m.Content, &attachment, &m.IsRead, &readAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.AttachmentURL = nullStr(attachment)
	m.ReadAt = nullTime(readAt)
	m.DeletedAt = nullTime(deletedAt)
	return &m, nil
}

func (s *ChatStore) messageList(ctx context.Context, where, order string, args []interface{}, page, limit int) ([]models.Message, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages m `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := `
		SELECT ` + messageColumns + `,
			su.id, su.name, su.username, COALESCE(su.profile_name, ''),
			ru.id, ru.name, ru.username, COALESCE(ru.profile_name, '')
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		JOIN users ru ON ru.id = m.receiver_id
		` + where + `
		ORDER BY ` + order + `
		LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		var attachment sql.NullString
		var readAt, deletedAt sql.NullTime
		var sender, receiver models.PublicUser
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.ConversationID, &m.SenderID, &m.ReceiverID,
			&m.Content, &attachment, &m.IsRead, &readAt, &deletedAt,
			&sender.ID, &sender.Name, &sender.Username, &sender.ProfileName,
			&receiver.ID, &receiver.Name, &receiver.Username, &receiver.ProfileName); err != nil {
			return nil, 0, err
		}
		m.AttachmentURL = nullStr(attachment)
		m.ReadAt = nullTime(readAt)
		m.DeletedAt = nullTime(deletedAt)
		m.Sender = &sender
		m.Receiver = &receiver
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// ConversationMessages pages through a conversation oldest-first.
func (s *ChatStore) ConversationMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]models.Message, int, error) {
	where := `WHERE m.conversation_id = $1 AND m.deleted_at IS NULL`
	return s.messageList(ctx, where, "m.created_at ASC", []interface{}{conversationID}, page, limit)
}

// SearchMessages is a case-insensitive substring search, newest first.
func (s *ChatStore) SearchMessages(ctx context.Context, conversationID uuid.UUID, term string, page, limit int) ([]models.Message, int, error) {
	where := `WHERE m.conversation_id = $1 AND m.deleted_at IS NULL AND m.content ILIKE $2`
	return s.messageList(ctx, where, "m.created_at DESC", []interface{}{conversationID, "%" + term + "%"}, page, limit)
}

// MarkAsRead flips read-state on every unread message addressed to userID in
// the conversation and returns how many were updated.
func (s *ChatStore) MarkAsRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE, read_at = NOW()
		WHERE conversation_id = $1 AND receiver_id = $2 AND is_read = FALSE
	`, conversationID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *ChatStore) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE AND deleted_at IS NULL
	`, userID).Scan(&n)
	return n, err
}

// UnreadByConversation aggregates unread counts per conversation and resolves
// the other participant for each.
func (s *ChatStore) UnreadByConversation(ctx context.Context, userID uuid.UUID) ([]models.UnreadConversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, COUNT(m.id),
			u.id, u.name, u.username, COALESCE(u.profile_name, '')
		FROM conversations c
		JOIN messages m ON m.conversation_id = c.id
			AND m.receiver_id = $1 AND m.is_read = FALSE AND m.deleted_at IS NULL
		JOIN users u ON u.id = CASE WHEN c.participant_1_id = $1 THEN c.participant_2_id ELSE c.participant_1_id END
		WHERE c.participant_1_id = $1 OR c.participant_2_id = $1
		GROUP BY c.id, u.id, u.name, u.username, u.profile_name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UnreadConversation
	for rows.Next() {
		var uc models.UnreadConversation
		if err := rows.Scan(&uc.ConversationID, &uc.UnreadCount,
			&uc.OtherUser.ID, &uc.OtherUser.Name, &uc.OtherUser.Username, &uc.OtherUser.ProfileName); err != nil {
			return nil, err
		}
		out = append(out, uc)
	}
	return out, rows.Err()
}

// SoftDeleteMessage stamps the message instead of removing it.
func (s *ChatStore) SoftDeleteMessage(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return err
}

func itoa(n int) string { return strconv.Itoa(n) }
