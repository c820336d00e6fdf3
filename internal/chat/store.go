package chat

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx so store operations
// can run standalone or inside a caller's transaction (bid acceptance).
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EnsureChat is the single creation path for chats: lookup-or-create keyed by
// (job_id, freelancer_id). Both bid submission and bid acceptance go through
// here, so a job/freelancer pair can never end up with two threads.
func EnsureChat(ctx context.Context, q Querier, jobID, posterID, freelancerID string) (string, error) {
	var chatID string
	// The no-op DO UPDATE makes the insert always return the row id, whether it
	// was just created or already existed.
	err := q.QueryRow(ctx,
		`INSERT INTO chats (id, job_id, poster_id, freelancer_id)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (job_id, freelancer_id) DO UPDATE SET job_id = EXCLUDED.job_id
         RETURNING id`,
		uuid.New().String(), jobID, posterID, freelancerID,
	).Scan(&chatID)
	return chatID, err
}

// GetChatMeta loads a chat without its messages.
func GetChatMeta(ctx context.Context, q Querier, chatID string) (*Chat, error) {
	var ch Chat
	err := q.QueryRow(ctx,
		`SELECT id, job_id, poster_id, freelancer_id, last_activity, created_at
         FROM chats WHERE id = $1`, chatID,
	).Scan(&ch.ID, &ch.JobID, &ch.PosterID, &ch.FreelancerID, &ch.LastActivity, &ch.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// AppendMessage inserts a message and bumps the chat's last_activity. It does
// not check authorization; callers resolve the participant set first.
func AppendMessage(ctx context.Context, q Querier, chatID, senderID, content string) (*Message, error) {
	m := Message{
		ID:       uuid.New().String(),
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	}
	err := q.QueryRow(ctx,
		`INSERT INTO messages (id, chat_id, sender_id, content)
         VALUES ($1, $2, $3, $4) RETURNING created_at`,
		m.ID, m.ChatID, m.SenderID, m.Content,
	).Scan(&m.CreatedAt)
	if err != nil {
		return nil, err
	}
	_, err = q.Exec(ctx,
		`UPDATE chats SET last_activity = $1 WHERE id = $2`, m.CreatedAt, chatID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkAllRead marks every message not sent by readerID as read. Idempotent;
// returns how many rows flipped.
func MarkAllRead(ctx context.Context, q Querier, chatID, readerID string) (int64, error) {
	res, err := q.Exec(ctx,
		`UPDATE messages SET read = TRUE
         WHERE chat_id = $1 AND sender_id <> $2 AND read = FALSE`,
		chatID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

// RecentMessages returns the last limit messages in chronological order.
func RecentMessages(ctx context.Context, q Querier, chatID string, limit int) ([]Message, error) {
	rows, err := q.Query(ctx,
		`SELECT id, chat_id, sender_id, content, read, created_at
         FROM messages WHERE chat_id = $1
         ORDER BY created_at DESC, id DESC LIMIT $2`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	// reverse into oldest-first
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// AllMessages returns the full thread oldest-first.
func AllMessages(ctx context.Context, q Querier, chatID string) ([]Message, error) {
	rows, err := q.Query(ctx,
		`SELECT id, chat_id, sender_id, content, read, created_at
         FROM messages WHERE chat_id = $1
         ORDER BY created_at ASC, id ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
