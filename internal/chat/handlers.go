package chat

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/alerts"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/db"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/directory"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/httpx"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/middleware"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/realtime"
)

// =========================
// ListChats - Inbox view for the current user
// =========================
func ListChats(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT c.id, c.job_id, j.title,
            CASE WHEN c.poster_id = $1 THEN c.freelancer_id ELSE c.poster_id END,
            u.name,
            (SELECT m.content FROM messages m WHERE m.chat_id = c.id
             ORDER BY m.created_at DESC, m.id DESC LIMIT 1),
            (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id
             AND m.sender_id <> $1 AND m.read = FALSE),
            c.last_activity
         FROM chats c
         JOIN jobs j ON j.id = c.job_id
         JOIN users u ON u.id = CASE WHEN c.poster_id = $1 THEN c.freelancer_id ELSE c.poster_id END
         WHERE c.poster_id = $1 OR c.freelancer_id = $1
         ORDER BY c.last_activity DESC`, caller.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch chats"})
	}
	defer rows.Close()

	chats := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ChatID, &s.JobID, &s.JobTitle, &s.OtherParticipant,
			&s.OtherName, &s.LastMessage, &s.UnreadCount, &s.LastActivity); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		chats = append(chats, s)
	}

	return c.JSON(http.StatusOK, echo.Map{"chats": chats})
}

// =========================
// GetChat - Full thread; marks the other side's messages read
// =========================
func GetChat(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	chatID := c.Param("id")
	if chatID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing chat id in URL"})
	}

	ctx := context.Background()
	ch, err := GetChatMeta(ctx, db.Conn, chatID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: chat", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch chat"})
	}
	if !ch.IsParticipant(caller.ID) {
		return httpx.Fail(c, fmt.Errorf("%w: not a participant in this chat", httpx.ErrNotAuthorized))
	}

	flipped, err := MarkAllRead(ctx, db.Conn, chatID, caller.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update read state"})
	}
	if flipped > 0 {
		realtime.Broadcast(ch.JobID, realtime.Event{
			Type: realtime.EventMessagesRead,
			Data: echo.Map{"job_id": ch.JobID, "chat_id": ch.ID, "read_by": caller.ID},
		})
	}

	msgs, err := AllMessages(ctx, db.Conn, chatID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list messages"})
	}

	return c.JSON(http.StatusOK, echo.Map{"chat": ch, "messages": msgs})
}

// =========================
// SendMessage - Participant appends to the thread
// =========================
func SendMessage(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	chatID := c.Param("id")
	if chatID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing chat id in URL"})
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil || body.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	ctx := context.Background()
	ch, err := GetChatMeta(ctx, db.Conn, chatID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: chat", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch chat"})
	}
	if !ch.IsParticipant(caller.ID) {
		return httpx.Fail(c, fmt.Errorf("%w: not a participant in this chat", httpx.ErrNotAuthorized))
	}

	msg, err := AppendMessage(ctx, db.Conn, chatID, caller.ID, body.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send message"})
	}

	// Persisted; everything below is best-effort.
	realtime.Broadcast(ch.JobID, realtime.Event{Type: realtime.EventMessageNew, Data: msg})

	recipientID := ch.OtherParticipant(caller.ID)
	ref := msg.ID
	meta := "{}"
	_ = alerts.CreateNotification(recipientID, "message:new", "New message on your job chat", body.Content, &ref, &meta)
	if email, err := directory.Email(ctx, recipientID); err == nil && email != "" {
		_ = alerts.EnqueueMessageNew(ch.JobID, caller.ID, recipientID, email, body.Content)
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": msg})
}

// =========================
// MarkRead - Participant marks the whole thread read
// =========================
func MarkRead(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	chatID := c.Param("id")
	if chatID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing chat id in URL"})
	}

	ctx := context.Background()
	ch, err := GetChatMeta(ctx, db.Conn, chatID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: chat", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch chat"})
	}
	if !ch.IsParticipant(caller.ID) {
		return httpx.Fail(c, fmt.Errorf("%w: not a participant in this chat", httpx.ErrNotAuthorized))
	}

	flipped, err := MarkAllRead(ctx, db.Conn, chatID, caller.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update read state"})
	}
	if flipped > 0 {
		realtime.Broadcast(ch.JobID, realtime.Event{
			Type: realtime.EventMessagesRead,
			Data: echo.Map{"job_id": ch.JobID, "chat_id": ch.ID, "read_by": caller.ID},
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"marked_read": flipped})
}
