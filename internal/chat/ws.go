package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/db"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/middleware"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientEvent is what channel members may send upstream.
type clientEvent struct {
	Type    string `json:"type"` // "message" | "mark_read"
	Content string `json:"content,omitempty"`
}

const previousMessagesLimit = 50

// JobChatWS joins the caller to the realtime channel of a job's chat.
//
// Authorization is re-derived from the job's accepted bid, not from chat
// membership: only the poster and the accepted freelancer may join, even if a
// stale chat row exists for a rejected bidder.
func JobChatWS(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}

	ctx := context.Background()
	var posterID, freelancerID string
	err := db.Conn.QueryRow(ctx,
		`SELECT j.poster_id, b.freelancer_id
         FROM jobs j JOIN bids b ON b.id = j.selected_bid_id
         WHERE j.id = $1`, jobID,
	).Scan(&posterID, &freelancerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job has no accepted bid"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}
	if caller.ID != posterID && caller.ID != freelancerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant in this job"})
	}

	// The chat was opened at bid time; EnsureChat is idempotent either way.
	chatID, err := EnsureChat(ctx, db.Conn, jobID, posterID, freelancerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve chat"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	realtime.Join(jobID, ws)

	// Backlog goes only to the joining member.
	if msgs, err := RecentMessages(ctx, db.Conn, chatID, previousMessagesLimit); err != nil {
		_ = realtime.SendTo(ws, realtime.Event{Type: realtime.EventError, Data: echo.Map{"error": "failed to load messages"}})
	} else {
		_ = realtime.SendTo(ws, realtime.Event{Type: realtime.EventPreviousMessages, Data: msgs})
	}

	realtime.Broadcast(jobID, realtime.Event{Type: realtime.EventPresenceJoin, Data: echo.Map{"user_id": caller.ID}})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			realtime.Leave(jobID, ws)
			_ = ws.Close()
			realtime.Broadcast(jobID, realtime.Event{Type: realtime.EventPresenceLeave, Data: echo.Map{"user_id": caller.ID}})
			break
		}

		var evt clientEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			_ = realtime.SendTo(ws, realtime.Event{Type: realtime.EventError, Data: echo.Map{"error": "invalid event"}})
			continue
		}

		switch evt.Type {
		case "message":
			if evt.Content == "" {
				_ = realtime.SendTo(ws, realtime.Event{Type: realtime.EventError, Data: echo.Map{"error": "empty message"}})
				continue
			}
			// Persist first, broadcast second.
			msg, err := AppendMessage(ctx, db.Conn, chatID, caller.ID, evt.Content)
			if err != nil {
				log.Printf("[realtime] append failed for chat %s: %v", chatID, err)
				_ = realtime.SendTo(ws, realtime.Event{Type: realtime.EventError, Data: echo.Map{"error": "failed to send message"}})
				continue
			}
			realtime.Broadcast(jobID, realtime.Event{Type: realtime.EventMessageNew, Data: msg})

		case "mark_read":
			flipped, err := MarkAllRead(ctx, db.Conn, chatID, caller.ID)
			if err != nil {
				log.Printf("[realtime] mark read failed for chat %s: %v", chatID, err)
				continue
			}
			if flipped > 0 {
				realtime.Broadcast(jobID, realtime.Event{
					Type: realtime.EventMessagesRead,
					Data: echo.Map{"job_id": jobID, "chat_id": chatID, "read_by": caller.ID},
				})
			}

		default:
			_ = realtime.SendTo(ws, realtime.Event{Type: realtime.EventError, Data: echo.Map{"error": "unknown event type"}})
		}
	}
	return nil
}
