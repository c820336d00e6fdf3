// Package chat owns conversations and their messages: one chat per
// (job, freelancer) pair, append-only insertion-ordered messages, read-state
// tracking and participant authorization. The websocket endpoint lives here
// too because every realtime event persists through this store before it is
// fanned out.
package chat

import "time"

// SenderSystem is the reserved sender id for messages seeded by the service
// itself, such as the bid-acceptance greeting.
const SenderSystem = "system"

// Chat is the message thread between a job's poster and one bidding
// freelancer.
type Chat struct {
	ID           string    `json:"id"`
	JobID        string    `json:"job_id"`
	PosterID     string    `json:"poster_id"`
	FreelancerID string    `json:"freelancer_id"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsParticipant reports whether userID may read or write this chat.
func (ch *Chat) IsParticipant(userID string) bool {
	return userID == ch.PosterID || userID == ch.FreelancerID
}

// OtherParticipant returns the counterpart of userID in this chat. Callers
// must have checked IsParticipant first.
func (ch *Chat) OtherParticipant(userID string) string {
	if userID == ch.PosterID {
		return ch.FreelancerID
	}
	return ch.PosterID
}

// Message is one entry in a chat, ordered by insertion.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the projection returned by the chat list: the thread plus what
// the inbox view needs to render a row.
type Summary struct {
	ChatID           string    `json:"chat_id"`
	JobID            string    `json:"job_id"`
	JobTitle         string    `json:"job_title"`
	OtherParticipant string    `json:"other_participant"`
	OtherName        string    `json:"other_name"`
	LastMessage      *string   `json:"last_message"`
	UnreadCount      int64     `json:"unread_count"`
	LastActivity     time.Time `json:"last_activity"`
}
