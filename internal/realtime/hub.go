// Package realtime is the fan-out layer for per-job chat channels. It knows
// nothing about persistence: callers persist first, then broadcast here, so a
// delivery failure can never corrupt stored message state.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is the envelope pushed to channel members.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Event types emitted on job channels.
const (
	EventPreviousMessages = "previous_messages"
	EventMessageNew       = "message_new"
	EventMessagesRead     = "messages_read"
	EventPresenceJoin     = "presence_join"
	EventPresenceLeave    = "presence_leave"
	EventError            = "error"
)

// Sink is the write side of a channel member. *websocket.Conn satisfies it.
type Sink interface {
	WriteMessage(messageType int, data []byte) error
}

type hub struct {
	jobID   string
	clients map[Sink]bool
	mu      sync.RWMutex
}

var (
	hubsMu sync.RWMutex
	hubs   = make(map[string]*hub)
)

func getHub(jobID string) *hub {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	if h, ok := hubs[jobID]; ok {
		return h
	}
	h := &hub{jobID: jobID, clients: make(map[Sink]bool)}
	hubs[jobID] = h
	return h
}

func (h *hub) broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		// Best-effort: a dead member is cleaned up by its own read loop.
		_ = c.WriteMessage(websocket.TextMessage, payload)
	}
}

func (h *hub) register(c Sink) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *hub) unregister(c Sink) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Join adds a member to the job's channel.
func Join(jobID string, c Sink) {
	getHub(jobID).register(c)
}

// Leave removes a member from the job's channel.
func Leave(jobID string, c Sink) {
	getHub(jobID).unregister(c)
}

// MemberCount reports the local membership of a job channel.
func MemberCount(jobID string) int {
	h := getHub(jobID)
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast pushes evt to every local member of the job's channel and, when
// the Redis bridge is configured, to members on other instances.
func Broadcast(jobID string, evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	getHub(jobID).broadcast(payload)
	publishRemote(jobID, payload)
}

// SendTo writes evt to a single member, bypassing the channel. Used for the
// join-time backlog and error replies.
func SendTo(c Sink, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, payload)
}
