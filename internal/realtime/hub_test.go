package realtime

import (
	"encoding/json"
	"sync"
	"testing"
)

// fakeSink records every payload written to it.
type fakeSink struct {
	mu     sync.Mutex
	writes [][]byte
}

func (f *fakeSink) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.writes = append(f.writes, cp)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeSink) last(t *testing.T) Event {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		t.Fatal("no writes recorded")
	}
	var evt Event
	if err := json.Unmarshal(f.writes[len(f.writes)-1], &evt); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	return evt
}

func TestJoinLeaveMemberCount(t *testing.T) {
	const jobID = "job-count"
	a, b := &fakeSink{}, &fakeSink{}

	if n := MemberCount(jobID); n != 0 {
		t.Fatalf("MemberCount = %d before any join, want 0", n)
	}

	Join(jobID, a)
	Join(jobID, b)
	if n := MemberCount(jobID); n != 2 {
		t.Errorf("MemberCount = %d, want 2", n)
	}

	Leave(jobID, a)
	if n := MemberCount(jobID); n != 1 {
		t.Errorf("MemberCount = %d after leave, want 1", n)
	}

	// Leaving twice is harmless.
	Leave(jobID, a)
	Leave(jobID, b)
	if n := MemberCount(jobID); n != 0 {
		t.Errorf("MemberCount = %d after all left, want 0", n)
	}
}

func TestBroadcastReachesAllMembers(t *testing.T) {
	const jobID = "job-broadcast"
	a, b := &fakeSink{}, &fakeSink{}
	outsider := &fakeSink{}

	Join(jobID, a)
	Join(jobID, b)
	Join("job-other", outsider)
	defer func() {
		Leave(jobID, a)
		Leave(jobID, b)
		Leave("job-other", outsider)
	}()

	Broadcast(jobID, Event{Type: EventMessageNew, Data: map[string]string{"content": "hello"}})

	for _, s := range []*fakeSink{a, b} {
		if s.count() != 1 {
			t.Fatalf("member got %d writes, want 1", s.count())
		}
		evt := s.last(t)
		if evt.Type != EventMessageNew {
			t.Errorf("event type = %q, want %q", evt.Type, EventMessageNew)
		}
		data, ok := evt.Data.(map[string]interface{})
		if !ok || data["content"] != "hello" {
			t.Errorf("event data = %v, want content=hello", evt.Data)
		}
	}

	if outsider.count() != 0 {
		t.Errorf("member of another channel got %d writes, want 0", outsider.count())
	}
}

func TestSendTo(t *testing.T) {
	s := &fakeSink{}
	err := SendTo(s, Event{Type: EventPreviousMessages, Data: []string{}})
	if err != nil {
		t.Fatalf("SendTo: %v", err)
	}
	if s.count() != 1 {
		t.Fatalf("got %d writes, want 1", s.count())
	}
	if evt := s.last(t); evt.Type != EventPreviousMessages {
		t.Errorf("event type = %q, want %q", evt.Type, EventPreviousMessages)
	}
}

func TestBroadcastConcurrentWithMembership(t *testing.T) {
	const jobID = "job-race"
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := &fakeSink{}
			Join(jobID, s)
			Broadcast(jobID, Event{Type: EventPresenceJoin})
			Leave(jobID, s)
		}()
	}
	wg.Wait()
	if n := MemberCount(jobID); n != 0 {
		t.Errorf("MemberCount = %d after all goroutines left, want 0", n)
	}
}
