package chat

import "testing"

func TestChatParticipants(t *testing.T) {
	ch := Chat{
		ID:           "chat-1",
		JobID:        "job-1",
		PosterID:     "poster-1",
		FreelancerID: "freelancer-1",
	}

	if !ch.IsParticipant("poster-1") {
		t.Error("poster must be a participant")
	}
	if !ch.IsParticipant("freelancer-1") {
		t.Error("freelancer must be a participant")
	}
	if ch.IsParticipant("stranger") {
		t.Error("outsider must not be a participant")
	}
	if ch.IsParticipant(SenderSystem) {
		t.Error("system sender is not a participant")
	}

	if got := ch.OtherParticipant("poster-1"); got != "freelancer-1" {
		t.Errorf("OtherParticipant(poster) = %q, want freelancer-1", got)
	}
	if got := ch.OtherParticipant("freelancer-1"); got != "poster-1" {
		t.Errorf("OtherParticipant(freelancer) = %q, want poster-1", got)
	}
}
