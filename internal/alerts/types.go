package alerts

import "time"

// Task type constants
const (
	TaskBidReceived  = "email:bid_received"
	TaskBidAccepted  = "email:bid_accepted"
	TaskBidRejected  = "email:bid_rejected"
	TaskJobCompleted = "email:job_completed"
	TaskMessageNew   = "email:message_new"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Bid received payload (sent to the job poster)
type BidReceivedPayload struct {
	JobID    string        `json:"job_id"`
	BidID    string        `json:"bid_id"`
	PosterID string        `json:"poster_id"`
	Email    string        `json:"email"`
	Amount   int64         `json:"amount"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Bid accepted payload (sent to the winning freelancer)
type BidAcceptedPayload struct {
	JobID        string        `json:"job_id"`
	BidID        string        `json:"bid_id"`
	FreelancerID string        `json:"freelancer_id"`
	Email        string        `json:"email"`
	Amount       int64         `json:"amount"`
	Envelope     EmailEnvelope `json:"envelope"`
	SentAt       time.Time     `json:"sent_at"`
}

// Bid rejected payload (sent to a passed-over freelancer)
type BidRejectedPayload struct {
	JobID        string        `json:"job_id"`
	FreelancerID string        `json:"freelancer_id"`
	Email        string        `json:"email"`
	Envelope     EmailEnvelope `json:"envelope"`
	SentAt       time.Time     `json:"sent_at"`
}

// Job completed payload (payment receipt, sent to both parties)
type JobCompletedPayload struct {
	JobID       string        `json:"job_id"`
	PaymentID   string        `json:"payment_id"`
	UserID      string        `json:"user_id"`
	Email       string        `json:"email"`
	Amount      int64         `json:"amount"`
	IsRecipient bool          `json:"is_recipient"`
	Envelope    EmailEnvelope `json:"envelope"`
	SentAt      time.Time     `json:"sent_at"`
}

// Message new payload (sent to the other chat participant)
type MessageNewPayload struct {
	JobID     string        `json:"job_id"`
	SenderID  string        `json:"sender_id"`
	Recipient string        `json:"recipient"`
	Email     string        `json:"email"`
	Body      string        `json:"body"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}
