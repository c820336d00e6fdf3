// Package bid owns the bidding protocol: submission with a race-safe
// uniqueness guard, the acceptance cascade that moves the job to in_progress,
// and the freelancer-facing listings.
//
// A bid's life is pending ──► accepted | rejected, both terminal.
package bid

import (
	"fmt"
	"time"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/httpx"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown bid status %q", s)
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool { return s != StatusPending }

// Bid is a freelancer's proposal against a job. At most one bid exists per
// (job, freelancer), and at most one bid per job is ever accepted.
type Bid struct {
	ID               string    `json:"id"`
	JobID            string    `json:"job_id"`
	FreelancerID     string    `json:"freelancer_id"`
	Amount           int64     `json:"amount"`
	DeliveryTimeDays int       `json:"delivery_time_days"`
	Proposal         string    `json:"proposal"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// SubmitParams carries a validated bid submission.
type SubmitParams struct {
	JobID            string `json:"job_id"`
	Amount           int64  `json:"amount"`
	DeliveryTimeDays int    `json:"deliveryTime"`
	Proposal         string `json:"proposal"`
}

func (p SubmitParams) Validate() error {
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	if p.DeliveryTimeDays <= 0 {
		return fmt.Errorf("%w: delivery time must be positive", httpx.ErrValidation)
	}
	if p.Proposal == "" {
		return fmt.Errorf("%w: proposal is required", httpx.ErrValidation)
	}
	return nil
}

// jobSnapshot is the slice of the job row returned alongside bid listings and
// the acceptance response.
type jobSnapshot struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Budget        int64      `json:"budget"`
	DeadlineDate  time.Time  `json:"deadline_date"`
	Status        string     `json:"status"`
	PosterID      string     `json:"poster_id"`
	SelectedBidID *string    `json:"selected_bid_id,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
