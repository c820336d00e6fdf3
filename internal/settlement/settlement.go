// Package settlement owns the payment ledger. A payment row is written exactly
// once per completed job, inside the completion transaction, together with the
// two balance credits. Nothing else mutates money_earned / money_spent.
package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/directory"
)

// Payment is an append-only ledger record. Status is fixed at completed on
// creation; pending/refunded exist for ledger imports and future disputes.
type Payment struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	BidID     string    `json:"bid_id"`
	Amount    int64     `json:"amount"`
	FromID    string    `json:"from_id"`
	ToID      string    `json:"to_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRefunded  = "refunded"
)

// Input identifies the job/bid pair being settled.
type Input struct {
	JobID        string
	BidID        string
	Amount       int64
	PosterID     string
	FreelancerID string
}

// Settle inserts the payment record and credits both running balances. It must
// run inside the caller's completion transaction; the unique index on
// payments(job_id) makes a second settlement for the same job impossible even
// if the status guard were ever bypassed.
func Settle(ctx context.Context, tx pgx.Tx, in Input) (*Payment, error) {
	p := Payment{
		ID:     uuid.New().String(),
		JobID:  in.JobID,
		BidID:  in.BidID,
		Amount: in.Amount,
		FromID: in.PosterID,
		ToID:   in.FreelancerID,
		Status: StatusCompleted,
	}

	err := tx.QueryRow(ctx,
		`INSERT INTO payments (id, job_id, bid_id, amount, from_id, to_id, status)
         VALUES ($1, $2, $3, $4, $5, $6, 'completed')
         RETURNING created_at`,
		p.ID, p.JobID, p.BidID, p.Amount, p.FromID, p.ToID,
	).Scan(&p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := directory.CreditEarned(ctx, tx, in.FreelancerID, in.Amount); err != nil {
		return nil, err
	}
	if err := directory.CreditSpent(ctx, tx, in.PosterID, in.Amount); err != nil {
		return nil, err
	}

	return &p, nil
}
