// Package job owns the job ledger: the listing entity, its status state
// machine and the handlers that drive it.
//
// Valid status graph:
//
//	open ──► in_progress ──► completed
//	  │
//	  └────► canceled
//
// completed and canceled are terminal states. Jobs are never deleted.
package job

import (
	"fmt"
	"time"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/httpx"
)

// Status values mirror the status CHECK constraint on the jobs table.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusCanceled},
	StatusInProgress: {StatusCompleted},
	// completed and canceled are terminal, no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCanceled:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job is a work listing posted by a job poster. selected_bid_id is non-null
// exactly when status is in_progress or completed; completed_at exactly when
// completed.
type Job struct {
	ID             string     `json:"id"`
	PosterID       string     `json:"poster_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Budget         int64      `json:"budget"`
	DeadlineDate   time.Time  `json:"deadline_date"`
	SkillsRequired []string   `json:"skills_required"`
	Status         Status     `json:"status"`
	SelectedBidID  *string    `json:"selected_bid_id,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateParams carries a validated job-creation request.
type CreateParams struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Budget         int64    `json:"budget"`
	DeadlineDays   int      `json:"deadline"`
	SkillsRequired []string `json:"skillsRequired"`
}

// Validate checks creation input. The deadline is expressed in days from now
// and must fall in [1,10].
func (p CreateParams) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", httpx.ErrValidation)
	}
	if p.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive", httpx.ErrValidation)
	}
	if p.DeadlineDays < 1 || p.DeadlineDays > 10 {
		return fmt.Errorf("%w: deadline must be between 1 and 10 days", httpx.ErrValidation)
	}
	return nil
}

// Patch is a partial update of an open job. Only non-nil fields are applied,
// so zero values (a budget of 0 aside, which the table constraint rejects)
// remain expressible and "absent" is distinct from "falsy".
type Patch struct {
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	Budget         *int64    `json:"budget"`
	DeadlineDays   *int      `json:"deadline"`
	SkillsRequired *[]string `json:"skillsRequired"`
}

// Validate rejects out-of-range values on the fields that are present.
func (p Patch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", httpx.ErrValidation)
	}
	if p.Budget != nil && *p.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive", httpx.ErrValidation)
	}
	if p.DeadlineDays != nil && (*p.DeadlineDays < 1 || *p.DeadlineDays > 10) {
		return fmt.Errorf("%w: deadline must be between 1 and 10 days", httpx.ErrValidation)
	}
	return nil
}

// Apply copies the present fields onto j. The deadline is re-anchored at now.
func (p Patch) Apply(j *Job, now time.Time) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Budget != nil {
		j.Budget = *p.Budget
	}
	if p.DeadlineDays != nil {
		j.DeadlineDate = now.AddDate(0, 0, *p.DeadlineDays)
	}
	if p.SkillsRequired != nil {
		j.SkillsRequired = *p.SkillsRequired
	}
	j.UpdatedAt = now
}
