package job

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/alerts"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/db"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/directory"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/httpx"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/middleware"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/settlement"
)

const jobColumns = `id, poster_id, title, description, budget, deadline_date,
    skills_required, status, selected_bid_id, completed_at, created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.PosterID, &j.Title, &j.Description, &j.Budget, &j.DeadlineDate,
		&j.SkillsRequired, &j.Status, &j.SelectedBidID, &j.CompletedAt,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// =========================
// CreateJob - Poster publishes a listing
// =========================
func CreateJob(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if caller.Role != directory.RoleJobPoster {
		return httpx.Fail(c, fmt.Errorf("%w: only job posters can create jobs", httpx.ErrValidation))
	}

	var req CreateParams
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := req.Validate(); err != nil {
		return httpx.Fail(c, err)
	}

	now := time.Now()
	j := Job{
		ID:             uuid.New().String(),
		PosterID:       caller.ID,
		Title:          req.Title,
		Description:    req.Description,
		Budget:         req.Budget,
		DeadlineDate:   now.AddDate(0, 0, req.DeadlineDays),
		SkillsRequired: req.SkillsRequired,
		Status:         StatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if j.SkillsRequired == nil {
		j.SkillsRequired = []string{}
	}

	_, err := db.Conn.Exec(context.Background(),
		`INSERT INTO jobs (id, poster_id, title, description, budget, deadline_date, skills_required, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, 'open', $8, $8)`,
		j.ID, j.PosterID, j.Title, j.Description, j.Budget, j.DeadlineDate, j.SkillsRequired, now,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create job"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"job": j})
}

// =========================
// GetJob - Fetch one job by id
// =========================
func GetJob(c echo.Context) error {
	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id in URL"})
	}

	j, err := scanJob(db.Conn.QueryRow(context.Background(),
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}

	return c.JSON(http.StatusOK, echo.Map{"job": j})
}

// =========================
// ListJobs - Discovery over open jobs with AND-combined filters
// =========================
func ListJobs(c echo.Context) error {
	f, err := FiltersFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	status := string(StatusOpen)
	if s := c.QueryParam("status"); s != "" {
		st, err := ParseStatus(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		status = string(st)
	}

	clause, filterArgs := f.WhereClause(2)
	args := append([]interface{}{status}, filterArgs...)

	rows, err := db.Conn.Query(context.Background(),
		`SELECT `+jobColumns+` FROM jobs WHERE status = $1`+clause+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch jobs"})
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		jobs = append(jobs, *j)
	}

	return c.JSON(http.StatusOK, echo.Map{"jobs": jobs})
}

// =========================
// ListOpenToApply - Open jobs a freelancer can still bid on
// =========================
// Excludes jobs the caller has already bid on; supports the same filters as
// ListJobs.
func ListOpenToApply(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	f, err := FiltersFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	clause, filterArgs := f.WhereClause(2)
	args := append([]interface{}{caller.ID}, filterArgs...)

	rows, err := db.Conn.Query(context.Background(),
		`SELECT `+jobColumns+` FROM jobs
         WHERE status = 'open'
           AND poster_id <> $1
           AND NOT EXISTS (SELECT 1 FROM bids b WHERE b.job_id = jobs.id AND b.freelancer_id = $1)`+
			clause+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch jobs"})
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		jobs = append(jobs, *j)
	}

	return c.JSON(http.StatusOK, echo.Map{"jobs": jobs})
}

// =========================
// ListMyPostedJobs - Poster's own listings
// =========================
func ListMyPostedJobs(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT `+jobColumns+` FROM jobs WHERE poster_id = $1 ORDER BY created_at DESC`, caller.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch jobs"})
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		jobs = append(jobs, *j)
	}

	return c.JSON(http.StatusOK, echo.Map{"jobs": jobs})
}

// =========================
// UpdateJob - Poster patches an open listing
// =========================
func UpdateJob(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id in URL"})
	}

	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := patch.Validate(); err != nil {
		return httpx.Fail(c, err)
	}

	j, err := scanJob(db.Conn.QueryRow(context.Background(),
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: job", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}
	if j.PosterID != caller.ID {
		return httpx.Fail(c, fmt.Errorf("%w: not your job", httpx.ErrNotAuthorized))
	}
	if j.Status != StatusOpen {
		return httpx.Fail(c, fmt.Errorf("%w: only open jobs can be updated", httpx.ErrInvalidState))
	}

	patch.Apply(j, time.Now())

	// Re-check status in the WHERE so a concurrent accept cannot be overwritten.
	res, err := db.Conn.Exec(context.Background(),
		`UPDATE jobs SET title = $1, description = $2, budget = $3, deadline_date = $4,
            skills_required = $5, updated_at = $6
         WHERE id = $7 AND status = 'open'`,
		j.Title, j.Description, j.Budget, j.DeadlineDate, j.SkillsRequired, j.UpdatedAt, jobID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update job"})
	}
	if res.RowsAffected() == 0 {
		return httpx.Fail(c, fmt.Errorf("%w: only open jobs can be updated", httpx.ErrInvalidState))
	}

	return c.JSON(http.StatusOK, echo.Map{"job": j})
}

// =========================
// CancelJob - Poster closes an open listing
// =========================
func CancelJob(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id in URL"})
	}

	var posterID string
	var status Status
	err := db.Conn.QueryRow(context.Background(),
		`SELECT poster_id, status FROM jobs WHERE id = $1`, jobID).Scan(&posterID, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: job", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}
	if posterID != caller.ID {
		return httpx.Fail(c, fmt.Errorf("%w: not your job", httpx.ErrNotAuthorized))
	}
	if !IsTransitionAllowed(status, StatusCanceled) {
		return httpx.Fail(c, fmt.Errorf("%w: only open jobs can be canceled", httpx.ErrInvalidState))
	}

	res, err := db.Conn.Exec(context.Background(),
		`UPDATE jobs SET status = 'canceled', updated_at = NOW() WHERE id = $1 AND status = 'open'`, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel job"})
	}
	if res.RowsAffected() == 0 {
		return httpx.Fail(c, fmt.Errorf("%w: only open jobs can be canceled", httpx.ErrInvalidState))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Job canceled"})
}

// =========================
// CompleteJob - Poster completes an in-progress job (triggers settlement)
// =========================
func CompleteJob(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id in URL"})
	}

	ctx := context.Background()

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	var (
		posterID      string
		status        Status
		selectedBidID *string
	)
	err = tx.QueryRow(ctx,
		`SELECT poster_id, status, selected_bid_id FROM jobs WHERE id = $1 FOR UPDATE`, jobID,
	).Scan(&posterID, &status, &selectedBidID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: job", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}
	if posterID != caller.ID {
		return httpx.Fail(c, fmt.Errorf("%w: not your job", httpx.ErrNotAuthorized))
	}
	if status != StatusInProgress || selectedBidID == nil {
		return httpx.Fail(c, fmt.Errorf("%w: job is not in progress", httpx.ErrInvalidState))
	}

	var (
		freelancerID string
		amount       int64
	)
	err = tx.QueryRow(ctx,
		`SELECT freelancer_id, amount FROM bids WHERE id = $1 AND status = 'accepted'`, *selectedBidID,
	).Scan(&freelancerID, &amount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch accepted bid"})
	}

	// The status guard in the WHERE is the commit point: a concurrent complete
	// loses the race here and observes zero rows.
	res, err := tx.Exec(ctx,
		`UPDATE jobs SET status = 'completed', completed_at = NOW(), updated_at = NOW()
         WHERE id = $1 AND status = 'in_progress'`, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update job status"})
	}
	if res.RowsAffected() == 0 {
		return httpx.Fail(c, fmt.Errorf("%w: job is not in progress", httpx.ErrInvalidState))
	}

	payment, err := settlement.Settle(ctx, tx, settlement.Input{
		JobID:        jobID,
		BidID:        *selectedBidID,
		Amount:       amount,
		PosterID:     posterID,
		FreelancerID: freelancerID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settlement failed"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}

	// Notify both parties of the payout (best-effort)
	if email, err := directory.Email(ctx, freelancerID); err == nil && email != "" {
		_ = alerts.EnqueueJobCompleted(jobID, payment.ID, freelancerID, email, amount, true)
	}
	if email, err := directory.Email(ctx, posterID); err == nil && email != "" {
		_ = alerts.EnqueueJobCompleted(jobID, payment.ID, posterID, email, amount, false)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Job completed", "payment": payment})
}
