package bid

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/alerts"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/chat"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/db"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/directory"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/httpx"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/middleware"
)

const uniqueViolation = "23505"

// =========================
// SubmitBid - Freelancer bids on an open job
// =========================
// Accepts the job id from the URL (/job/:id/apply) or the body (/bids).
func SubmitBid(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req SubmitParams
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if jobID := c.Param("id"); jobID != "" {
		req.JobID = jobID
	}
	if req.JobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}
	if err := req.Validate(); err != nil {
		return httpx.Fail(c, err)
	}

	ctx := context.Background()

	var posterID, jobStatus string
	err := db.Conn.QueryRow(ctx,
		`SELECT poster_id, status FROM jobs WHERE id = $1`, req.JobID,
	).Scan(&posterID, &jobStatus)
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: job", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}
	if posterID == caller.ID {
		return httpx.Fail(c, fmt.Errorf("%w: you cannot bid on your own job", httpx.ErrNotAuthorized))
	}
	if jobStatus != "open" {
		return httpx.Fail(c, fmt.Errorf("%w: job is not open for bids", httpx.ErrInvalidState))
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	b := Bid{
		ID:               uuid.New().String(),
		JobID:            req.JobID,
		FreelancerID:     caller.ID,
		Amount:           req.Amount,
		DeliveryTimeDays: req.DeliveryTimeDays,
		Proposal:         req.Proposal,
		Status:           StatusPending,
	}

	// The insert re-checks job status atomically: a job closed between the
	// read above and this statement yields zero rows. The unique index on
	// (job_id, freelancer_id) turns concurrent duplicate submissions into a
	// conflict instead of two pending bids.
	err = tx.QueryRow(ctx,
		`INSERT INTO bids (id, job_id, freelancer_id, amount, delivery_time_days, proposal, status)
         SELECT $1, $2, $3, $4, $5, $6, 'pending'
         WHERE EXISTS (SELECT 1 FROM jobs WHERE id = $2 AND status = 'open')
         RETURNING created_at`,
		b.ID, b.JobID, b.FreelancerID, b.Amount, b.DeliveryTimeDays, b.Proposal,
	).Scan(&b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return httpx.Fail(c, httpx.ErrDuplicateBid)
		}
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: job is not open for bids", httpx.ErrInvalidState))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create bid"})
	}

	chatID, err := chat.EnsureChat(ctx, tx, req.JobID, posterID, caller.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to open chat"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}

	// Notify the poster (best-effort)
	ref := b.ID
	meta := "{}"
	_ = alerts.CreateNotification(posterID, "bid:new", "New bid on your job", b.Proposal, &ref, &meta)
	if email, err := directory.Email(ctx, posterID); err == nil && email != "" {
		_ = alerts.EnqueueBidReceived(req.JobID, b.ID, posterID, email, b.Amount)
	}

	return c.JSON(http.StatusCreated, echo.Map{"bid": b, "chat_id": chatID})
}

// =========================
// AcceptBid - Poster accepts one bid, rejecting the rest
// =========================
func AcceptBid(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	bidID := c.Param("id")
	if bidID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing bid id in URL"})
	}

	ctx := context.Background()

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	var b Bid
	var posterID, jobStatus string
	err = tx.QueryRow(ctx,
		`SELECT b.id, b.job_id, b.freelancer_id, b.amount, b.delivery_time_days, b.proposal, b.status, b.created_at,
                j.poster_id, j.status
         FROM bids b JOIN jobs j ON j.id = b.job_id
         WHERE b.id = $1 FOR UPDATE`, bidID,
	).Scan(&b.ID, &b.JobID, &b.FreelancerID, &b.Amount, &b.DeliveryTimeDays, &b.Proposal, &b.Status, &b.CreatedAt,
		&posterID, &jobStatus)
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: bid", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch bid"})
	}
	if posterID != caller.ID {
		return httpx.Fail(c, fmt.Errorf("%w: not your job", httpx.ErrNotAuthorized))
	}
	if b.Status != StatusPending {
		return httpx.Fail(c, fmt.Errorf("%w: bid is not pending", httpx.ErrInvalidState))
	}
	if jobStatus != "open" {
		return httpx.Fail(c, fmt.Errorf("%w: job is not open", httpx.ErrInvalidState))
	}

	// Collect the soon-to-be-rejected bidders before the cascade flips them.
	rejectedRows, err := tx.Query(ctx,
		`SELECT freelancer_id FROM bids WHERE job_id = $1 AND id <> $2 AND status = 'pending'`,
		b.JobID, b.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch bids"})
	}
	var rejectedFreelancers []string
	for rejectedRows.Next() {
		var id string
		if err := rejectedRows.Scan(&id); err != nil {
			rejectedRows.Close()
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		rejectedFreelancers = append(rejectedFreelancers, id)
	}
	rejectedRows.Close()

	// Commit point: the status guard makes two racing accepts impossible;
	// the loser observes zero rows.
	res, err := tx.Exec(ctx,
		`UPDATE jobs SET status = 'in_progress', selected_bid_id = $1, updated_at = NOW()
         WHERE id = $2 AND status = 'open'`, b.ID, b.JobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update job"})
	}
	if res.RowsAffected() == 0 {
		return httpx.Fail(c, fmt.Errorf("%w: job is not open", httpx.ErrInvalidState))
	}

	res, err = tx.Exec(ctx,
		`UPDATE bids SET status = 'accepted' WHERE id = $1 AND status = 'pending'`, b.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update bid"})
	}
	if res.RowsAffected() == 0 {
		return httpx.Fail(c, fmt.Errorf("%w: bid is not pending", httpx.ErrInvalidState))
	}

	_, err = tx.Exec(ctx,
		`UPDATE bids SET status = 'rejected' WHERE job_id = $1 AND id <> $2 AND status = 'pending'`,
		b.JobID, b.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject other bids"})
	}

	chatID, err := chat.EnsureChat(ctx, tx, b.JobID, posterID, b.FreelancerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to open chat"})
	}
	if _, err := chat.AppendMessage(ctx, tx, chatID, chat.SenderSystem,
		"Bid accepted. The job is now in progress, use this chat to coordinate."); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to seed chat"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	b.Status = StatusAccepted

	job, err := fetchJobSnapshot(ctx, b.JobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}

	// Notifications are best-effort after commit.
	ref := b.ID
	meta := "{}"
	_ = alerts.CreateNotification(b.FreelancerID, "bid:accepted", "Your bid was accepted", job.Title, &ref, &meta)
	if email, err := directory.Email(ctx, b.FreelancerID); err == nil && email != "" {
		_ = alerts.EnqueueBidAccepted(b.JobID, b.ID, b.FreelancerID, email, b.Amount)
	}
	for _, fid := range rejectedFreelancers {
		_ = alerts.CreateNotification(fid, "bid:rejected", "Your bid was not selected", job.Title, &ref, &meta)
		if email, err := directory.Email(ctx, fid); err == nil && email != "" {
			_ = alerts.EnqueueBidRejected(b.JobID, fid, email)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"bid": b, "job": job, "chat_id": chatID})
}

// =========================
// RejectBid - Poster rejects a single pending bid
// =========================
func RejectBid(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	bidID := c.Param("id")
	if bidID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing bid id in URL"})
	}

	ctx := context.Background()

	var b Bid
	var posterID, jobStatus, jobTitle string
	err := db.Conn.QueryRow(ctx,
		`SELECT b.id, b.job_id, b.freelancer_id, b.status, j.poster_id, j.status, j.title
         FROM bids b JOIN jobs j ON j.id = b.job_id
         WHERE b.id = $1`, bidID,
	).Scan(&b.ID, &b.JobID, &b.FreelancerID, &b.Status, &posterID, &jobStatus, &jobTitle)
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: bid", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch bid"})
	}
	if posterID != caller.ID {
		return httpx.Fail(c, fmt.Errorf("%w: not your job", httpx.ErrNotAuthorized))
	}
	if jobStatus != "open" {
		return httpx.Fail(c, fmt.Errorf("%w: job is not open", httpx.ErrInvalidState))
	}

	res, err := db.Conn.Exec(ctx,
		`UPDATE bids SET status = 'rejected' WHERE id = $1 AND status = 'pending'`, bidID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update bid"})
	}
	if res.RowsAffected() == 0 {
		return httpx.Fail(c, fmt.Errorf("%w: bid is not pending", httpx.ErrInvalidState))
	}
	b.Status = StatusRejected

	ref := b.ID
	meta := "{}"
	_ = alerts.CreateNotification(b.FreelancerID, "bid:rejected", "Your bid was not selected", jobTitle, &ref, &meta)
	if email, err := directory.Email(ctx, b.FreelancerID); err == nil && email != "" {
		_ = alerts.EnqueueBidRejected(b.JobID, b.FreelancerID, email)
	}

	return c.JSON(http.StatusOK, echo.Map{"bid": b})
}

// =========================
// ListBidsForJob - Poster reviews all bids on their job
// =========================
func ListBidsForJob(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	jobID := c.Param("jobId")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id in URL"})
	}

	ctx := context.Background()
	var posterID string
	err := db.Conn.QueryRow(ctx, `SELECT poster_id FROM jobs WHERE id = $1`, jobID).Scan(&posterID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return httpx.Fail(c, fmt.Errorf("%w: job", httpx.ErrNotFound))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}
	if posterID != caller.ID {
		return httpx.Fail(c, fmt.Errorf("%w: only the poster may list bids", httpx.ErrNotAuthorized))
	}

	rows, err := db.Conn.Query(ctx,
		`SELECT b.id, b.job_id, b.freelancer_id, b.amount, b.delivery_time_days, b.proposal, b.status, b.created_at, u.name
         FROM bids b JOIN users u ON u.id = b.freelancer_id
         WHERE b.job_id = $1 ORDER BY b.created_at DESC`, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch bids"})
	}
	defer rows.Close()

	type bidWithName struct {
		Bid
		FreelancerName string `json:"freelancer_name"`
	}
	bids := make([]bidWithName, 0)
	for rows.Next() {
		var b bidWithName
		if err := rows.Scan(&b.ID, &b.JobID, &b.FreelancerID, &b.Amount, &b.DeliveryTimeDays,
			&b.Proposal, &b.Status, &b.CreatedAt, &b.FreelancerName); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		bids = append(bids, b)
	}

	return c.JSON(http.StatusOK, echo.Map{"bids": bids})
}

// =========================
// ListMyBids - Freelancer's own bids with job snapshots
// =========================
func ListMyBids(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT b.id, b.job_id, b.freelancer_id, b.amount, b.delivery_time_days, b.proposal, b.status, b.created_at,
                j.id, j.title, j.budget, j.deadline_date, j.status, j.poster_id, j.selected_bid_id, j.completed_at
         FROM bids b JOIN jobs j ON j.id = b.job_id
         WHERE b.freelancer_id = $1 ORDER BY b.created_at DESC`, caller.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch bids"})
	}
	defer rows.Close()

	type entry struct {
		Bid Bid         `json:"bid"`
		Job jobSnapshot `json:"job"`
	}
	entries := make([]entry, 0)
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.Bid.ID, &e.Bid.JobID, &e.Bid.FreelancerID, &e.Bid.Amount,
			&e.Bid.DeliveryTimeDays, &e.Bid.Proposal, &e.Bid.Status, &e.Bid.CreatedAt,
			&e.Job.ID, &e.Job.Title, &e.Job.Budget, &e.Job.DeadlineDate, &e.Job.Status,
			&e.Job.PosterID, &e.Job.SelectedBidID, &e.Job.CompletedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		entries = append(entries, e)
	}

	return c.JSON(http.StatusOK, echo.Map{"bids": entries})
}

// =========================
// ListMyApplications - Applied-to jobs with competitive stats
// =========================
// Each entry carries the job snapshot, the caller's own bid, and aggregate
// statistics over every bid on that job.
func ListMyApplications(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()

	rows, err := db.Conn.Query(ctx,
		`SELECT b.id, b.job_id, b.freelancer_id, b.amount, b.delivery_time_days, b.proposal, b.status, b.created_at,
                j.id, j.title, j.budget, j.deadline_date, j.status, j.poster_id, j.selected_bid_id, j.completed_at
         FROM bids b JOIN jobs j ON j.id = b.job_id
         WHERE b.freelancer_id = $1 ORDER BY b.created_at DESC`, caller.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch applications"})
	}

	type entry struct {
		Job   jobSnapshot `json:"job"`
		MyBid Bid         `json:"my_bid"`
		Stats JobBidStats `json:"stats"`
	}
	var entries []entry
	var jobIDs []string
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.MyBid.ID, &e.MyBid.JobID, &e.MyBid.FreelancerID, &e.MyBid.Amount,
			&e.MyBid.DeliveryTimeDays, &e.MyBid.Proposal, &e.MyBid.Status, &e.MyBid.CreatedAt,
			&e.Job.ID, &e.Job.Title, &e.Job.Budget, &e.Job.DeadlineDate, &e.Job.Status,
			&e.Job.PosterID, &e.Job.SelectedBidID, &e.Job.CompletedAt); err != nil {
			rows.Close()
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		entries = append(entries, e)
		jobIDs = append(jobIDs, e.Job.ID)
	}
	rows.Close()

	if len(entries) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"applications": []entry{}})
	}

	allRows, err := db.Conn.Query(ctx,
		`SELECT id, job_id, freelancer_id, amount, delivery_time_days, proposal, status, created_at
         FROM bids WHERE job_id = ANY($1)`, jobIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch bids"})
	}
	defer allRows.Close()

	var all []Bid
	for allRows.Next() {
		var b Bid
		if err := allRows.Scan(&b.ID, &b.JobID, &b.FreelancerID, &b.Amount,
			&b.DeliveryTimeDays, &b.Proposal, &b.Status, &b.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		all = append(all, b)
	}

	grouped := GroupByJob(all)
	for i := range entries {
		entries[i].Stats = Summarize(grouped[entries[i].Job.ID])
	}

	return c.JSON(http.StatusOK, echo.Map{"applications": entries})
}

func fetchJobSnapshot(ctx context.Context, jobID string) (*jobSnapshot, error) {
	var j jobSnapshot
	err := db.Conn.QueryRow(ctx,
		`SELECT id, title, budget, deadline_date, status, poster_id, selected_bid_id, completed_at
         FROM jobs WHERE id = $1`, jobID,
	).Scan(&j.ID, &j.Title, &j.Budget, &j.DeadlineDate, &j.Status, &j.PosterID, &j.SelectedBidID, &j.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
