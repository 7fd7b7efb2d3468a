package persistence

import (
	"context"
	"database/sql"
	"time"

	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
)

const scrapeJobColumns = `id, content_id, url, notify_recipient, status, attempts, run_at, last_error, created_at, updated_at`

// staleRunning is how long a running job may go untouched before another worker reclaims it.
const staleRunning = 30 * time.Minute

type ScrapeJobRepository struct{ db *sql.DB }

func NewScrapeJobRepository(db *sql.DB) repository.IScrapeJob { return &ScrapeJobRepository{db: db} }

func (r *ScrapeJobRepository) Enqueue(ctx context.Context, job *model.ScrapeJob) error {
	now := time.Now().UTC()
	if job.RunAt.IsZero() {
		job.RunAt = now
	}
	if job.Status == "" {
		job.Status = model.ScrapeJobQueued
	}
	q := `INSERT INTO scrape_jobs (content_id, url, notify_recipient, status, attempts, run_at, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		  RETURNING id, created_at, updated_at`
	row := r.db.QueryRowContext(ctx, q, job.ContentID, job.URL, job.NotifyRecipient, job.Status, job.Attempts, job.RunAt, now)
	if err := row.Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return storeError("scrape_job.enqueue", err)
	}
	return nil
}

// ClaimDue moves due jobs to running under SKIP LOCKED so concurrent workers never share a job.
func (r *ScrapeJobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ScrapeJob, error) {
	q := `UPDATE scrape_jobs SET status='running', updated_at=$1
		  WHERE id IN (
			SELECT id FROM scrape_jobs
			WHERE (status IN ('queued','retry_scheduled') AND run_at <= $1)
			   OR (status='running' AND updated_at < $2)
			ORDER BY run_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED)
		  RETURNING ` + scrapeJobColumns
	rows, err := r.db.QueryContext(ctx, q, now, now.Add(-staleRunning), limit)
	if err != nil {
		return nil, storeError("scrape_job.claim", err)
	}
	defer rows.Close()
	var jobs []*model.ScrapeJob
	for rows.Next() {
		j, err := scanScrapeJob(rows)
		if err != nil {
			return nil, storeError("scrape_job.claim", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("scrape_job.claim", err)
	}
	return jobs, nil
}

func (r *ScrapeJobRepository) Claim(ctx context.Context, id int64, now time.Time) (*model.ScrapeJob, error) {
	q := `UPDATE scrape_jobs SET status='running', updated_at=$1
		  WHERE id=$2 AND status IN ('queued','retry_scheduled') AND run_at <= $1
		  RETURNING ` + scrapeJobColumns
	j, err := scanScrapeJob(r.db.QueryRowContext(ctx, q, now, id))
	if err != nil {
		return nil, storeError("scrape_job.claim_one", err)
	}
	return j, nil
}

func (r *ScrapeJobRepository) ScheduleRetry(ctx context.Context, id int64, attempts int, runAt time.Time, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE scrape_jobs SET status='retry_scheduled', attempts=$1, run_at=$2, last_error=$3, updated_at=$4 WHERE id=$5`,
		attempts, runAt, errMsg, time.Now().UTC(), id)
	return storeError("scrape_job.retry", err)
}

func (r *ScrapeJobRepository) MarkSucceeded(ctx context.Context, id int64, attempts int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE scrape_jobs SET status='succeeded', attempts=$1, last_error=NULL, updated_at=$2 WHERE id=$3`,
		attempts, time.Now().UTC(), id)
	return storeError("scrape_job.succeeded", err)
}

func (r *ScrapeJobRepository) MarkFailed(ctx context.Context, id int64, attempts int, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE scrape_jobs SET status='failed', attempts=$1, last_error=$2, updated_at=$3 WHERE id=$4`,
		attempts, errMsg, time.Now().UTC(), id)
	return storeError("scrape_job.failed", err)
}

func scanScrapeJob(s rowScanner) (*model.ScrapeJob, error) {
	j := &model.ScrapeJob{}
	var recipient, lastErr sql.NullString
	if err := s.Scan(&j.ID, &j.ContentID, &j.URL, &recipient, &j.Status, &j.Attempts, &j.RunAt, &lastErr, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.NotifyRecipient = stringPtr(recipient)
	j.LastError = stringPtr(lastErr)
	return j, nil
}
