package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
)

type ExtractJobRepository interface {
	Start(ctx context.Context, runID uuid.UUID, position int, filename string) (uuid.UUID, error)
	MarkTextOK(ctx context.Context, jobID uuid.UUID, pages, chars int) error
	FinishOK(ctx context.Context, jobID uuid.UUID, answers int, mismatch bool) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, kind, message string) error
	Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error)
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewExtractJobRepository(db *sql.DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log}
}

const jobColumns = `id, session_id, run_id, position, filename, started_at, finished_at, status,
	error_kind, error_message, pages, text_chars, answer_count, mismatch`

// Start records a RUNNING job. The session is taken from the run, which must exist.
func (r *extractJobRepo) Start(ctx context.Context, runID uuid.UUID, position int, filename string) (uuid.UUID, error) {
	id := uuid.New()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO extract_job (id, session_id, run_id, position, filename, started_at, status)
		 SELECT ?, session_id, id, ?, ?, ?, ? FROM runs WHERE id = ?`,
		id.String(), position, filename, formatTime(time.Now()), string(constants.JobStatusRunning), runID.String(),
	)
	if err != nil {
		r.log.Error("extract_job start failed", "run_id", runID, "filename", filename, "err", err)
		return uuid.Nil, fmt.Errorf("%w: start job: %v", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return uuid.Nil, fmt.Errorf("run %s: %w", runID, common.ErrNotFound)
	}
	r.log.Debug("extract_job started", "job_id", id, "run_id", runID, "filename", filename)
	return id, nil
}

func (r *extractJobRepo) MarkTextOK(ctx context.Context, jobID uuid.UUID, pages, chars int) error {
	return r.update(ctx, jobID,
		`UPDATE extract_job SET status = ?, pages = ?, text_chars = ? WHERE id = ?`,
		string(constants.JobStatusTextOK), pages, chars, jobID.String(),
	)
}

func (r *extractJobRepo) FinishOK(ctx context.Context, jobID uuid.UUID, answers int, mismatch bool) error {
	return r.update(ctx, jobID,
		`UPDATE extract_job SET status = ?, answer_count = ?, mismatch = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusLLMOK), answers, mismatch, formatTime(time.Now()), jobID.String(),
	)
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, kind, message string) error {
	err := r.update(ctx, jobID,
		`UPDATE extract_job SET status = ?, error_kind = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), kind, message, formatTime(time.Now()), jobID.String(),
	)
	if err == nil {
		r.log.Info("extract_job failed", "job_id", jobID, "kind", kind)
	}
	return err
}

func (r *extractJobRepo) update(ctx context.Context, jobID uuid.UUID, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Error("extract_job update failed", "job_id", jobID, "err", err)
		return fmt.Errorf("%w: update job: %v", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s: %w", jobID, common.ErrNotFound)
	}
	return nil
}

func (r *extractJobRepo) Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM extract_job WHERE id = ?`, jobID.String())
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", jobID, common.ErrNotFound)
	}
	return job, err
}

// ListByRun returns the jobs of a run in upload order.
func (r *extractJobRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*entity.ExtractJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM extract_job WHERE run_id = ? ORDER BY position`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.ExtractJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", common.ErrDatabase, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(s rowScanner) (*entity.ExtractJob, error) {
	var (
		id, sessionID, runID, startedAt string
		finishedAt, kind, message       sql.NullString
		job                             entity.ExtractJob
	)
	err := s.Scan(&id, &sessionID, &runID, &job.Position, &job.Filename, &startedAt, &finishedAt,
		&job.Status, &kind, &message, &job.Pages, &job.TextChars, &job.AnswerCount, &job.Mismatch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan job: %v", common.ErrDatabase, err)
	}
	job.ID, _ = uuid.Parse(id)
	job.SessionID, _ = uuid.Parse(sessionID)
	job.RunID, _ = uuid.Parse(runID)
	job.StartedAt = parseTime(startedAt)
	job.FinishedAt = parseNullTime(finishedAt)
	job.ErrorKind = nullString(kind)
	job.ErrorMessage = nullString(message)
	return &job, nil
}
