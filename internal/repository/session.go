package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

// RunSummary is what a finished run leaves behind for download.
type RunSummary struct {
	Rows   int
	Errors int
	Report []byte
}

type SessionRepository interface {
	Create(ctx context.Context, seed []prompts.ExtractionPrompt) (*entity.Session, error)
	Exists(ctx context.Context, sessionID uuid.UUID) (bool, error)
	LoadPrompts(ctx context.Context, sessionID uuid.UUID) ([]prompts.ExtractionPrompt, error)
	SavePrompts(ctx context.Context, sessionID uuid.UUID, ps []prompts.ExtractionPrompt) error
	CreateRun(ctx context.Context, sessionID, runID uuid.UUID) error
	SaveReport(ctx context.Context, runID uuid.UUID, sum RunSummary) error
	LoadReport(ctx context.Context, sessionID, runID uuid.UUID) ([]byte, error)
}

type sessionRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSessionRepository(db *sql.DB, logger *slog.Logger) SessionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionRepo{db: db, logger: logger}
}

func (r *sessionRepo) Create(ctx context.Context, seed []prompts.ExtractionPrompt) (*entity.Session, error) {
	if len(seed) == 0 {
		seed = prompts.Defaults()
	}
	raw, err := json.Marshal(seed)
	if err != nil {
		return nil, fmt.Errorf("encode prompts: %w", err)
	}

	now := time.Now().UTC()
	s := &entity.Session{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, prompts, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		s.ID.String(), string(raw), formatTime(now), formatTime(now),
	)
	if err != nil {
		r.logger.Error("session create failed", "error", err)
		return nil, fmt.Errorf("%w: create session: %v", common.ErrDatabase, err)
	}
	r.logger.Info("session created", "session_id", s.ID, "prompts", len(seed))
	return s, nil
}

func (r *sessionRepo) Exists(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id = ?`, sessionID.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: session exists: %v", common.ErrDatabase, err)
	}
	return n > 0, nil
}

func (r *sessionRepo) LoadPrompts(ctx context.Context, sessionID uuid.UUID) ([]prompts.ExtractionPrompt, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT prompts FROM sessions WHERE id = ?`, sessionID.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load prompts: %v", common.ErrDatabase, err)
	}
	var ps []prompts.ExtractionPrompt
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return nil, fmt.Errorf("%w: decode prompts: %v", common.ErrDatabase, err)
	}
	return ps, nil
}

func (r *sessionRepo) SavePrompts(ctx context.Context, sessionID uuid.UUID, ps []prompts.ExtractionPrompt) error {
	raw, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("encode prompts: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET prompts = ?, updated_at = ? WHERE id = ?`,
		string(raw), formatTime(time.Now()), sessionID.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: save prompts: %v", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, common.ErrNotFound)
	}
	r.logger.Debug("session prompts saved", "session_id", sessionID, "prompts", len(ps))
	return nil
}

func (r *sessionRepo) CreateRun(ctx context.Context, sessionID, runID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, session_id, created_at)
		 SELECT ?, id, ? FROM sessions WHERE id = ?`,
		runID.String(), formatTime(time.Now()), sessionID.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: create run: %v", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, common.ErrNotFound)
	}
	r.logger.Info("run created", "session_id", sessionID, "run_id", runID)
	return nil
}

func (r *sessionRepo) SaveReport(ctx context.Context, runID uuid.UUID, sum RunSummary) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE runs SET report = ?, rows_count = ?, errors = ?, finished_at = ? WHERE id = ?`,
		sum.Report, sum.Rows, sum.Errors, formatTime(time.Now()), runID.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: save report: %v", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", runID, common.ErrNotFound)
	}
	r.logger.Info("run report saved", "run_id", runID, "rows", sum.Rows, "bytes", len(sum.Report))
	return nil
}

// LoadReport returns the spreadsheet bytes of a finished run. A run that belongs to another
// session, or has no report yet, is not found.
func (r *sessionRepo) LoadReport(ctx context.Context, sessionID, runID uuid.UUID) ([]byte, error) {
	var report []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT report FROM runs WHERE id = ? AND session_id = ?`,
		runID.String(), sessionID.String(),
	).Scan(&report)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && len(report) == 0) {
		return nil, fmt.Errorf("report for run %s: %w", runID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load report: %v", common.ErrDatabase, err)
	}
	return report, nil
}
