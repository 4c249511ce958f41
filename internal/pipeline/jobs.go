package pipeline

import (
	"context"

	"github.com/google/uuid"
)

// JobRecorder keeps a per-document ledger of a run. Recorder errors are logged, never fatal to
// the document.
type JobRecorder interface {
	Start(ctx context.Context, runID uuid.UUID, position int, filename string) (uuid.UUID, error)
	MarkTextOK(ctx context.Context, jobID uuid.UUID, pages, chars int) error
	FinishOK(ctx context.Context, jobID uuid.UUID, answers int, mismatch bool) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, kind, message string) error
}

type nopRecorder struct{}

func (nopRecorder) Start(context.Context, uuid.UUID, int, string) (uuid.UUID, error) {
	return uuid.New(), nil
}
func (nopRecorder) MarkTextOK(context.Context, uuid.UUID, int, int) error { return nil }
func (nopRecorder) FinishOK(context.Context, uuid.UUID, int, bool) error { return nil }
func (nopRecorder) FinishFailure(context.Context, uuid.UUID, string, string) error { return nil }
