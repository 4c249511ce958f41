package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractJob represents one document's pass through the pipeline within a run.
type ExtractJob struct {
	ID           uuid.UUID  `json:"id"`
	SessionID    uuid.UUID  `json:"session_id"`
	RunID        uuid.UUID  `json:"run_id"`
	Position     int        `json:"position"`
	Filename     string     `json:"filename"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Status       string     `json:"status"`
	ErrorKind    *string    `json:"error_kind,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	Pages        int        `json:"pages"`
	TextChars    int        `json:"text_chars"`
	AnswerCount  int        `json:"answer_count"`
	Mismatch     bool       `json:"mismatch"`
}
