package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/llm"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pdftext"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCompleter answers from a function of the user message and counts calls.
type fakeCompleter struct {
	mu    sync.Mutex
	calls []llm.ChatRequest
	reply func(user string) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	user := ""
	for _, m := range req.Messages {
		if m.Role == llm.RoleUser {
			user = m.Content
		}
	}
	out, err := f.reply(user)
	if err != nil {
		return llm.ChatResponse{}, err
	}
	return llm.ChatResponse{Content: out}, nil
}

func (f *fakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func staticReply(s string) *fakeCompleter {
	return &fakeCompleter{reply: func(string) (string, error) { return s, nil }}
}

// fakeText returns the document bytes as text, after an optional per-file delay.
type fakeText struct {
	delay map[string]time.Duration
}

func (f fakeText) Extract(ctx context.Context, doc entity.SourceDocument) (pdftext.Result, error) {
	if d := f.delay[doc.Filename]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return pdftext.Result{}, ctx.Err()
		}
	}
	if strings.HasPrefix(string(doc.Data), "BAD") {
		return pdftext.Result{}, fmt.Errorf("%s: %w: bad header", doc.Filename, common.ErrDocumentParse)
	}
	return pdftext.Result{Text: string(doc.Data), Pages: 1}, nil
}

type jobEvent struct {
	Filename string
	Status   string
	Kind     string
}

// fakeRecorder keeps the last status per job.
type fakeRecorder struct {
	mu     sync.Mutex
	names  map[uuid.UUID]string
	events []jobEvent
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{names: map[uuid.UUID]string{}}
}

func (r *fakeRecorder) add(id uuid.UUID, status, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, jobEvent{Filename: r.names[id], Status: status, Kind: kind})
}

func (r *fakeRecorder) Start(_ context.Context, _ uuid.UUID, _ int, filename string) (uuid.UUID, error) {
	id := uuid.New()
	r.mu.Lock()
	r.names[id] = filename
	r.mu.Unlock()
	r.add(id, "RUNNING", "")
	return id, nil
}

func (r *fakeRecorder) MarkTextOK(_ context.Context, id uuid.UUID, _, _ int) error {
	r.add(id, "TEXT_OK", "")
	return nil
}

func (r *fakeRecorder) FinishOK(_ context.Context, id uuid.UUID, _ int, _ bool) error {
	r.add(id, "LLM_OK", "")
	return nil
}

func (r *fakeRecorder) FinishFailure(_ context.Context, id uuid.UUID, kind, _ string) error {
	r.add(id, "FAILED", kind)
	return nil
}

func (r *fakeRecorder) statuses(filename string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Filename == filename {
			out = append(out, e.Status)
		}
	}
	return out
}
