package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/export"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/llm"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pdftext"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

// TextExtractor is satisfied by *pdftext.Extractor.
type TextExtractor interface {
	Extract(ctx context.Context, doc entity.SourceDocument) (pdftext.Result, error)
}

// ProgressFunc is called after each document, successful or not.
type ProgressFunc func(done, total int, filename string)

// BatchOptions are per-run knobs.
type BatchOptions struct {
	RunID    uuid.UUID // uuid.Nil = generate
	Progress ProgressFunc
}

// FileError names a document that contributed no row.
type FileError struct {
	Position int    `json:"position"`
	Filename string `json:"filename"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

func (e FileError) String() string {
	return fmt.Sprintf("Error processing %s: %s", e.Filename, e.Message)
}

// Warning names a document whose answer count did not match the prompts. The row is still
// produced unless the reply held no answers at all.
type Warning struct {
	Position int    `json:"position"`
	Filename string `json:"filename"`
	Expected int    `json:"expected"`
	Got      int    `json:"got"`
	Message  string `json:"message"`
}

// BatchResult is the outcome of one run, in upload order.
type BatchResult struct {
	RunID    uuid.UUID
	Report   *export.Report
	Errors   []FileError
	Warnings []Warning
}

type docOutcome struct {
	answers llm.AnswerSet
	err     error
	done    bool
}

// Processor coordinates text extraction then the LLM pipeline for a batch of documents.
type Processor struct {
	logger      *slog.Logger
	text        TextExtractor
	llm         *Pipeline
	jobs        JobRecorder
	concurrency int
}

// NewProcessor wires the stages. jobs may be nil; concurrency < 1 means sequential.
func NewProcessor(logger *slog.Logger, text TextExtractor, pl *Pipeline, jobs JobRecorder, concurrency int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if jobs == nil {
		jobs = nopRecorder{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{logger: logger, text: text, llm: pl, jobs: jobs, concurrency: concurrency}
}

// ProcessBatch runs every document and assembles the report. An empty batch or an empty
// PromptSet is rejected before any work. Per-document failures end up in Errors and never
// abort the batch; only ctx cancellation does.
func (p *Processor) ProcessBatch(ctx context.Context, docs []entity.SourceDocument, ps prompts.PromptSet, opts BatchOptions) (*BatchResult, error) {
	if len(docs) == 0 {
		return nil, common.ErrNoDocuments
	}
	if len(ps) == 0 {
		return nil, common.ErrNoPrompts
	}

	runID := opts.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	start := time.Now()
	p.logger.Info("processor.batch.start",
		"run_id", runID,
		"documents", len(docs),
		"prompts", len(ps),
		"concurrency", p.concurrency,
	)

	outcomes := make([]docOutcome, len(docs))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			set, err := p.processOne(gctx, runID, i, docs[i], ps)
			outcomes[i] = docOutcome{answers: set, err: err, done: true}

			if opts.Progress != nil {
				mu.Lock()
				done++
				opts.Progress(done, len(docs), docs[i].Filename)
				mu.Unlock()
			}
			// per-document failures are isolated
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		p.logger.Warn("processor.batch.canceled", "run_id", runID, "error", err)
		return nil, err
	}

	res := &BatchResult{RunID: runID, Report: export.NewReport()}
	titles := ps.Titles()
	for i, o := range outcomes {
		doc := docs[i]
		if !o.done {
			continue
		}
		if o.err != nil {
			res.Errors = append(res.Errors, FileError{
				Position: i,
				Filename: doc.Filename,
				Kind:     common.Kind(o.err),
				Message:  o.err.Error(),
			})
			continue
		}
		if o.answers.Mismatch() {
			res.Warnings = append(res.Warnings, Warning{
				Position: i,
				Filename: doc.Filename,
				Expected: o.answers.Expected,
				Got:      len(o.answers.Answers),
				Message: fmt.Errorf("%w: %s: expected %d answers, got %d",
					common.ErrFormatMismatch, doc.Filename, o.answers.Expected, len(o.answers.Answers)).Error(),
			})
		}
		// a reply with no answers names the file in Warnings but adds no row
		if len(o.answers.Answers) == 0 {
			continue
		}
		res.Report.Add(doc.Filename, titles, o.answers.Answers)
	}

	p.logger.Info("processor.batch.ok",
		"run_id", runID,
		"rows", res.Report.Len(),
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// processOne extracts text then runs the pipeline for one document, keeping the job ledger in
// step.
func (p *Processor) processOne(ctx context.Context, runID uuid.UUID, pos int, doc entity.SourceDocument, ps prompts.PromptSet) (llm.AnswerSet, error) {
	log := p.logger.With("run_id", runID, "position", pos, "filename", doc.Filename)

	jobID, err := p.jobs.Start(ctx, runID, pos, doc.Filename)
	if err != nil {
		log.Warn("processor.job.start_failed", "error", err)
	}
	fail := func(err error) (llm.AnswerSet, error) {
		log.Error("processor.doc.failed", "kind", common.Kind(err), "error", err)
		if jerr := p.jobs.FinishFailure(ctx, jobID, common.Kind(err), err.Error()); jerr != nil {
			log.Warn("processor.job.finish_failed", "error", jerr)
		}
		return llm.AnswerSet{}, err
	}

	log.Info("processor.doc.start", "bytes", doc.Size())
	text, err := p.text.Extract(ctx, doc)
	if err != nil {
		return fail(err)
	}
	if jerr := p.jobs.MarkTextOK(ctx, jobID, text.Pages, text.Chars()); jerr != nil {
		log.Warn("processor.job.update_failed", "error", jerr)
	}

	set, err := p.llm.Run(ctx, text.Text, ps)
	if err != nil {
		return fail(err)
	}
	if jerr := p.jobs.FinishOK(ctx, jobID, len(set.Answers), set.Mismatch()); jerr != nil {
		log.Warn("processor.job.finish_failed", "error", jerr)
	}
	log.Info("processor.doc.ok", "pages", text.Pages, "answers", len(set.Answers))
	return set, nil
}
