package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/async"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/export"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/ingest"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pipeline"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

type watchOptions struct {
	out            string
	disable        []string
	workers        int
	initialScan    bool
	skipHidden     bool
	debounce       time.Duration
	processTimeout time.Duration
	responseMode   string
}

func newWatchCmd(a *app) *cobra.Command {
	o := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [directories...]",
		Short: "Process PDFs as they appear and keep a report up to date",
		Long: `Watch directories for new or rewritten PDF files. Each file is processed once it
settles and its row is appended to the report, which is rewritten after every file.
Stops on interrupt.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd, args, o)
		},
	}
	cmd.Flags().StringVarP(&o.out, "out", "o", constants.ReportFilename, "report path")
	cmd.Flags().StringArrayVar(&o.disable, "disable", nil, "prompt title to skip (repeatable)")
	cmd.Flags().IntVar(&o.workers, "workers", 1, "files processed at once")
	cmd.Flags().BoolVar(&o.initialScan, "initial-scan", true, "process PDFs already present at start")
	cmd.Flags().BoolVar(&o.skipHidden, "skip-hidden", true, "ignore dot files and dot directories")
	cmd.Flags().DurationVar(&o.debounce, "debounce", 500*time.Millisecond, "wait for writes to settle")
	cmd.Flags().DurationVar(&o.processTimeout, "process-timeout", 3*time.Minute, "limit per file; 0 = none")
	cmd.Flags().StringVar(&o.responseMode, "response-mode", "", "lines or json (default LLM_RESPONSE_MODE)")
	return cmd
}

// reportSink accumulates rows across files and rewrites the report after each one.
type reportSink struct {
	mu     sync.Mutex
	path   string
	report *export.Report
}

func (s *reportSink) add(r *export.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.Append(r)
	if s.report.Len() == 0 {
		return nil
	}
	return writeReport(s.path, s.report)
}

func (s *reportSink) rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report.Len()
}

func (a *app) watch(cmd *cobra.Command, roots []string, o *watchOptions) error {
	ps, err := a.enabledPrompts(o.disable)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	proc := a.processor(1, o.responseMode)
	sink := &reportSink{path: o.out, report: export.NewReport()}
	stderr := a.stderr

	queue := async.NewWorkerQueue(func(jctx context.Context, job async.Job) error {
		return processFile(jctx, proc, ps, sink, job.Path, stderr)
	}, a.logger,
		async.WithWorkers(o.workers),
		async.WithQueueSize(256),
		async.WithProcessTimeout(o.processTimeout),
	)

	paths, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Roots:       roots,
		InitialScan: o.initialScan,
		SkipHidden:  o.skipHidden,
		Debounce:    o.debounce,
	}, a.logger)
	if err != nil {
		queue.Shutdown(context.Background())
		return err
	}
	fmt.Fprintf(stderr, "Watching %d directories, writing %s\n", len(roots), o.out)

	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			if err := queue.Enqueue(ctx, async.Job{Path: p}); err != nil {
				a.logger.Warn("watch.enqueue_failed", "path", p, "error", err)
			}
		case werr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.logger.Warn("watch.error", "error", werr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", sink.rows(), o.out)
	return nil
}

func processFile(ctx context.Context, proc *pipeline.Processor, ps prompts.PromptSet, sink *reportSink, path string, stderr io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	doc := entity.SourceDocument{Filename: filepath.Base(path), Data: data}
	res, err := proc.ProcessBatch(ctx, []entity.SourceDocument{doc}, ps, pipeline.BatchOptions{})
	if err != nil {
		return err
	}
	printOutcome(stderr, res)
	if len(res.Errors) > 0 {
		return errors.New(res.Errors[0].Message)
	}
	return sink.add(res.Report)
}
