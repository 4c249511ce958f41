package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/export"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pipeline"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/repository"
)

type runResponse struct {
	RunID     string               `json:"run_id"`
	Columns   []string             `json:"columns"`
	Rows      []export.Row         `json:"rows"`
	Errors    []pipeline.FileError `json:"errors"`
	Warnings  []pipeline.Warning   `json:"warnings"`
	ReportURL string               `json:"report_url"`
}

// createRun accepts multipart "files", runs the batch and stores the report. No files or no
// enabled prompts are rejected before anything is processed.
func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := pathUUID(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.deps.Sessions.LoadPrompts(ctx, sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ps := prompts.NewRegistry(list...).Enabled()

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.writeError(w, r, fmt.Errorf("%w: upload: %v", common.ErrInvalidInput, err))
		return
	}
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["files"]
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	if len(headers) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: upload at least one PDF", common.ErrNoDocuments))
		return
	}
	if len(ps) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: enable at least one prompt", common.ErrNoPrompts))
		return
	}

	docs, err := readUploads(headers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	runID := uuid.New()
	if err := s.deps.Sessions.CreateRun(ctx, sessionID, runID); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx = common.WithRunID(common.WithSessionID(ctx, sessionID.String()), runID.String())

	res, err := s.deps.Processor.ProcessBatch(ctx, docs, ps, pipeline.BatchOptions{
		RunID: runID,
		Progress: func(done, total int, filename string) {
			s.logger.Info("run.progress", "run_id", runID, "done", done, "total", total, "filename", filename)
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	xlsx, err := export.WriteXLSX(res.Report)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Sessions.SaveReport(ctx, runID, repository.RunSummary{
		Rows:   res.Report.Len(),
		Errors: len(res.Errors),
		Report: xlsx,
	}); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		RunID:     runID.String(),
		Columns:   res.Report.Columns(),
		Rows:      nonNil(res.Report.Rows()),
		Errors:    nonNil(res.Errors),
		Warnings:  nonNil(res.Warnings),
		ReportURL: fmt.Sprintf("/v1/sessions/%s/runs/%s/report", sessionID, runID),
	})
}

func readUploads(headers []*multipart.FileHeader) ([]entity.SourceDocument, error) {
	docs := make([]entity.SourceDocument, 0, len(headers))
	for _, fh := range headers {
		if !constants.IsAllowedExt(filepath.Ext(fh.Filename)) {
			return nil, fmt.Errorf("%w: %s is not a PDF", common.ErrInvalidInput, fh.Filename)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		docs = append(docs, entity.SourceDocument{Filename: fh.Filename, Data: data})
	}
	return docs, nil
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathUUID(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	runID, err := pathUUID(r, "runID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jobs, err := s.deps.Jobs.ListByRun(r.Context(), runID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]*entity.ExtractJob, 0, len(jobs))
	for _, j := range jobs {
		if j.SessionID == sessionID {
			out = append(out, j)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID.String(), "jobs": out})
}

func (s *Server) downloadReport(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathUUID(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	runID, err := pathUUID(r, "runID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	xlsx, err := s.deps.Sessions.LoadReport(r.Context(), sessionID, runID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", constants.XLSXMimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, constants.ReportFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
