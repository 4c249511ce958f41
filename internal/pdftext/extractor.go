// Package pdftext turns uploaded PDF bytes into plain text.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
)

type Config struct {
	TempDir string // "" = os.TempDir()
	// Repair retries a PDF the reader cannot open after rewriting it with pdfcpu.
	Repair bool
}

// Result is the text of a document plus a few numbers for logging.
type Result struct {
	Text     string
	Pages    int
	Duration time.Duration
}

// Chars returns the number of characters (not bytes) in the text.
func (r Result) Chars() int {
	return len([]rune(r.Text))
}

type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract concatenates the text of every page in page order, with no separator. A page that
// yields no text contributes "". Bytes that are not a readable PDF fail with
// common.ErrDocumentParse.
func (e *Extractor) Extract(ctx context.Context, doc entity.SourceDocument) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	var pages []string
	err := withTempFile(e.cfg.TempDir, doc.Data, e.logger, func(path string) error {
		var rerr error
		pages, rerr = readPages(path)
		if rerr == nil || !e.cfg.Repair {
			return rerr
		}
		e.logger.Warn("pdftext.extract.repairing", "filename", doc.Filename, "error", rerr)
		repaired, perr := e.readRepaired(path)
		if perr != nil {
			// report the reader's error; the rewrite failing says nothing new
			return rerr
		}
		e.logger.Info("pdftext.repair.ok", "filename", doc.Filename)
		pages = repaired
		return nil
	})
	if err != nil {
		e.logger.Error("pdftext.extract.failed",
			"filename", doc.Filename, "bytes", doc.Size(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{}, fmt.Errorf("%w: %v", common.ErrDocumentParse, err)
	}

	res := Result{
		Text:     strings.Join(pages, ""),
		Pages:    len(pages),
		Duration: time.Since(start),
	}
	e.logger.Info("pdftext.extract.ok",
		"filename", doc.Filename,
		"pages", res.Pages,
		"chars", res.Chars(),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// readPages returns one string per page. The pdf reader panics on some malformed inputs, so a
// panic is turned into an error.
func readPages(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		txt, perr := p.GetPlainText(nil)
		if perr != nil {
			txt = ""
		}
		pages = append(pages, txt)
	}
	return pages, nil
}
