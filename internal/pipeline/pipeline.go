// Package pipeline runs documents through text extraction and the language model, and collects
// the answers into a report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/llm"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

// Config controls how the request is built and the reply parsed.
type Config struct {
	MaxTextChars int                    // default constants.MaxTextChars
	ResponseMode constants.ResponseMode // default lines
}

// Pipeline turns one document's text and a PromptSet into an AnswerSet with a single
// completion call.
type Pipeline struct {
	cfg       Config
	completer llm.Completer
	logger    *slog.Logger
}

func NewPipeline(cfg Config, completer llm.Completer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = constants.MaxTextChars
	}
	if cfg.ResponseMode == "" {
		cfg.ResponseMode = constants.ResponseModeLines
	}
	return &Pipeline{cfg: cfg, completer: completer, logger: logger}
}

// Run sends the composite request and parses the reply. Completer errors are returned as is
// (they wrap common.ErrTransport); parsing never fails. A count mismatch is logged and left
// for the caller to report.
func (p *Pipeline) Run(ctx context.Context, text string, ps prompts.PromptSet) (llm.AnswerSet, error) {
	start := time.Now()
	jsonMode := p.cfg.ResponseMode == constants.ResponseModeJSON

	req := llm.ChatRequest{
		Messages:   llm.BuildMessages(text, ps, p.cfg.MaxTextChars, p.cfg.ResponseMode),
		JSONObject: jsonMode,
	}
	resp, err := p.completer.Complete(ctx, req)
	if err != nil {
		return llm.AnswerSet{}, fmt.Errorf("complete: %w", err)
	}

	set := llm.AnswerSet{Expected: len(ps)}
	if jsonMode {
		keyed, changed, kerr := llm.ParseKeyedAnswers(resp.Content, ps)
		if kerr == nil {
			set = keyed
			if len(changed) > 0 {
				p.logger.Warn("pipeline.answers.sanitized", "keys", changed)
			}
		} else {
			p.logger.Warn("pipeline.answers.keyed_fallback", "error", kerr)
		}
	}
	if !set.Keyed {
		set.Answers = llm.ParseAnswers(resp.Content)
	}

	if set.Mismatch() {
		p.logger.Warn("pipeline.answers.mismatch",
			"expected", set.Expected,
			"got", len(set.Answers),
		)
	}
	p.logger.Info("pipeline.run.ok",
		"prompts", len(ps),
		"answers", len(set.Answers),
		"keyed", set.Keyed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return set, nil
}
