package main

import (
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pdftext"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pipeline"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

// app carries the persistent flags and what PersistentPreRunE builds from them.
type app struct {
	promptsFile string
	llmURL      string
	model       string
	logLevel    string

	cfg    *common.Config
	logger *slog.Logger
	stderr io.Writer
}

// lockedWriter serializes writes from the logger and from concurrent workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "pdf-extract",
		Short: "Extract structured answers from PDF files with an LLM",
		Long: `pdf-extract sends the text of each PDF, together with a list of extraction
prompts, to an OpenAI-compatible chat endpoint and writes one spreadsheet row per file.

Configuration comes from the environment (and .env); flags override it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.promptsFile, "prompts", "", "YAML prompt preset file (overrides PROMPTS_FILE)")
	f.StringVar(&a.llmURL, "llm-url", "", "chat endpoint base URL (overrides LLM_BASE_URL)")
	f.StringVar(&a.model, "model", "", "model name (overrides LLM_MODEL)")
	f.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newRunCmd(a),
		newWatchCmd(a),
		newPromptsCmd(a),
		newInspectCmd(a),
		newTextCmd(a),
		newHealthCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := common.LoadConfig()
	if a.promptsFile != "" {
		cfg.Extraction.PromptsFile = a.promptsFile
	}
	if a.llmURL != "" {
		cfg.LLM.BaseURL = a.llmURL
	}
	if a.model != "" {
		cfg.LLM.Model = a.model
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	// logs go to stderr so stdout stays usable in pipes
	a.stderr = &lockedWriter{w: cmd.ErrOrStderr()}
	a.logger = common.NewLogger(cfg.Log, a.stderr)
	return nil
}

// registry seeds a prompt registry from the preset file, or the built-ins.
func (a *app) registry() (*prompts.Registry, error) {
	if a.cfg.Extraction.PromptsFile == "" {
		return prompts.NewRegistry(), nil
	}
	seed, err := prompts.LoadFile(a.cfg.Extraction.PromptsFile)
	if err != nil {
		return nil, err
	}
	return prompts.NewRegistry(seed...), nil
}

func (a *app) extractor() *pdftext.Extractor {
	return pdftext.NewExtractor(pdftext.Config{
		TempDir: a.cfg.Extraction.TempDir,
		Repair:  a.cfg.Extraction.RepairPDFs,
	}, a.logger)
}

// processor wires the pipeline without a job ledger; the CLI has no session store.
func (a *app) processor(concurrency int, mode string) *pipeline.Processor {
	if concurrency <= 0 {
		concurrency = a.cfg.Extraction.Concurrency
	}
	responseMode := a.cfg.LLM.ResponseMode
	if mode != "" {
		responseMode = constants.ParseResponseMode(mode)
	}
	client := openai.NewClient(openai.Config{
		APIKey:      a.cfg.LLM.APIKey,
		BaseURL:     a.cfg.LLM.BaseURL,
		Model:       a.cfg.LLM.Model,
		Temperature: a.cfg.LLM.Temperature,
		Timeout:     a.cfg.LLM.Timeout,
	}, a.logger)
	pl := pipeline.NewPipeline(pipeline.Config{
		MaxTextChars: a.cfg.Extraction.MaxTextChars,
		ResponseMode: responseMode,
	}, client, a.logger)
	return pipeline.NewProcessor(a.logger, a.extractor(), pl, nil, concurrency)
}
