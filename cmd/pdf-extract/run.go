package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/export"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/ingest"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pipeline"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

type runOptions struct {
	out          string
	disable      []string
	concurrency  int
	dedupe       bool
	skipHidden   bool
	responseMode string
}

func newRunCmd(a *app) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [files or directories...]",
		Short: "Extract answers from PDFs into a spreadsheet",
		Long: `Run every enabled prompt against each PDF and write the answers to an XLSX report.

Directories are searched recursively for .pdf files. Files that cannot be read or
answered are listed on stderr and left out of the report.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args, o)
		},
	}
	cmd.Flags().StringVarP(&o.out, "out", "o", constants.ReportFilename, "report path")
	cmd.Flags().StringArrayVar(&o.disable, "disable", nil, "prompt title to skip (repeatable)")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", 0, "documents processed at once (default BATCH_CONCURRENCY)")
	cmd.Flags().BoolVar(&o.dedupe, "dedupe", false, "skip files whose content matches an earlier file")
	cmd.Flags().BoolVar(&o.skipHidden, "skip-hidden", true, "ignore dot files inside directories")
	cmd.Flags().StringVar(&o.responseMode, "response-mode", "", "lines or json (default LLM_RESPONSE_MODE)")
	return cmd
}

func (a *app) run(cmd *cobra.Command, args []string, o *runOptions) error {
	ps, err := a.enabledPrompts(o.disable)
	if err != nil {
		return err
	}

	docs, results, stats, err := ingest.Collect(cmd.Context(), args, ingest.CollectOptions{
		SkipHidden: o.skipHidden,
		Dedupe:     o.dedupe,
	})
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != "" {
			fmt.Fprintf(a.stderr, "Skipping %s: %s\n", r.Path, r.Err)
		}
	}
	a.logger.Info("ingest.collected",
		"scanned", stats.Scanned, "loaded", stats.Loaded,
		"deduplicated", stats.Deduplicated, "failed", stats.Failed)
	if len(docs) == 0 {
		return common.ErrNoDocuments
	}

	res, err := a.processor(o.concurrency, o.responseMode).ProcessBatch(cmd.Context(), docs, ps, pipeline.BatchOptions{
		Progress: func(done, total int, filename string) {
			fmt.Fprintf(a.stderr, "[%d/%d] %s\n", done, total, filename)
		},
	})
	if err != nil {
		return err
	}
	printOutcome(a.stderr, res)

	if res.Report.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No data extracted.")
		return nil
	}
	if err := writeReport(o.out, res.Report); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", res.Report.Len(), o.out)
	return nil
}

// enabledPrompts applies --disable to the effective registry and rejects an empty set.
func (a *app) enabledPrompts(disable []string) (prompts.PromptSet, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	for _, title := range disable {
		if err := reg.SetEnabled(title, false); err != nil {
			return nil, fmt.Errorf("--disable %q: %w", title, err)
		}
	}
	ps := reg.Enabled()
	if err := prompts.Validate(ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func printOutcome(w io.Writer, res *pipeline.BatchResult) {
	for _, fe := range res.Errors {
		fmt.Fprintln(w, fe.String())
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "Warning: %s: %s\n", warn.Filename, warn.Message)
	}
}

func writeReport(path string, r *export.Report) error {
	b, err := export.WriteXLSX(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
