package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/llm"
)

func newTextCmd(a *app) *cobra.Command {
	var sent bool
	cmd := &cobra.Command{
		Use:   "text <file.pdf>",
		Short: "Print the text extracted from a PDF",
		Long: `Print the concatenated page text of a PDF. With --sent, print only the part that
would be embedded in the request, including the truncation marker.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read pdf: %w", err)
			}
			res, err := a.extractor().Extract(cmd.Context(), entity.SourceDocument{
				Filename: filepath.Base(args[0]),
				Data:     data,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			text := res.Text
			if sent {
				text = llm.TruncateText(text, a.cfg.Extraction.MaxTextChars)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			fmt.Fprintf(a.stderr, "pages=%d chars=%d elapsed=%s\n", res.Pages, res.Chars(), res.Duration)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sent, "sent", false, "truncate to MAX_TEXT_CHARS as a request would")
	return cmd
}
