package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/export"
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <report.xlsx>",
		Short: "Print the rows of a generated report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read report: %w", err)
			}
			r, err := export.ReadXLSX(b)
			if err != nil {
				return err
			}
			a.logger.Debug("report.inspect", "path", args[0], "rows", r.Len(), "columns", len(r.Columns()))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r.Rows())
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(r.Columns(), "\t"))
			for i := 0; i < r.Len(); i++ {
				vals := r.Values(i)
				for j, v := range vals {
					vals[j] = oneLine(v)
				}
				fmt.Fprintln(tw, strings.Join(vals, "\t"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d rows\n", r.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON objects")
	return cmd
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " / ")
	s = strings.ReplaceAll(s, "\n", " / ")
	return strings.ReplaceAll(s, "\t", " ")
}
