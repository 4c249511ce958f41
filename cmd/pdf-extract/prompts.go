package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPromptsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List the effective extraction prompts",
		Long: `List the prompts a run would use: the built-in defaults, or the contents of the
preset file given by --prompts or PROMPTS_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reg.List())
			}
			for i, p := range reg.List() {
				mark := "x"
				if !p.Enabled {
					mark = " "
				}
				fmt.Fprintf(out, "%d. [%s] %s\n", i+1, mark, p.Title)
				fmt.Fprintf(out, "   %s\n", p.Instruction)
				fmt.Fprintf(out, "   Format: %s\n", strings.ReplaceAll(p.FormatHint, "\n", "\n           "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
