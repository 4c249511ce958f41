// Package prompts holds the extraction prompts a user edits before each run.
package prompts

import (
	"fmt"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
)

// ExtractionPrompt describes one fact or summary to pull out of a document.
type ExtractionPrompt struct {
	Title       string `json:"title" yaml:"title"`
	Instruction string `json:"instruction" yaml:"instruction"`
	FormatHint  string `json:"format_hint" yaml:"format"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
}

// PromptSet is the ordered list of prompts enabled for a run. Its order is both the order of
// the numbered request lines and the order answers are zipped back to titles.
type PromptSet []ExtractionPrompt

// Titles returns the prompt titles in order.
func (ps PromptSet) Titles() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Title
	}
	return out
}

// Defaults returns a fresh copy of the three built-in prompts, all enabled.
func Defaults() []ExtractionPrompt {
	return []ExtractionPrompt{
		{
			Title:       "Key Points",
			Instruction: "Extract the main key points or takeaways from the text. List each point separately.",
			FormatHint:  "- Point 1\n- Point 2\n- Point 3\netc.",
			Enabled:     true,
		},
		{
			Title:       "Named Entities",
			Instruction: "Extract important named entities (people, organizations, locations, dates) mentioned in the text. Group them by type.",
			FormatHint:  "People: [names]\nOrganizations: [org names]\nLocations: [places]\nDates: [dates]",
			Enabled:     true,
		},
		{
			Title:       "Summary",
			Instruction: "Provide a concise summary of the main content in 2-3 sentences.",
			FormatHint:  "Clear, concise summary text",
			Enabled:     true,
		},
	}
}

// Validate rejects an empty set and duplicate or blank titles.
func Validate(ps PromptSet) error {
	if len(ps) == 0 {
		return common.ErrNoPrompts
	}
	v := common.NewValidator()
	seen := make(map[string]struct{}, len(ps))
	for i, p := range ps {
		field := fmt.Sprintf("prompts[%d].title", i)
		v.Field(field, p.Title, common.Required, common.MaxLength(255))
		if _, dup := seen[p.Title]; dup {
			v.Add(field, p.Title, "must be unique")
		}
		seen[p.Title] = struct{}{}
		v.Field(fmt.Sprintf("prompts[%d].instruction", i), p.Instruction, common.Required)
	}
	return v.Error()
}
