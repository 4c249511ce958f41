package llm

import "github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"

// BuildAnswersJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map:
// an object with one required string property per prompt title.
func BuildAnswersJSONSchema(ps prompts.PromptSet) map[string]any {
	props := make(map[string]any, len(ps))
	required := make([]string, 0, len(ps))
	for _, p := range ps {
		props[p.Title] = map[string]any{"type": "string"}
		required = append(required, p.Title)
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
