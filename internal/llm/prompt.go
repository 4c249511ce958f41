package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

// BuildSystemPrompt returns the fixed system directive.
func BuildSystemPrompt() string {
	parts := []string{
		"You are an AI assistant that extracts structured information from text.",
		"Extract the requested information precisely according to the specified formats.",
		"If information is not found, respond with '" + constants.NotFoundAnswer + "'.",
		"Be concise and focused in your responses.",
	}
	return strings.Join(parts, "\n")
}

// TruncateText keeps the first max characters of text and always appends the truncation
// marker, cut or not. max <= 0 keeps the whole text.
func TruncateText(text string, max int) string {
	if max > 0 {
		n := 0
		for i := range text {
			if n == max {
				text = text[:i]
				break
			}
			n++
		}
	}
	return text + constants.TruncationMarker
}

// BuildUserPrompt embeds the (truncated) document text followed by one numbered line per
// prompt, in PromptSet order.
func BuildUserPrompt(text string, ps prompts.PromptSet, maxChars int) string {
	var b strings.Builder
	b.WriteString("Analyze the following text and extract the requested information:\n\n")
	b.WriteString(TruncateText(text, maxChars))
	b.WriteString("\n\nPlease extract the following information, following the exact format specified for each:\n\n")
	b.WriteString(NumberedPromptList(ps))
	return b.String()
}

// NumberedPromptList renders "i. <instruction> Format: <format hint>" lines.
func NumberedPromptList(ps prompts.PromptSet) string {
	lines := make([]string, len(ps))
	for i, p := range ps {
		lines[i] = fmt.Sprintf("%d. %s Format: %s", i+1, p.Instruction, p.FormatHint)
	}
	return strings.Join(lines, "\n")
}

// BuildJSONInstruction asks for a JSON object keyed by prompt title.
func BuildJSONInstruction(ps prompts.PromptSet) string {
	keys := make([]string, len(ps))
	for i, p := range ps {
		keys[i] = strconv.Quote(p.Title)
	}
	return "Return ONLY a JSON object. Use exactly these keys, one per numbered item above and in the same order: " +
		strings.Join(keys, ", ") + ". Every value must be a string."
}

// BuildMessages assembles the system + user pair for one document.
func BuildMessages(text string, ps prompts.PromptSet, maxChars int, mode constants.ResponseMode) []ChatMessage {
	user := BuildUserPrompt(text, ps, maxChars)
	if mode == constants.ResponseModeJSON {
		user += "\n\n" + BuildJSONInstruction(ps)
	}
	return []ChatMessage{
		{Role: RoleSystem, Content: BuildSystemPrompt()},
		{Role: RoleUser, Content: user},
	}
}
