package llm

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

func promptSet(n int) prompts.PromptSet {
	ps := make(prompts.PromptSet, n)
	for i := range ps {
		ps[i] = prompts.ExtractionPrompt{
			Title:       fmt.Sprintf("T%d", i+1),
			Instruction: fmt.Sprintf("Extract item %d.", i+1),
			FormatHint:  fmt.Sprintf("format %d", i+1),
			Enabled:     true,
		}
	}
	return ps
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter keeps all", "abc", 5, "abc..."},
		{"exact keeps all", "abcde", 5, "abcde..."},
		{"longer is cut", "abcdefgh", 5, "abcde..."},
		{"empty still gets marker", "", 5, "..."},
		{"multibyte counts characters", "héllo wörld", 7, "héllo w..."},
		{"no limit", "abcdefgh", 0, "abcdefgh..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TruncateText(tc.in, tc.max))
		})
	}
}

func TestBuildUserPrompt_EmbedsFirst15000Chars(t *testing.T) {
	long := strings.Repeat("a", constants.MaxTextChars) + strings.Repeat("Z", 100)
	out := BuildUserPrompt(long, promptSet(1), constants.MaxTextChars)

	assert.Contains(t, out, strings.Repeat("a", constants.MaxTextChars)+"...")
	assert.NotContains(t, out, "Z")

	short := BuildUserPrompt("short text", promptSet(1), constants.MaxTextChars)
	assert.Contains(t, short, "\n\nshort text...\n\n")
}

func TestBuildUserPrompt_NumberedLinesInOrder(t *testing.T) {
	numbered := regexp.MustCompile(`(?m)^(\d+)\. (.*) Format: (.*)$`)
	for _, n := range []int{1, 2, 3, 7} {
		ps := promptSet(n)
		out := BuildUserPrompt("Some document text.", ps, constants.MaxTextChars)

		matches := numbered.FindAllStringSubmatch(out, -1)
		require.Len(t, matches, n)
		for i, m := range matches {
			assert.Equal(t, fmt.Sprint(i+1), m[1])
			assert.Equal(t, ps[i].Instruction, m[2])
			assert.Equal(t, ps[i].FormatHint, m[3])
		}
	}
}

func TestBuildUserPrompt_Layout(t *testing.T) {
	ps := prompts.PromptSet{{Title: "Summary", Instruction: "Summarize.", FormatHint: "text"}}
	want := "Analyze the following text and extract the requested information:\n\n" +
		"doc...\n\n" +
		"Please extract the following information, following the exact format specified for each:\n\n" +
		"1. Summarize. Format: text"
	assert.Equal(t, want, BuildUserPrompt("doc", ps, 100))
}

func TestBuildSystemPrompt(t *testing.T) {
	sys := BuildSystemPrompt()
	assert.Contains(t, sys, "'Not found in text'")
	assert.Contains(t, sys, "precisely")
	assert.Contains(t, sys, "concise")
}

func TestBuildMessages(t *testing.T) {
	ps := promptSet(2)

	msgs := BuildMessages("text", ps, 100, constants.ResponseModeLines)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.NotContains(t, msgs[1].Content, "JSON")

	msgs = BuildMessages("text", ps, 100, constants.ResponseModeJSON)
	assert.Contains(t, msgs[1].Content, `Use exactly these keys, one per numbered item above and in the same order: "T1", "T2".`)
}
