package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "numbered lines",
			reply: "1. Alice works at Acme.\n2. Founded in 2001.",
			want:  []string{"Alice works at Acme.", "Founded in 2001."},
		},
		{
			name:  "blank lines dropped",
			reply: "\n1. a\n   \n\n2. b\n",
			want:  []string{"a", "b"},
		},
		{
			name:  "Here lines dropped anywhere",
			reply: "Here are the results:\n1. a\nHere is more\n2. b",
			want:  []string{"a", "b"},
		},
		{
			name:  "unnumbered lines kept verbatim",
			reply: "- Point 1\n- Point 2",
			want:  []string{"- Point 1", "- Point 2"},
		},
		{
			name:  "only the leading prefix is stripped",
			reply: "10. Dr. Smith. Mr. Jones.",
			want:  []string{"Dr. Smith. Mr. Jones."},
		},
		{
			name:  "prefix without space is kept",
			reply: "3.14 is pi",
			want:  []string{"3.14 is pi"},
		},
		{
			name:  "crlf",
			reply: "1. a\r\n2. b\r\n",
			want:  []string{"a", "b"},
		},
		{
			name:  "empty reply",
			reply: "",
			want:  []string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseAnswers(tc.reply))
		})
	}
}

func TestParseAnswers_WellFormedReplyRoundTrips(t *testing.T) {
	for _, n := range []int{1, 3, 12} {
		lines := make([]string, n)
		want := make([]string, n)
		for i := range lines {
			want[i] = fmt.Sprintf("answer number %d", i+1)
			lines[i] = fmt.Sprintf("%d. %s", i+1, want[i])
		}
		got := ParseAnswers(strings.Join(lines, "\n"))
		assert.Equal(t, want, got)
	}
}

func TestAnswerSet_Mismatch(t *testing.T) {
	assert.False(t, AnswerSet{Answers: []string{"a", "b"}, Expected: 2}.Mismatch())
	assert.True(t, AnswerSet{Answers: []string{"a", "b", "c"}, Expected: 2}.Mismatch())
	assert.True(t, AnswerSet{Answers: nil, Expected: 1}.Mismatch())
}

func TestParseKeyedAnswers(t *testing.T) {
	ps := prompts.PromptSet{
		{Title: "Key Points", Instruction: "kp"},
		{Title: "Summary", Instruction: "s"},
	}

	t.Run("ordered by prompt set", func(t *testing.T) {
		set, changed, err := ParseKeyedAnswers(`{"Summary":"short","Key Points":"- a"}`, ps)
		require.NoError(t, err)
		assert.Empty(t, changed)
		assert.Equal(t, []string{"- a", "short"}, set.Answers)
		assert.True(t, set.Keyed)
		assert.False(t, set.Mismatch())
	})

	t.Run("code fence and coercion", func(t *testing.T) {
		reply := "```json\n{\"Key Points\":[\"a\",\"b\"],\"Summary\":42,\"Extra\":\"x\"}\n```"
		set, changed, err := ParseKeyedAnswers(reply, ps)
		require.NoError(t, err)
		assert.Equal(t, []string{"a; b", "42"}, set.Answers)
		assert.ElementsMatch(t, []string{"Key Points(list)", "Summary(number)", "Extra(unknown)"}, changed)
	})

	t.Run("missing key fails validation", func(t *testing.T) {
		_, _, err := ParseKeyedAnswers(`{"Summary":"short"}`, ps)
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, _, err := ParseKeyedAnswers("1. a\n2. b", ps)
		assert.Error(t, err)
	})
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildAnswersJSONSchema(prompts.PromptSet{{Title: "A"}})
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"A":"x"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"A":1}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"A":"x","B":"y"}`)))
}
