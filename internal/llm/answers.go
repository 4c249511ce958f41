package llm

import (
	"regexp"
	"strings"
)

var numberedPrefix = regexp.MustCompile(`^\d+\. `)

// AnswerSet is the parsed reply for one document. Answers line up with the PromptSet by
// position only; nothing guarantees the counts agree.
type AnswerSet struct {
	Answers  []string
	Expected int
	// Keyed is true when answers came from a validated JSON object rather than lines.
	Keyed bool
}

// Mismatch reports whether the answer count differs from the prompt count.
func (a AnswerSet) Mismatch() bool {
	return len(a.Answers) != a.Expected
}

// ParseAnswers splits a free-form reply into answers: blank lines and lines starting with
// "Here" are dropped, and a leading "<n>. " is stripped. It never fails.
func ParseAnswers(reply string) []string {
	lines := strings.Split(reply, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "Here") {
			continue
		}
		if loc := numberedPrefix.FindStringIndex(line); loc != nil {
			line = line[loc[1]:]
		}
		out = append(out, line)
	}
	return out
}
