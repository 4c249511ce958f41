package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
)

// SanitizeKeyedReply strips a surrounding markdown code fence and coerces non-string values
// to strings, so a reply that is almost right can still validate. Unknown keys are dropped.
// It returns the cleaned JSON and the keys it touched.
func SanitizeKeyedReply(reply string, ps prompts.PromptSet) ([]byte, []string, error) {
	body := stripCodeFence(reply)

	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	allowed := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		allowed[p.Title] = struct{}{}
	}

	var changed []string
	for k, v := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			changed = append(changed, k+"(unknown)")
			continue
		}
		switch t := v.(type) {
		case string:
			m[k] = strings.TrimSpace(t)
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
			changed = append(changed, k+"(number)")
		case bool:
			m[k] = strconv.FormatBool(t)
			changed = append(changed, k+"(bool)")
		case []any:
			parts := make([]string, 0, len(t))
			for _, item := range t {
				parts = append(parts, fmt.Sprint(item))
			}
			m[k] = strings.Join(parts, "; ")
			changed = append(changed, k+"(list)")
		case nil:
			delete(m, k)
			changed = append(changed, k+"(null)")
		default:
			b, _ := json.Marshal(t)
			m[k] = string(b)
			changed = append(changed, k+"(object)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, changed, nil
}

// ParseKeyedAnswers reads a JSON object keyed by prompt title and returns the answers in
// PromptSet order. The reply must validate against BuildAnswersJSONSchema after sanitizing.
func ParseKeyedAnswers(reply string, ps prompts.PromptSet) (AnswerSet, []string, error) {
	cleaned, changed, err := SanitizeKeyedReply(reply, ps)
	if err != nil {
		return AnswerSet{}, changed, err
	}
	if err := ValidateJSONAgainstSchema(BuildAnswersJSONSchema(ps), cleaned); err != nil {
		return AnswerSet{}, changed, err
	}
	var m map[string]string
	if err := json.Unmarshal(cleaned, &m); err != nil {
		return AnswerSet{}, changed, fmt.Errorf("unmarshal answers: %w", err)
	}
	answers := make([]string, len(ps))
	for i, p := range ps {
		answers[i] = m[p.Title]
	}
	return AnswerSet{Answers: answers, Expected: len(ps), Keyed: true}, changed, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
