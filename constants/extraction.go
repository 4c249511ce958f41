package constants

const (
	// MaxTextChars is the character budget for document text embedded in a request.
	MaxTextChars = 15000
	// TruncationMarker is appended after the embedded text whether or not it was cut.
	TruncationMarker = "..."
	// NotFoundAnswer is what the model is told to answer when information is absent.
	NotFoundAnswer = "Not found in text"
)

// ResponseMode selects how the model is asked to shape its reply.
type ResponseMode string

const (
	// ResponseModeLines asks for a numbered list, one answer per line.
	ResponseModeLines ResponseMode = "lines"
	// ResponseModeJSON asks for a JSON object keyed by prompt title.
	ResponseModeJSON ResponseMode = "json"
)

// ParseResponseMode maps a config string onto a ResponseMode, defaulting to lines.
func ParseResponseMode(s string) ResponseMode {
	if ResponseMode(s) == ResponseModeJSON {
		return ResponseModeJSON
	}
	return ResponseModeLines
}
