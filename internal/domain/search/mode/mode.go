package mode

// Mode is the caller's stated intent. Every mode runs the same pipeline:
// an AI-augmented answer with a local fallback.
type Mode string

// Search mode constants.
const (
	Auto   Mode = "auto"
	Search Mode = "search"
	Ask    Mode = "ask"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Auto || m == Search || m == Ask
}
