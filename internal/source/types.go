package source

// RawEntry is the subset of a Claude Code JSONL line that carries usage.
type RawEntry struct {
	Type      string      `json:"type,omitempty"`
	Timestamp string      `json:"timestamp"`
	SessionID string      `json:"sessionId,omitempty"`
	Cwd       string      `json:"cwd,omitempty"`
	Message   *RawMessage `json:"message"`

	// Older logs put the billed cost next to the message instead of inside it.
	CostUSD *float64 `json:"costUSD,omitempty"`
}

// RawMessage represents the assistant's message envelope.
type RawMessage struct {
	Model   string    `json:"model"`
	Usage   *RawUsage `json:"usage"`
	CostUSD *float64  `json:"costUSD,omitempty"`
}

// RawUsage holds token counts from the API response.
// Input and output are required, so they decode into pointers.
type RawUsage struct {
	InputTokens              *int64 `json:"input_tokens"`
	OutputTokens             *int64 `json:"output_tokens"`
	CacheCreationInputTokens int64  `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64  `json:"cache_read_input_tokens"`
}

// DiscoveredFile represents a JSONL file found during directory scanning.
type DiscoveredFile struct {
	Path       string
	Project    string // decoded display name (e.g., "gitlore")
	ProjectDir string // raw directory name
	SessionID  string // file stem, the fallback for lines without sessionId
}
