package model

// EntryKind tags a transcript entry
type EntryKind string

const (
	EntryPrompt     EntryKind = "prompt"
	EntryAnswer     EntryKind = "answer"
	EntryCompletion EntryKind = "completion"
)

// TranscriptEntry is one message in the intake chat
type TranscriptEntry struct {
	Kind        EntryKind         `json:"kind"`
	QuestionID  string            `json:"questionId,omitempty"`
	Text        string            `json:"text,omitempty"`
	Options     []string          `json:"options,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Title       string            `json:"title,omitempty"` // Completion only
	Record      *CompletionRecord `json:"record,omitempty"`
}

// Transcript is the ordered, append-only message log of a session
type Transcript []TranscriptEntry
