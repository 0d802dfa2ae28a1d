package models

// MessageRole distinguishes who authored a message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Source labels where an assistant reply was drawn from.
type Source string

const (
	SourceInternal Source = "internal"
	SourceInternet Source = "internet"
	SourceAI       Source = "ai"
	SourceSystem   Source = "system"
)

// Internal reports whether the content came from the curated resource library
// rather than the open internet or a generative model.
func (s Source) Internal() bool {
	return s == SourceInternal
}

// Message is one entry in a conversation. Messages are append-only: once
// inserted they are never mutated or reordered. ID is unique within a
// conversation and serves as a stable rendering anchor.
type Message struct {
	ID      string      `json:"id"`
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
	Source  Source      `json:"source,omitempty"`
}
