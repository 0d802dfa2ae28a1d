package models

// ConversationSummary is one row of the history list as returned by the
// backend. LastMessage is a server-side preview, already truncated.
// UpdatedAt is kept as the server's timestamp string; formatting is the
// presentation layer's concern.
type ConversationSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	LastMessage string `json:"lastMessage"`
	UpdatedAt   string `json:"updated_at"`
}
