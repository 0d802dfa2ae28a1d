package export

import (
	"fmt"
	"io"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"
)

// MarkdownExporter writes the transcript as a readable Markdown document.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(detail backend.ConversationDetail, w io.Writer) error {
	title := detail.Title
	if title == "" {
		title = fmt.Sprintf("Conversation %d", detail.ID)
	}
	if _, err := fmt.Fprintf(w, "# %s\n\n", title); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n---\n\n", len(detail.Messages))

	for i, msg := range detail.Messages {
		actor := "Assistant"
		if msg.Role == models.MessageRoleUser {
			actor = "User"
		}
		_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", actor, msg.Content)
		if msg.Source != "" && msg.Role == models.MessageRoleAssistant {
			_, _ = fmt.Fprintf(w, "_source: %s_\n\n", msg.Source)
		}
		if i < len(detail.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}
	return nil
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}
