package export

import (
	"encoding/json"
	"io"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"
)

// JSONExporter writes the transcript as indented JSON.
type JSONExporter struct{}

type jsonTranscript struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title,omitempty"`
	Messages []models.Message `json:"messages"`
}

func (e *JSONExporter) Export(detail backend.ConversationDetail, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonTranscript{
		ID:       detail.ID,
		Title:    detail.Title,
		Messages: detail.Messages,
	})
}

func (e *JSONExporter) Extension() string {
	return "json"
}
