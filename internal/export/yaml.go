package export

import (
	"io"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"

	"gopkg.in/yaml.v3"
)

// YAMLExporter writes the transcript as YAML.
type YAMLExporter struct{}

type yamlTranscript struct {
	ID       int64         `yaml:"id"`
	Title    string        `yaml:"title,omitempty"`
	Messages []yamlMessage `yaml:"messages"`
}

type yamlMessage struct {
	Role    models.MessageRole `yaml:"role"`
	Content string             `yaml:"content"`
	Source  models.Source      `yaml:"source,omitempty"`
}

func (e *YAMLExporter) Export(detail backend.ConversationDetail, w io.Writer) error {
	t := yamlTranscript{ID: detail.ID, Title: detail.Title}
	for _, m := range detail.Messages {
		t.Messages = append(t.Messages, yamlMessage{Role: m.Role, Content: m.Content, Source: m.Source})
	}
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(t)
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
