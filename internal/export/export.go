// Package export writes conversation transcripts to portable formats.
package export

import (
	"fmt"
	"io"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
)

// Exporter defines the interface for all export formats.
type Exporter interface {
	Export(detail backend.ConversationDetail, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, md, yaml)", format)
	}
}
