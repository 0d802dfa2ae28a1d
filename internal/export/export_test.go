package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"
)

func sampleDetail() backend.ConversationDetail {
	return backend.ConversationDetail{
		ID:    7,
		Title: "sleep habits",
		Messages: []models.Message{
			{ID: "1", Role: models.MessageRoleUser, Content: "how much sleep do teens need?"},
			{ID: "2", Role: models.MessageRoleAssistant, Content: "8 to 10 hours", Source: models.SourceInternal},
		},
	}
}

func TestNewExporterFormats(t *testing.T) {
	cases := map[string]string{
		"json":     "json",
		"md":       "md",
		"markdown": "md",
		"yaml":     "yaml",
	}
	for format, ext := range cases {
		exporter, err := NewExporter(format)
		if err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
		if exporter.Extension() != ext {
			t.Fatalf("format %q: extension %q", format, exporter.Extension())
		}
	}
	if _, err := NewExporter("pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestJSONExportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleDetail(), &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}
	var decoded struct {
		ID       int64            `json:"id"`
		Title    string           `json:"title"`
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.ID != 7 || decoded.Title != "sleep habits" || len(decoded.Messages) != 2 {
		t.Fatalf("unexpected transcript: %+v", decoded)
	}
	if decoded.Messages[1].Source != models.SourceInternal {
		t.Fatalf("source lost: %+v", decoded.Messages[1])
	}
}

func TestYAMLExportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleDetail(), &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}
	var decoded struct {
		ID       int64 `yaml:"id"`
		Messages []struct {
			Role    string `yaml:"role"`
			Content string `yaml:"content"`
		} `yaml:"messages"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.ID != 7 || len(decoded.Messages) != 2 {
		t.Fatalf("unexpected transcript: %+v", decoded)
	}
	if decoded.Messages[0].Role != "user" || decoded.Messages[1].Content != "8 to 10 hours" {
		t.Fatalf("unexpected messages: %+v", decoded.Messages)
	}
}

func TestMarkdownExportLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleDetail(), &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# sleep habits",
		"**User:**",
		"how much sleep do teens need?",
		"**Assistant:**",
		"8 to 10 hours",
		"_source: internal_",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownFallsBackToIDTitle(t *testing.T) {
	detail := sampleDetail()
	detail.Title = ""
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(detail, &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if !strings.Contains(buf.String(), "# Conversation 7") {
		t.Fatalf("expected fallback title:\n%s", buf.String())
	}
}
