package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/export"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/nav"
)

var (
	exportFormat string
	exportOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Work with stored conversations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if screen := a.machine.NavigateTo(nav.ScreenHistory); screen != nav.ScreenHistory {
			return nil
		}

		out := cmd.OutOrStdout()
		summaries := a.chat.History(cmd.Context())
		if len(summaries) == 0 {
			fmt.Fprintln(out, "No stored conversations.")
			return nil
		}
		for _, s := range summaries {
			title := s.Title
			if title == "" {
				title = "Conversation"
			}
			header := fmt.Sprintf("#%d", s.ID)
			if when := relativeTime(s.UpdatedAt, time.Now()); when != "" {
				fmt.Fprintf(out, "%s %s  %s\n", headerStyle.Render(header), title, metaStyle.Render(when))
			} else {
				fmt.Fprintf(out, "%s %s\n", headerStyle.Render(header), title)
			}
			if s.LastMessage != "" {
				fmt.Fprintf(out, "    %s\n", metaStyle.Render(s.LastMessage))
			}
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a conversation's messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseConversationID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if screen := a.machine.NavigateTo(nav.ScreenHistory); screen != nav.ScreenHistory {
			return nil
		}
		if err := a.chat.Open(cmd.Context(), id); err != nil {
			return fmt.Errorf("open conversation %d: %s", id, backend.Reason(err))
		}
		for _, msg := range a.chat.Messages() {
			printMessage(cmd.OutOrStdout(), msg)
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseConversationID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if screen := a.machine.NavigateTo(nav.ScreenHistory); screen != nav.ScreenHistory {
			return nil
		}

		deleted, err := a.chat.Delete(cmd.Context(), id, func() bool {
			return confirm(cmd, fmt.Sprintf("Delete conversation %d?", id))
		})
		if err != nil {
			return fmt.Errorf("delete conversation %d: %s", id, backend.Reason(err))
		}
		if deleted {
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseConversationID(args[0])
		if err != nil {
			return err
		}
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if screen := a.machine.NavigateTo(nav.ScreenHistory); screen != nav.ScreenHistory {
			return nil
		}
		detail, err := a.client.GetConversation(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch conversation %d: %s", id, backend.Reason(err))
		}

		path := exportOutput
		if path == "" {
			path = fmt.Sprintf("conversation-%d.%s", id, exporter.Extension())
		}
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer file.Close()

		if err := exporter.Export(detail, file); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

// relativeTime renders a backend timestamp as "x minutes ago" style text.
// Returns "" when the timestamp is absent or unparseable.
func relativeTime(stamp string, now time.Time) string {
	if stamp == "" {
		return ""
	}
	var parsed time.Time
	var err error
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if parsed, err = time.Parse(layout, stamp); err == nil {
			break
		}
	}
	if err != nil {
		return ""
	}

	age := now.Sub(parsed)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(age.Hours()))
	case age < 48*time.Hour:
		return "yesterday"
	default:
		return parsed.Format("2006-01-02")
	}
}

func parseConversationID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid conversation id %q", arg)
	}
	return id, nil
}

func init() {
	historyDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	historyExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Export format (json, md, yaml)")
	historyExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (defaults to conversation-<id>.<ext>)")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
