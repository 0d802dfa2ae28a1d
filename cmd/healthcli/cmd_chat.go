package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/chat"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/nav"
)

var chatConversationID int64

const welcomeMessage = "Hello! I am the AI health assistant. Ask me anything " +
	"about exercise, nutrition, or mental wellbeing."

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Open the chat screen and talk to the assistant. Each reply shows
where its content came from; replies that trip a safety check additionally
print a risk notice.

Inside the session: /new starts a fresh conversation, /exit leaves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if screen := a.machine.NavigateTo(nav.ScreenChat); screen != nav.ScreenChat {
			// The redirect notice has already been printed.
			return nil
		}

		out := cmd.OutOrStdout()
		a.chat.OnRisk(func(warning string) {
			fmt.Fprintln(out, riskStyle.Render("Notice: "+warning))
		})

		ctx := cmd.Context()
		if chatConversationID != 0 {
			if err := a.chat.Open(ctx, chatConversationID); err != nil {
				return fmt.Errorf("open conversation %d: %s", chatConversationID, backend.Reason(err))
			}
			for _, msg := range a.chat.Messages() {
				printMessage(out, msg)
			}
		} else {
			a.chat.Seed(welcomeMessage)
			printMessage(out, a.chat.Messages()[0])
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			switch line {
			case "/exit", "/quit":
				return nil
			case "/new":
				a.chat.Reset()
				a.chat.Seed(welcomeMessage)
				fmt.Fprintln(out, metaStyle.Render("Started a new conversation."))
				continue
			case "":
				continue
			}

			before := len(a.chat.Messages())
			err := a.chat.SendUserMessage(ctx, line)
			switch {
			case err == nil:
				for _, msg := range a.chat.Messages()[before:] {
					if msg.Role == models.MessageRoleAssistant {
						printMessage(out, msg)
					}
				}
			case errors.Is(err, chat.ErrNotAuthenticated), errors.Is(err, backend.ErrAuthExpired):
				// Session is gone; the machine already moved to the login
				// screen. Leave the chat loop.
				return nil
			default:
				// The optimistic message stays in place; the user can resend.
				fmt.Fprintln(out, noticeStyle.Render("Send failed: "+backend.Reason(err)))
			}
		}
	},
}

func printMessage(out io.Writer, msg models.Message) {
	switch msg.Role {
	case models.MessageRoleUser:
		fmt.Fprintln(out, userMessageStyle.Render("You"))
	default:
		fmt.Fprintln(out, assistantMessageStyle.Render("Assistant"))
	}
	fmt.Fprintln(out, messageContentStyle.Render(msg.Content))
	if msg.Role == models.MessageRoleAssistant && msg.Source != "" && msg.Source != models.SourceSystem {
		fmt.Fprintln(out, sourceStyle.Render(sourceLabel(msg.Source)))
	}
}

func sourceLabel(source models.Source) string {
	if source.Internal() {
		return "source: curated resource library"
	}
	return "source: internet content, use with judgement"
}

func init() {
	chatCmd.Flags().Int64VarP(&chatConversationID, "conversation", "c", 0, "Continue a stored conversation")
	rootCmd.AddCommand(chatCmd)
}
