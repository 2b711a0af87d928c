package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"customer_insight_chatbot/internal/core"
)

const chatBanner = "💬 Customer insight chat. Ask about clusters, products or customers; /reset forgets context, /quit exits."

func chatCmd(opts *options) *cobra.Command {
	var plain bool
	var width int
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat over the customer table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			var render renderFunc = plainText
			if !plain {
				render, err = markdownRenderer(width)
				if err != nil {
					return err
				}
			}
			return runChat(cmd, a.processor, render)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown instead of rendering it")
	cmd.Flags().IntVar(&width, "width", 80, "Word wrap width for rendered replies")
	return cmd
}

type renderFunc func(markdown string) (string, error)

func plainText(markdown string) (string, error) {
	return markdown + "\n", nil
}

func markdownRenderer(width int) (renderFunc, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithWordWrap(width),
		glamour.WithStandardStyle("dark"),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return renderer.Render, nil
}

// runChat reads one utterance per line until EOF or /quit
func runChat(cmd *cobra.Command, processor core.Processor, render renderFunc) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	conversationID := uuid.NewString()

	fmt.Fprintln(out, chatBanner)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := processor.Reset(ctx, conversationID); err != nil {
				return err
			}
			fmt.Fprintln(out, "🧹 Context cleared.")
			continue
		}

		reply, err := processor.Execute(ctx, core.ProcessorInput{
			ConversationID: conversationID,
			UserMessage:    line,
		})
		if err != nil {
			return err
		}
		if err := printReply(out, render, reply.Response); err != nil {
			return err
		}
	}
}

func printReply(out io.Writer, render renderFunc, markdown string) error {
	text, err := render(markdown)
	if err != nil {
		return fmt.Errorf("render reply: %w", err)
	}
	_, err = fmt.Fprint(out, text)
	return err
}
