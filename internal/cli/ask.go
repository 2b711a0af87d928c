package cli

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"customer_insight_chatbot/internal/core"
)

func askCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask <utterance...>",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			reply, err := a.processor.Execute(ctx, core.ProcessorInput{
				ConversationID: uuid.NewString(),
				UserMessage:    strings.Join(args, " "),
			})
			if err != nil {
				return err
			}

			if !asJSON {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Response)
				return err
			}
			data, err := sonic.ConfigStd.MarshalIndent(reply, "", "  ")
			if err != nil {
				return fmt.Errorf("encode reply: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the reply, intent and memory as JSON")
	return cmd
}
