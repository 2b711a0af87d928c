package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"customer_insight_chatbot/internal/nodes"
	"customer_insight_chatbot/internal/server"
)

func serveCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat and tools HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			tools, err := nodes.NewToolSet(ctx, a.table)
			if err != nil {
				return err
			}

			router := server.NewRouter(a.cfg.Server, a.processor, tools)
			return server.Run(ctx, a.cfg.Server.Addr, router)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP bind address, overrides server.addr")
	return cmd
}
