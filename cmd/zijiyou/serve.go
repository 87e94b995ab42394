package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/siskinc/zijiyou/server"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the duplicate filter over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, logger, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				settings.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			filter, st, err := newFilter(ctx, settings, logger, false)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}
			return server.New(filter, logger).ListenAndServe(ctx, settings.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides config)")
	return cmd
}
