package main

import (
	"github.com/spf13/cobra"

	srv "github.com/0xcro3dile/voices-of-independence/internal/infrastructure/http"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Address
			}
			server := srv.NewServer(a.session, a.catalog, a.metrics.Handler(), a.logger, addr)
			return server.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.address)")
	return cmd
}
