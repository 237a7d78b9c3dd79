package main

import (
	"github.com/spf13/cobra"

	"github.com/ryanm101/gameshelf/internal/httpapi"
	"github.com/ryanm101/gameshelf/internal/logging"
	"github.com/ryanm101/gameshelf/internal/session"
	"github.com/ryanm101/gameshelf/internal/tui"
	"github.com/ryanm101/gameshelf/internal/viewstate"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			games, users, err := a.repositories(ctx)
			if err != nil {
				return err
			}

			rt := viewstate.NewRuntime(a.cfg.GetIOWorkers())
			defer rt.Close()

			sess := session.New()
			logging.Info("tui session started", "session", sess.ID())
			return tui.Run(ctx, tui.Deps{
				Runtime: rt,
				Games:   games,
				Users:   users,
				Session: sess,
			})
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			games, users, err := a.repositories(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := httpapi.New(games, users, a.store, httpapi.Options{
				JWTSecret: a.cfg.Server.JWTSecret,
				TokenTTL:  a.cfg.Server.TokenTTL,
			})
			a.out.PrintInfo("🌐 gameshelf API on %s\n", addr)
			return srv.Start(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
