package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the local database",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			v, err := store.Version(cmd.Context())
			if err != nil {
				return err
			}
			a.out.PrintResult(map[string]string{"path": store.Path(), "schema_version": strconv.Itoa(v)})
			return nil
		},
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Drop all users, games and ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset %s without --yes", a.cfg.GetDBPath())
			}
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Reset(cmd.Context()); err != nil {
				return err
			}
			a.refreshMetrics(cmd.Context())
			a.out.PrintResult(map[string]string{"path": store.Path(), "status": "reset"})
			return nil
		},
	}
	reset.Flags().BoolVar(&yes, "yes", false, "confirm the reset")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			st, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if a.out.json {
				a.out.PrintResult(st)
				return nil
			}
			a.out.PrintTable([]string{"TABLE", "ROWS"}, [][]string{
				{"user", strconv.Itoa(st.Users)},
				{"game", strconv.Itoa(st.Games)},
				{"user_games", strconv.Itoa(st.Ratings)},
			})
			return nil
		},
	}

	cmd.AddCommand(initCmd, reset, stats)
	return cmd
}
