package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ryanm101/gameshelf/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shown := *a.cfg
			if shown.Catalog.APIKey != "" {
				shown.Catalog.APIKey = "********"
			}
			if shown.Server.JWTSecret != "" {
				shown.Server.JWTSecret = "********"
			}
			if a.out.json {
				a.out.PrintResult(shown)
				return nil
			}

			data, err := yaml.Marshal(shown)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			a.out.PrintInfo("# Active configuration\n%s", data)
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example .gameshelf.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := ".gameshelf.yaml"
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists at %s", path)
			}
			if err := os.WriteFile(path, []byte(config.Example()), 0o644); err != nil { // #nosec G306
				return fmt.Errorf("failed to write config: %w", err)
			}
			a.out.PrintResult(map[string]string{"path": path, "status": "created"})
			return nil
		},
	}

	cmd.AddCommand(show, initCmd)
	return cmd
}
