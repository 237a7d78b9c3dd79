package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ryanm101/gameshelf/internal/auth"
	"github.com/ryanm101/gameshelf/internal/catalog"
	"github.com/ryanm101/gameshelf/internal/config"
	"github.com/ryanm101/gameshelf/internal/db"
	"github.com/ryanm101/gameshelf/internal/logging"
	"github.com/ryanm101/gameshelf/internal/metrics"
	"github.com/ryanm101/gameshelf/internal/repository"
	"github.com/ryanm101/gameshelf/internal/tracing"
)

const version = "0.3.0"

// app carries what every command needs: configuration, output mode and
// the lazily opened store.
type app struct {
	cfgPath string
	out     output

	cfg           *config.Config
	store         *db.DB
	logCloser     io.Closer
	traceShutdown func(context.Context) error
}

// execute runs the command tree and releases whatever the command opened,
// whether or not it succeeded.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.teardown(ctx))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "gameshelf",
		Short: "Browse the RAWG game catalog and keep your own ratings",
		Long: `gameshelf browses the RAWG video game catalog, shows per-game details and
rating distributions, and stores your personal ratings in a local SQLite
database. Run "gameshelf tui" for the interactive interface or
"gameshelf serve" for the JSON HTTP API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default: .gameshelf.yaml or ~/.config/gameshelf/config.yaml)")
	root.PersistentFlags().BoolVar(&a.out.json, "json", false, "output in JSON format")

	root.AddCommand(
		newTUICmd(a),
		newServeCmd(a),
		newGamesCmd(a),
		newDBCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.out.w = cmd.OutOrStdout()

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logCfg := logging.Config{Format: cfg.Logging.Format, Level: cfg.Logging.Level, File: cfg.Logging.File}
	if cmd.Name() == "tui" {
		closer, err := logging.SetupFile(logCfg)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logCloser = closer
	} else {
		logging.SetupWriter(logCfg, cmd.ErrOrStderr())
	}

	traceCfg := tracing.DefaultConfig()
	traceCfg.ServiceVersion = version
	shutdown, err := tracing.Setup(cmd.Context(), traceCfg)
	if err != nil {
		logging.Warn("tracing disabled", "error", err)
	} else {
		a.traceShutdown = shutdown
	}
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.traceShutdown != nil {
		errs = append(errs, a.traceShutdown(context.WithoutCancel(ctx)))
		a.traceShutdown = nil
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
		a.logCloser = nil
	}
	return errors.Join(errs...)
}

// openStore opens the configured database once per command.
func (a *app) openStore(ctx context.Context) (*db.DB, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := db.Open(ctx, a.cfg.GetDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.store = store
	a.refreshMetrics(ctx)
	return store, nil
}

func (a *app) refreshMetrics(ctx context.Context) {
	st, err := a.store.Stats(ctx)
	if err != nil {
		logging.Warn("failed to read db stats", "error", err)
		return
	}
	metrics.UpdateDBMetrics(metrics.Counts{Users: st.Users, Games: st.Games, Ratings: st.Ratings})
}

func (a *app) catalogClient() catalog.Client {
	if a.cfg.Catalog.APIKey == "" {
		logging.Warn("no RAWG API key configured; set catalog.api_key or RAWG_API_KEY")
	}
	return catalog.NewHTTPClient(catalog.Options{
		BaseURL: a.cfg.Catalog.BaseURL,
		APIKey:  a.cfg.Catalog.APIKey,
		Timeout: a.cfg.Catalog.Timeout,
	})
}

// repositories opens the store and builds both repositories.
func (a *app) repositories(ctx context.Context) (*repository.Games, *repository.Users, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	hasher, err := auth.NewHasher(a.cfg.Auth.PasswordHash, a.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, nil, err
	}
	games := repository.NewGames(a.catalogClient(), store, repository.GamesOptions{
		PageSize: a.cfg.GetPageSize(),
		Ordering: a.cfg.Catalog.Ordering,
	})
	return games, repository.NewUsers(store, hasher), nil
}
