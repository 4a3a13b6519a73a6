// Package cli wires the pantrysync commands. Each command builds the full
// engine (local store, remote document store, syncer, registry service) from
// configuration, runs one operation, and exits; the durable state lives in
// sqlite, not in the process.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vbonduro/pantrysync/internal/auth"
	"github.com/vbonduro/pantrysync/internal/config"
	"github.com/vbonduro/pantrysync/internal/db"
	"github.com/vbonduro/pantrysync/internal/docstore"
	fsdocs "github.com/vbonduro/pantrysync/internal/docstore/fs"
	s3docs "github.com/vbonduro/pantrysync/internal/docstore/s3"
	"github.com/vbonduro/pantrysync/internal/docstore/webapi"
	"github.com/vbonduro/pantrysync/internal/logging"
	"github.com/vbonduro/pantrysync/internal/service"
	"github.com/vbonduro/pantrysync/internal/state"
	"github.com/vbonduro/pantrysync/internal/sync"
)

// RootOptions holds global flags and state shared by all commands.
type RootOptions struct {
	ConfigPath string

	Config *config.Config
	Logger *slog.Logger

	logCleanup func()
}

// NewRootCommand creates the root command for the pantrysync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "pantrysync",
		Short:         "Local-first ingredient registry with remote sync",
		Long:          "pantrysync keeps a local registry of ingredient categories and ingredients,\nusable offline, and reconciles it against a single remote JSON document.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if opts.ConfigPath != "" {
				loaded, err := config.LoadFile(opts.ConfigPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			opts.Config = cfg

			logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.Logger = logger
			opts.logCleanup = cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logCleanup != nil {
				opts.logCleanup()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	cmd.AddCommand(NewCategoryCommand(opts))
	cmd.AddCommand(NewIngredientCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewPullCommand(opts))
	cmd.AddCommand(NewPushCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

// newService wires the engine from configuration. The returned cleanup func
// closes the local database.
func newService(ctx context.Context, opts *RootOptions) (*service.RegistryService, func(), error) {
	cfg := opts.Config

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(); err != nil {
			opts.Logger.Error("failed to close database", "error", err)
		}
	}

	docs, err := newDocStore(ctx, opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	states := state.NewStore(database)
	syncer := sync.NewSyncer(states, docs, cfg.Registry, cfg.FolderID, opts.Logger)
	svc := service.NewRegistryService(states, syncer, cfg.Registry, opts.Logger)
	return svc, cleanup, nil
}

func newDocStore(ctx context.Context, opts *RootOptions) (docstore.Store, error) {
	cfg := opts.Config
	switch cfg.RemoteBackend {
	case "fs":
		return fsdocs.New(cfg.RemotePath)
	case "s3":
		return s3docs.OpenFromEnv(ctx)
	case "webapi":
		if cfg.APIBaseURL == "" {
			return nil, fmt.Errorf("PANTRYSYNC_API_BASE_URL is required when remote backend is webapi")
		}
		var tokens auth.TokenProvider
		if cfg.APITokenEnv != "" {
			tokens = auth.NewEnvProvider(cfg.APITokenEnv)
		} else {
			tokens = auth.NewStatic(cfg.APIToken)
		}
		return webapi.New(cfg.APIBaseURL, tokens), nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.RemoteBackend)
	}
}
