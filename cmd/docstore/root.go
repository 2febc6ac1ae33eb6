package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viant/docstore/config"
	"github.com/viant/docstore/embedding"
	"github.com/viant/docstore/repository"
	"github.com/viant/docstore/store"
)

type globalFlags struct {
	configPath string
	dsn        string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "docstore",
		Short:         "Semantic document store",
		Long:          `Ingest content, then search it by meaning with optional metadata filters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "docstore.yaml", "config file path")
	root.PersistentFlags().StringVar(&flags.dsn, "dsn", "", "repository DSN (overrides config)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newIngestCmd(flags),
		newSearchCmd(flags),
		newRemoveCmd(flags),
		newStatsCmd(flags),
	)
	return root
}

// app bundles what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
}

func openApp(ctx context.Context, cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dsn != "" {
		cfg.Store.DSN = flags.dsn
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg.Log, cmd.ErrOrStderr())

	repo, err := repository.Open(ctx, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	s := store.New(
		store.WithDimension(cfg.Store.Dimension),
		store.WithRepository(repo),
		store.WithLogger(logger),
	)
	if _, err := s.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: s}, nil
}

func (a *app) Close() error { return a.store.Close() }

func (a *app) embedder() (embedding.Embedder, error) {
	e := a.cfg.Embedder
	keyEnv := e.APIKeyEnv
	if strings.EqualFold(e.Type, "ollama") {
		keyEnv = ""
	}
	return embedding.NewOpenAI(embedding.OpenAIConfig{
		BaseURL:    e.BaseURL,
		APIKeyEnv:  keyEnv,
		Model:      e.Model,
		Timeout:    e.Timeout(),
		MaxRetries: e.MaxRetries,
	})
}
