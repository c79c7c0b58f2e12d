package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"autonotes/internal/config"
	"autonotes/internal/llm"
	"autonotes/internal/notes"
)

var (
	// configFile is set by the --config flag.
	configFile string
	verbose    bool

	// cfg and logger are initialized by PersistentPreRunE.
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "autonotes",
	Short: "AutoNotes turns meeting transcripts into structured notes",
	Long: `AutoNotes accepts a raw meeting transcript, asks an LLM for a summary,
action items, decisions and keywords, validates the reply and stores the
resulting note. Running without a subcommand starts the HTTP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (settings also come from the environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initRuntime loads config and sets up the logger.
func initRuntime(cmd *cobra.Command, args []string) error {
	// Skip init for version command
	if cmd.Name() == "version" {
		return nil
	}

	v, err := config.New(configFile)
	if err != nil {
		return err
	}
	cfg, err = config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = newLogger(cfg.LogLevel, cfg.LogFormat, verbose)
	slog.SetDefault(logger)
	return nil
}

func newLogger(level, format string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newRepository builds the configured backend. It does not connect.
func newRepository(cfg *config.Config) notes.Repository {
	if cfg.StoreBackend == config.BackendSQLite {
		return notes.NewSQLiteRepo(cfg.SQLitePath)
	}
	return notes.NewRepo(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
}

func newGenerator(cfg *config.Config, log *slog.Logger) (*llm.Client, error) {
	provider, err := llm.NewProvider(cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMModel)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(provider, cfg.LLMAPIKey,
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithLogger(log),
	), nil
}

// openRepository connects eagerly so problems show up in the startup log.
// Failure is not fatal: the repository retries on first use.
func openRepository(ctx context.Context, repo notes.Repository, log *slog.Logger) {
	if err := repo.Open(ctx); err != nil {
		log.Warn("storage not available at startup", "error", err)
		return
	}
	if m, ok := repo.(*notes.Repo); ok {
		if err := m.EnsureIndexes(ctx); err != nil {
			log.Warn("failed to ensure indexes", "error", err)
		}
	}
}
