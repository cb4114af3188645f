package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spektr-org/statboard/config"
	"github.com/spektr-org/statboard/saved"
	"github.com/spektr-org/statboard/session"
	"github.com/spektr-org/statboard/source"
	"github.com/spektr-org/statboard/store"
)

// app carries what commands share: loaded config, logger and lazily built
// collaborators.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger

	st *store.Store
	db *saved.Store
}

func newRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	rootCmd := &cobra.Command{
		Use:   "statboard",
		Short: "statboard - statistics dashboard in the terminal",
		Long: `statboard charts the measures of a statistics dashboard.

Datasets come from the statistics API (--base-url) or from a directory of
JSON, YAML or CSV files named after the API datasets (--data-dir).`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel()}))
			if cfg.File != "" {
				a.logger.Debug("using config file", "path", cfg.File)
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./statboard.yaml)")
	pf.String("base-url", "", "Statistics API base URL")
	pf.String("data-dir", "", "Directory of dataset files (used without --base-url)")
	pf.String("saved-db", config.DefaultSavedDB, "Path to the saved graphs database")
	pf.String("locale", config.DefaultLocale, "Locale for sorting labels")
	pf.Int("top-n", config.DefaultTopN, "Labels checked by default per axis")
	pf.Duration("http-timeout", config.DefaultTimeout, "Statistics API request timeout")
	pf.String("listen", config.DefaultListen, "Address the server listens on")
	pf.String("share-base", "", "Origin used in share links")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.StringP("output", "o", config.DefaultOutput, "Output format (table|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newMeasuresCmd(a))
	rootCmd.AddCommand(newLabelsCmd(a))
	rootCmd.AddCommand(newChartCmd(a))
	rootCmd.AddCommand(newShareCmd(a))
	rootCmd.AddCommand(newSavedCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "statboard v%s\n", Version)
		},
	}
}

// ============================================================================
// COLLABORATORS
// ============================================================================

// store returns the data store over the configured source.
func (a *app) store() (*store.Store, error) {
	if a.st != nil {
		return a.st, nil
	}

	var src source.Source
	switch {
	case a.cfg.BaseURL != "":
		src = source.NewHTTP(source.HTTPConfig{
			BaseURL: a.cfg.BaseURL,
			Timeout: a.cfg.HTTPTimeout,
			Logger:  a.logger,
		})
	case a.cfg.DataDir != "":
		src = source.NewDir(a.cfg.DataDir, a.logger)
	default:
		return nil, errors.New("no data source: set --base-url or --data-dir")
	}

	a.st = store.New(store.Config{
		Source: src,
		Logger: a.logger.With(slog.String("module", "store")),
		Engine: a.cfg.EngineOptions(),
	})
	return a.st, nil
}

// session returns a fresh dashboard session.
func (a *app) session() (*session.Session, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	return session.New(session.Config{Store: st, Logger: a.logger, Engine: a.cfg.EngineOptions()}), nil
}

// saved opens the saved graphs database once.
func (a *app) saved() (*saved.Store, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := saved.Open(a.cfg.SavedDB, a.logger)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
