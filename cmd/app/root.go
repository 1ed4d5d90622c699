package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minhtt159/sheet-ingest/internal/config"
	"github.com/minhtt159/sheet-ingest/internal/logger"
	"github.com/minhtt159/sheet-ingest/internal/service"
	"github.com/minhtt159/sheet-ingest/internal/settings"
)

// app carries state shared by every command once the root pre-run finished.
type app struct {
	configPath   string
	settingsPath string
	envFiles     []string

	cfg    *config.Config
	logger *zap.Logger
	dial   service.Dialer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "sheet-ingest",
		Short:        "Push spreadsheet rows into a search cluster through the bulk API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to the YAML config file")
	flags.StringVar(&a.settingsPath, "settings", "", "path to the connection settings file (overrides settings.path)")
	flags.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files loaded before the config")

	root.AddCommand(
		newServeCmd(a),
		newPushCmd(a),
		newCheckCmd(a),
		newSettingsCmd(a),
		newHealthcheckCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	for _, f := range a.envFiles {
		// Missing dotenv files are normal outside development.
		_ = godotenv.Load(f)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if a.settingsPath != "" {
		cfg.Settings.Path = a.settingsPath
	}
	a.cfg = cfg

	log, err := logger.NewWithConfig(logger.Config{
		Level:            cfg.Logging.Level,
		Encoding:         cfg.Logging.Encoding,
		OutputPaths:      cfg.Logging.OutputPaths,
		ErrorOutputPaths: cfg.Logging.ErrorOutputPaths,
		Fields:           map[string]string{"command": cmd.Name()},
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.logger = log
	return nil
}

func (a *app) service() *service.Service {
	return service.New(
		settings.NewStore(a.cfg.Settings.Path),
		a.logger,
		service.Options{
			MaxBatchLines: a.cfg.Ingest.MaxBatchLines,
			DefaultType:   a.cfg.Ingest.DefaultType,
		},
		a.dial,
	)
}
