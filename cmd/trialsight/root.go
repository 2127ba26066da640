package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trialsight/internal/app"
	"trialsight/internal/audit"
	"trialsight/internal/catalog"
	"trialsight/internal/config"
	"trialsight/internal/genai"
	"trialsight/internal/logging"
	"trialsight/internal/store"
)

var (
	// Global flags
	configPath string
	trialID    string
	verbose    bool

	// Wired in PersistentPreRunE
	cfg    *config.Config
	core   *app.App
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trialsight",
	Short: "TrialSight - AI-assisted clinical trial operations",
	Long: `TrialSight manages per-trial operational state for clinical trial teams:
task boards, eTMF documents, site messages, and a full audit trail, augmented
with AI document analysis, risk simulation, and a conversational assistant.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := logging.Initialize(cfg.Logging.Dir, cfg.Logging.Debug, cfg.Logging.Level); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}

		core, err = buildApp(cmd.Context())
		if err != nil {
			return err
		}
		if trialID != "" {
			if err := core.SelectTrial(trialID); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func buildApp(ctx context.Context) (*app.App, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	st := store.New()
	st.Seed(store.Fixtures())

	var client genai.Client
	if cfg.LLM.APIKey == "" {
		logger.Warn("no API key configured; AI operations will be unavailable")
		client = genai.Unconfigured()
	} else {
		client, err = genai.New(ctx, genai.Options{
			APIKey:    cfg.LLM.APIKey,
			FastModel: cfg.LLM.FastModel,
			DeepModel: cfg.LLM.DeepModel,
			Timeout:   cfg.LLMTimeout(),
		})
		if err != nil {
			return nil, err
		}
	}

	return app.New(cat, st, audit.New(), client), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&trialID, "trial", "", "active trial id (defaults to the first catalog entry)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(trialsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(messagesCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(draftEmailCmd)
	rootCmd.AddCommand(auditCmd)
}
