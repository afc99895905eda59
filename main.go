package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagSheet     string
	flagModel     string
	flagURLColumn string
	flagBatchSize int
	flagFields    []string
	flagConfig    string
	flagVerbose   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "oppfill [table-file]",
	Short: "Backfill an academic-opportunity table using an LLM",
	Long: `oppfill selects unprocessed rows from a spreadsheet, fetches each row's
source document (web page or PDF), asks a language model to extract the
configured fields, normalizes the values and writes them back.

Rows fail in isolation: a failed fetch or model call is recorded in the
row's Error column and the run continues with the next row.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if flagVerbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigExists(); err != nil {
			return fmt.Errorf("ensuring config exists: %w", err)
		}

		settingsPath := flagConfig
		if settingsPath == "" {
			settingsPath = getConfigPath("settings.yaml")
		}
		settings, err := loadSettings(settingsPath)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		applyFlagOverrides(cmd, settings, args)

		return run(settings)
	},
	SilenceUsage: true,
}

// applyFlagOverrides lets flags win over the settings file.
func applyFlagOverrides(cmd *cobra.Command, settings *Settings, args []string) {
	if len(args) > 0 {
		settings.TablePath = args[0]
	}
	if cmd.Flags().Changed("sheet") {
		settings.SheetName = flagSheet
	}
	if cmd.Flags().Changed("model") {
		settings.LLM.Model = flagModel
	}
	if cmd.Flags().Changed("url-column") {
		settings.URLColumn = flagURLColumn
	}
	if cmd.Flags().Changed("batch-size") {
		settings.BatchSize = flagBatchSize
	}
}

func run(settings *Settings) error {
	workbook, err := OpenWorkbook(settings.TablePath, settings.SheetName, logger)
	if err != nil {
		return fmt.Errorf("opening table: %w", err)
	}
	defer workbook.Close()

	client, err := NewLLMClient(settings.LLM)
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}

	fetcher := NewContentFetcher(time.Duration(settings.FetchTimeoutSeconds)*time.Second, logger)
	processor := NewProcessor(workbook, fetcher, client, settings, flagFields, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := processor.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}

func init() {
	rootCmd.Flags().StringVar(&flagSheet, "sheet", "Unfilled", "Sheet name inside the table file")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "Model identifier")
	rootCmd.Flags().StringVar(&flagURLColumn, "url-column", "Source", "Column holding the source URL")
	rootCmd.Flags().IntVar(&flagBatchSize, "batch-size", 10, "Rows to process between pauses")
	rootCmd.Flags().StringSliceVar(&flagFields, "fields", nil, "Fields to extract (default: all non-control columns)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to settings file")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
