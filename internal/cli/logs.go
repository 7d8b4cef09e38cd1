package cli

import (
	"fmt"

	"formfill/internal/audit"
	"formfill/internal/common"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Manage interaction log records",
	Long: `Inspect and manage the interaction log records written by the answer
endpoint. Records are stored as flat JSON files in the configured directory.`,
}

var logsConfig common.CommandConfig

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interaction log records",
	RunE:  runLogsList,
}

var logsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a single interaction log record",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogsShow,
}

var logsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a single interaction log record",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogsDelete,
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all interaction log records",
	RunE:  runLogsClear,
}

func init() {
	logsCmd.PersistentFlags().StringVarP(&logsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	logsCmd.PersistentFlags().StringVar(&logsConfig.OutputFormat, "format", "json", "Output format: json")

	logsCmd.AddCommand(logsListCmd)
	logsCmd.AddCommand(logsShowCmd)
	logsCmd.AddCommand(logsDeleteCmd)
	logsCmd.AddCommand(logsClearCmd)
}

// openStore opens the interaction log store from the loaded configuration.
func openStore(cmd *cobra.Command) (*audit.Store, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	store, err := audit.NewStore(cfg.Audit.Dir, cfg.Audit.Enabled, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open interaction log store: %w", err)
	}
	if !store.Enabled() {
		return nil, fmt.Errorf("interaction logging is disabled (set audit.enabled in config)")
	}
	return store, nil
}

func runLogsList(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	records, stats, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list interaction log records: %w", err)
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(map[string]any{
		"counts":  stats,
		"records": records,
	}, logsConfig)
}

func runLogsShow(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	record, err := store.Read(args[0])
	if err != nil {
		return fmt.Errorf("failed to read interaction log record: %w", err)
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(record, logsConfig)
}

func runLogsDelete(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	if err := store.Delete(args[0]); err != nil {
		return fmt.Errorf("failed to delete interaction log record: %w", err)
	}

	logger.Info("Interaction log record deleted", "id", args[0])
	return nil
}

func runLogsClear(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	deleted, err := store.DeleteAll()
	if err != nil {
		return fmt.Errorf("failed to delete interaction log records: %w", err)
	}

	logger.Info("Interaction log records deleted", "count", deleted)
	fmt.Printf("Deleted %d interaction log records\n", deleted)
	return nil
}
