package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/mpesa-tools/internal/classify"
	"github.com/example/mpesa-tools/internal/config"
	"github.com/example/mpesa-tools/internal/ledger"
	"github.com/example/mpesa-tools/internal/logger"
	"github.com/example/mpesa-tools/pkg/transaction"
)

var (
	ledgerfyConfig string
	ledgerfyOutput string
	ledgerfyStart  string
	ledgerfyEnd    string
)

var ledgerfyCmd = &cobra.Command{
	Use:   "ledgerfy <transactions.csv|transactions.json>",
	Short: "Convert extracted transactions to Ledger format",
	Long: `Classifies each transaction against the configured rule set and writes
a plain-text ledger grouped by day, with the day's closing balance
asserted on the last posting of each date.`,
	Args: cobra.ExactArgs(1),
	RunE: runLedgerfy,
}

func init() {
	ledgerfyCmd.Flags().StringVar(&ledgerfyConfig, "config", "", "path to the rule configuration file (default: per-user config dir)")
	ledgerfyCmd.Flags().StringVarP(&ledgerfyOutput, "output", "o", "", "output ledger file path (default: <input>.dat)")
	ledgerfyCmd.Flags().StringVarP(&ledgerfyStart, "start-date", "s", fmt.Sprintf("%d-01-01", time.Now().Year()), "start date (YYYY-MM-DD)")
	ledgerfyCmd.Flags().StringVarP(&ledgerfyEnd, "end-date", "e", "", "end date (YYYY-MM-DD), unbounded when empty")
	rootCmd.AddCommand(ledgerfyCmd)
}

func runLedgerfy(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	configPath := ledgerfyConfig
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	if err := config.EnsureDefault(configPath); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	fmt.Printf("Configuration validated: %d accounts, %d rules\n", len(cfg.Accounts), len(cfg.Rules))

	list, err := transaction.ReadFile(inputPath)
	if err != nil {
		return err
	}

	engine := classify.New(cfg, logger.New())
	text, count := ledger.Generate(list.Transactions, engine, ledgerfyStart, ledgerfyEnd)
	if count == 0 {
		fmt.Printf("No transactions found in the date range: %s to %s\n", ledgerfyStart, endOrDefault(ledgerfyEnd))
		return nil
	}

	outputPath := ledgerfyOutput
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, "dat")
	}
	if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	fmt.Printf("Generated ledger file: %s\n", outputPath)
	fmt.Printf("Processed %d transactions from %s to %s\n", count, ledgerfyStart, endOrDefault(ledgerfyEnd))
	return nil
}

func endOrDefault(end string) string {
	if end == "" {
		return "end of data"
	}
	return end
}
