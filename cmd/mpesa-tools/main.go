package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/mpesa-tools/pkg/transaction"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mpesa-tools",
	Short: "Extract and categorize M-PESA transactions",
	Long: `M-Pesa Tools processes M-PESA PDF statements and SMS notifications,
extracts transaction data, categorizes transactions based on configurable
rules, and renders plain-text ledgers with daily closing balances.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("M-Pesa Tools v1.0.0")
		fmt.Println("Use --help for available commands")
	},
}

// defaultOutputPath swaps the input file's extension for the output
// format's.
func defaultOutputPath(inputPath, format string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + "." + format
}

// writeTransactions writes the records to path in the given format.
func writeTransactions(path, format string, txns []transaction.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	switch format {
	case "json":
		err = transaction.WriteJSON(f, txns)
	default:
		err = transaction.WriteCSV(f, txns)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
