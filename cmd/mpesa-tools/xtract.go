package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/mpesa-tools/internal/extract"
	"github.com/example/mpesa-tools/internal/logger"
	"github.com/example/mpesa-tools/internal/pdftext"
)

var (
	xtractFormat  string
	xtractOutput  string
	xtractSummary bool
)

var xtractCmd = &cobra.Command{
	Use:   "xtract <statement.pdf>",
	Short: "Extract transactions from an M-PESA PDF statement",
	Args:  cobra.ExactArgs(1),
	RunE:  runXtract,
}

func init() {
	xtractCmd.Flags().StringVarP(&xtractFormat, "format", "f", "csv", "output format: csv or json")
	xtractCmd.Flags().StringVarP(&xtractOutput, "output", "o", "", "output file path (default: input file with swapped extension)")
	xtractCmd.Flags().BoolVarP(&xtractSummary, "summary", "s", false, "show conversion summary")
	rootCmd.AddCommand(xtractCmd)
}

func runXtract(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if xtractFormat != "csv" && xtractFormat != "json" {
		return fmt.Errorf("unsupported format '%s', use 'csv' or 'json'", xtractFormat)
	}

	rows, err := pdftext.Rows(inputPath)
	if err != nil {
		return err
	}

	list := extract.NewTableSource(rows, logger.New()).Transactions()
	if list.Total == 0 {
		return fmt.Errorf("no transactions found in %s", inputPath)
	}

	outputPath := xtractOutput
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, xtractFormat)
	}
	if err := writeTransactions(outputPath, xtractFormat, list.Transactions); err != nil {
		return err
	}
	fmt.Printf("Successfully converted %d transactions to %s\n", list.Total, outputPath)

	if xtractSummary {
		fmt.Println("\nConversion Summary:")
		fmt.Printf("Total Transactions: %d\n", list.Total)
		fmt.Printf("Total Deposits: %s\n", list.TotalPaidIn().StringFixed(2))
		fmt.Printf("Total Withdrawals: %s\n", list.TotalWithdrawn().StringFixed(2))
	}
	return nil
}
