package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/mpesa-tools/internal/extract"
	"github.com/example/mpesa-tools/internal/logger"
)

var (
	smsFormat string
	smsOutput string
)

var smsCmd = &cobra.Command{
	Use:   "sms <messages-file>",
	Short: "Extract transactions from M-PESA SMS notifications",
	Long: `Reads a file of SMS message bodies and extracts the transactions they
describe. The file is either a JSON array of message objects with a
"body" field (the termux-sms-list shape) or plain text with one message
per line. Messages that match no known notification pattern are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSMS,
}

func init() {
	smsCmd.Flags().StringVarP(&smsFormat, "format", "f", "csv", "output format: csv or json")
	smsCmd.Flags().StringVarP(&smsOutput, "output", "o", "", "output file path (default: input file with swapped extension)")
	rootCmd.AddCommand(smsCmd)
}

func runSMS(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if smsFormat != "csv" && smsFormat != "json" {
		return fmt.Errorf("unsupported format '%s', use 'csv' or 'json'", smsFormat)
	}

	messages, err := readMessages(inputPath)
	if err != nil {
		return err
	}

	list := extract.NewSMSSource(messages, logger.New()).Transactions()
	if list.Total == 0 {
		return fmt.Errorf("no transactions found in %s", inputPath)
	}

	outputPath := smsOutput
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, smsFormat)
	}
	if err := writeTransactions(outputPath, smsFormat, list.Transactions); err != nil {
		return err
	}
	fmt.Printf("Successfully converted %d transactions to %s\n", list.Total, outputPath)
	return nil
}

// readMessages loads SMS bodies from a JSON array of message objects or
// from plain text, one message per line.
func readMessages(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		var entries []struct {
			Body string `json:"body"`
		}
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse message list %s: %w", path, err)
		}
		messages := make([]string, 0, len(entries))
		for _, e := range entries {
			messages = append(messages, e.Body)
		}
		return messages, nil
	}

	var messages []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			messages = append(messages, line)
		}
	}
	return messages, nil
}
