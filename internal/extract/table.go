package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/mpesa-tools/internal/normalize"
	"github.com/example/mpesa-tools/pkg/transaction"
)

// Tokens appearing in the repeated per-page table header rows.
var headerTokens = []string{
	"receipt",
	"completion",
	"details",
	"transaction",
	"paid",
	"withdrawn",
	"balance",
}

// Markers identifying disclaimer and footer rows.
var footerMarkers = []string{
	"Disclaimer",
	"Verification",
	"For self-help",
	"Page",
}

// TableSource extracts transactions from table rows recovered from a PDF
// statement. Each row is an ordered list of cell strings; the seven
// leading cells map positionally to the canonical fields.
type TableSource struct {
	Rows [][]string

	log zerolog.Logger
}

// NewTableSource returns a TableSource over the given rows, logging
// skipped rows to log.
func NewTableSource(rows [][]string, log zerolog.Logger) *TableSource {
	return &TableSource{Rows: rows, log: log}
}

// Transactions converts the rows into canonical records. Header rows,
// footer rows and malformed rows are skipped with a diagnostic; a bad
// row never aborts the batch.
func (s *TableSource) Transactions() transaction.List {
	var list transaction.List
	for _, row := range s.Rows {
		if len(row) < 7 {
			continue
		}
		if isHeaderRow(row) || isFooterRow(row) {
			continue
		}
		t, ok := s.parseRow(row)
		if !ok {
			s.log.Debug().Strs("row", row).Msg("skipping malformed table row")
			continue
		}
		list.Add(t)
	}
	return list
}

func (s *TableSource) parseRow(row []string) (transaction.Transaction, bool) {
	receiptNo := normalize.Text(row[0])
	completionTime := normalize.Text(row[1])
	if receiptNo == "" || completionTime == "" {
		return transaction.Transaction{}, false
	}

	ct, err := parseCompletionTime(completionTime)
	if err != nil {
		return transaction.Transaction{}, false
	}

	status := normalize.Text(row[3])
	if status == "" {
		status = "Completed"
	}

	withdrawn := normalize.Amount(row[5])
	if withdrawn != nil && withdrawn.IsNegative() {
		abs := withdrawn.Abs()
		withdrawn = &abs
	}

	return transaction.Transaction{
		ReceiptNo:      receiptNo,
		CompletionTime: ct,
		Details:        normalize.Text(row[2]),
		Status:         status,
		PaidIn:         normalize.Amount(row[4]),
		Withdrawn:      withdrawn,
		Balance:        normalize.Amount(row[6]),
	}, true
}

func parseCompletionTime(s string) (time.Time, error) {
	for _, layout := range []string{transaction.TimeLayout, "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized completion time %q", s)
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		lower := strings.ToLower(cell)
		if lower == "" {
			continue
		}
		for _, token := range headerTokens {
			if strings.Contains(lower, token) {
				return true
			}
		}
	}
	return false
}

func isFooterRow(row []string) bool {
	for _, cell := range row {
		if cell == "" {
			continue
		}
		for _, marker := range footerMarkers {
			if strings.Contains(cell, marker) {
				return true
			}
		}
	}
	return false
}
