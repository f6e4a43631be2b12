package transaction

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/example/mpesa-tools/internal/normalize"
)

// Header names shared by the CSV and JSON export formats.
var fieldNames = []string{
	"Receipt No",
	"Completion Time",
	"Details",
	"Transaction Status",
	"Paid In",
	"Withdrawn",
	"Balance",
}

// record is the serialized shape of a Transaction. Numeric fields are
// plain decimal strings; absent values serialize as empty strings.
type record struct {
	ReceiptNo      string `json:"Receipt No"`
	CompletionTime string `json:"Completion Time"`
	Details        string `json:"Details"`
	Status         string `json:"Transaction Status"`
	PaidIn         string `json:"Paid In"`
	Withdrawn      string `json:"Withdrawn"`
	Balance        string `json:"Balance"`
}

func toRecord(t Transaction) record {
	r := record{
		ReceiptNo:      t.ReceiptNo,
		CompletionTime: t.CompletionTime.Format(TimeLayout),
		Details:        t.Details,
		Status:         t.Status,
	}
	if t.PaidIn != nil {
		r.PaidIn = t.PaidIn.String()
	}
	if t.Withdrawn != nil {
		r.Withdrawn = t.Withdrawn.String()
	}
	if t.Balance != nil {
		r.Balance = t.Balance.String()
	}
	return r
}

func fromRecord(r record) (Transaction, bool) {
	ct, err := parseCompletionTime(r.CompletionTime)
	if err != nil {
		return Transaction{}, false
	}
	return Transaction{
		ReceiptNo:      r.ReceiptNo,
		CompletionTime: ct,
		Details:        r.Details,
		Status:         r.Status,
		PaidIn:         normalize.Amount(r.PaidIn),
		Withdrawn:      normalize.Amount(r.Withdrawn),
		Balance:        normalize.Amount(r.Balance),
	}, true
}

func parseCompletionTime(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized completion time %q", s)
}

// WriteCSV writes the transactions as delimited text with the canonical
// header row.
func WriteCSV(w io.Writer, txns []Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fieldNames); err != nil {
		return err
	}
	for _, t := range txns {
		r := toRecord(t)
		row := []string{r.ReceiptNo, r.CompletionTime, r.Details, r.Status, r.PaidIn, r.Withdrawn, r.Balance}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the transactions as an indented JSON array using the
// canonical field names.
func WriteJSON(w io.Writer, txns []Transaction) error {
	records := make([]record, 0, len(txns))
	for _, t := range txns {
		records = append(records, toRecord(t))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// Read decodes transactions from either a JSON array or a delimited table
// with a header row. JSON is attempted first; anything that is not valid
// JSON falls back to CSV. Records whose completion time does not parse
// are dropped.
func Read(data []byte) (List, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var list List
	var records []record
	if err := json.Unmarshal(data, &records); err == nil {
		for _, r := range records {
			if t, ok := fromRecord(r); ok {
				list.Add(t)
			}
		}
		return list, nil
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return List{}, fmt.Errorf("failed to parse transaction input: %w", err)
	}
	if len(rows) == 0 {
		return List{}, nil
	}

	index := map[string]int{}
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	for _, row := range rows[1:] {
		r := record{
			ReceiptNo:      cell(row, "Receipt No"),
			CompletionTime: cell(row, "Completion Time"),
			Details:        cell(row, "Details"),
			Status:         cell(row, "Transaction Status"),
			PaidIn:         cell(row, "Paid In"),
			Withdrawn:      cell(row, "Withdrawn"),
			Balance:        cell(row, "Balance"),
		}
		if t, ok := fromRecord(r); ok {
			list.Add(t)
		}
	}
	return list, nil
}

// ReadFile reads transactions from a CSV or JSON file on disk.
func ReadFile(path string) (List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return List{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Read(data)
}
