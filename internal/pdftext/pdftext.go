// Package pdftext recovers table rows from M-PESA PDF statements. It is
// the collaborator boundary in front of the extraction core: the core
// consumes the recovered rows as opaque cell text and never touches the
// PDF itself.
package pdftext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

// Marker identifying pages that carry the transaction table.
const tableMarker = "Receipt No"

// Geometry thresholds for grouping positioned text runs, in points.
// Runs on the same baseline belong to one row; a wide horizontal gap
// starts a new cell, a narrow one a new word.
const (
	rowTolerance = 2.0
	cellGap      = 14.0
	wordGap      = 1.5
)

// Rows extracts table rows from every transaction page of the statement.
// Pages without the table marker are skipped. Recovery is best-effort:
// the downstream extractor discards rows that do not look like
// transactions.
func Rows(path string) ([][]string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}

	var rows [][]string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageRows := clusterRows(page.Content().Text)
		if !containsMarker(pageRows) {
			continue
		}
		rows = append(rows, pageRows...)
	}
	return rows, nil
}

func containsMarker(rows [][]string) bool {
	for _, row := range rows {
		if strings.Contains(strings.Join(row, " "), tableMarker) {
			return true
		}
	}
	return false
}

// clusterRows groups positioned text runs into rows by baseline and
// splits each row into cells on horizontal gaps.
func clusterRows(texts []pdf.Text) [][]string {
	if len(texts) == 0 {
		return nil
	}

	// PDF origin is bottom-left: higher Y means earlier on the page.
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if diff := sorted[i].Y - sorted[j].Y; diff > rowTolerance || diff < -rowTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]string
	var line []pdf.Text
	flush := func() {
		if len(line) > 0 {
			rows = append(rows, splitCells(line))
			line = nil
		}
	}
	for _, t := range sorted {
		if len(line) > 0 && line[0].Y-t.Y > rowTolerance {
			flush()
		}
		line = append(line, t)
	}
	flush()
	return rows
}

func splitCells(line []pdf.Text) []string {
	var cells []string
	var cell strings.Builder
	prevEnd := 0.0

	for i, t := range line {
		if i > 0 {
			gap := t.X - prevEnd
			switch {
			case gap > cellGap:
				cells = append(cells, strings.TrimSpace(cell.String()))
				cell.Reset()
			case gap > wordGap:
				cell.WriteByte(' ')
			}
		}
		cell.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	if cell.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cell.String()))
	}
	return cells
}
