// Package ledger turns classified transactions into a daily-grouped
// plain-text ledger with running balance assertions.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/mpesa-tools/internal/classify"
	"github.com/example/mpesa-tools/pkg/transaction"
)

const (
	// AssetAccount is the single asset account all postings settle
	// against.
	AssetAccount = "Assets:Checking:Mpesa"

	// Currency is the fixed posting currency suffix.
	Currency = "KES"
)

// Posting is one classified transaction inside a day bucket.
type Posting struct {
	Account string
	Amount  decimal.Decimal
	Details string
	Balance decimal.Decimal
	Time    time.Time
}

// Day is a date bucket of postings in completion-time order. The
// closing balance of the day is the balance of the last posting.
type Day struct {
	Date     string
	Postings []Posting
}

// ClosingBalance returns the balance of the chronologically last
// posting of the day.
func (d Day) ClosingBalance() decimal.Decimal {
	if len(d.Postings) == 0 {
		return decimal.Zero
	}
	return d.Postings[len(d.Postings)-1].Balance
}

// Build filters, classifies and buckets transactions by calendar date.
// A transaction is kept when its status is Completed and its date falls
// inside [startDate, endDate]; an empty endDate leaves the upper end
// unbounded. Dates are YYYY-MM-DD strings, so string comparison is
// chronological. Within each day, postings keep completion-time order
// with input order breaking ties.
func Build(txns []transaction.Transaction, engine *classify.Engine, startDate, endDate string) []Day {
	buckets := make(map[string][]Posting)
	for _, t := range txns {
		date := t.Date()
		if date < startDate {
			continue
		}
		if endDate != "" && date > endDate {
			continue
		}
		if !t.Completed() {
			continue
		}

		amount := t.Amount()
		buckets[date] = append(buckets[date], Posting{
			Account: engine.Classify(t.Details, amount),
			Amount:  amount,
			Details: t.Details,
			Balance: t.BalanceValue(),
			Time:    t.CompletionTime,
		})
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		postings := buckets[date]
		sort.SliceStable(postings, func(i, j int) bool {
			return postings[i].Time.Before(postings[j].Time)
		})
		days = append(days, Day{Date: date, Postings: postings})
	}
	return days
}

// Render emits the ledger text: one block per day in ascending date
// order. Outbound amounts post positive under Expenses accounts; every
// other account posts the negated amount against the single asset
// account. The final posting of each day carries the day's closing
// balance as a trailing assertion comment.
func Render(days []Day) string {
	var b strings.Builder
	for _, day := range days {
		fmt.Fprintf(&b, "%s *\n", day.Date)
		fmt.Fprintf(&b, "    %s\n", AssetAccount)

		for i, p := range day.Postings {
			amount := p.Amount
			if !strings.HasPrefix(p.Account, "Expenses") {
				amount = amount.Neg()
			}
			fmt.Fprintf(&b, "    %-45s %15s %s ; %s", p.Account, amount.StringFixed(2), Currency, p.Details)
			if i == len(day.Postings)-1 {
				fmt.Fprintf(&b, " BAL %s %s", Currency, p.Balance.StringFixed(2))
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Generate builds and renders in one pass, returning the ledger text and
// the number of postings. A zero count is the distinct empty-result
// outcome: no text, nothing to write, not an error.
func Generate(txns []transaction.Transaction, engine *classify.Engine, startDate, endDate string) (string, int) {
	days := Build(txns, engine, startDate, endDate)
	count := 0
	for _, d := range days {
		count += len(d.Postings)
	}
	if count == 0 {
		return "", 0
	}
	return Render(days), count
}
