package transaction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the canonical completion-time format used by M-PESA
// statement exports.
const TimeLayout = "2006-01-02 15:04:05"

// Transaction represents a single M-PESA transaction in canonical form.
// PaidIn, Withdrawn and Balance are nil when the source carried no value
// for the column; a transaction is either inbound (PaidIn) or outbound
// (Withdrawn), never both.
type Transaction struct {
	ReceiptNo      string
	CompletionTime time.Time
	Details        string
	Status         string
	PaidIn         *decimal.Decimal
	Withdrawn      *decimal.Decimal
	Balance        *decimal.Decimal
}

// Amount returns the transacted amount: paid-in if positive, otherwise
// the withdrawn value. Absent columns count as zero.
func (t Transaction) Amount() decimal.Decimal {
	if t.PaidIn != nil && t.PaidIn.IsPositive() {
		return *t.PaidIn
	}
	if t.Withdrawn != nil {
		return *t.Withdrawn
	}
	return decimal.Zero
}

// BalanceValue returns the closing balance, or zero when absent.
func (t Transaction) BalanceValue() decimal.Decimal {
	if t.Balance != nil {
		return *t.Balance
	}
	return decimal.Zero
}

// Completed reports whether the transaction status is "Completed",
// case-insensitively.
func (t Transaction) Completed() bool {
	return strings.EqualFold(t.Status, "Completed")
}

// Date returns the calendar-date bucket key (YYYY-MM-DD) of the
// completion time.
func (t Transaction) Date() string {
	return t.CompletionTime.Format("2006-01-02")
}

// List holds a collection of transactions.
type List struct {
	Transactions []Transaction
	Total        int
}

// Add appends a transaction to the list.
func (l *List) Add(t Transaction) {
	l.Transactions = append(l.Transactions, t)
	l.Total = len(l.Transactions)
}

// Append appends several transactions to the list.
func (l *List) Append(ts ...Transaction) {
	l.Transactions = append(l.Transactions, ts...)
	l.Total = len(l.Transactions)
}

// TotalPaidIn sums the paid-in column over the list.
func (l *List) TotalPaidIn() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range l.Transactions {
		if t.PaidIn != nil {
			sum = sum.Add(*t.PaidIn)
		}
	}
	return sum
}

// TotalWithdrawn sums the withdrawn column over the list.
func (l *List) TotalWithdrawn() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range l.Transactions {
		if t.Withdrawn != nil {
			sum = sum.Add(*t.Withdrawn)
		}
	}
	return sum
}
