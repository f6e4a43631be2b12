package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mpesa-tools/internal/classify"
	"github.com/example/mpesa-tools/internal/config"
	"github.com/example/mpesa-tools/pkg/transaction"
)

func testEngine() *classify.Engine {
	cfg := &config.Config{
		Accounts:       []string{"Expenses:Food", "Income:Salary", "Expenses:Misc"},
		DefaultAccount: "Expenses:Misc",
		Rules: []config.Rule{
			{Account: "Expenses:Food", Keywords: []string{"food"}},
			{Account: "Income:Salary", Keywords: []string{"salary"}},
		},
	}
	return classify.New(cfg, zerolog.Nop())
}

func dec(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func tx(ts string, details string, paidIn, withdrawn, balance string) transaction.Transaction {
	t, err := time.Parse(transaction.TimeLayout, ts)
	if err != nil {
		panic(err)
	}
	out := transaction.Transaction{
		ReceiptNo:      "RCPT123456",
		CompletionTime: t,
		Details:        details,
		Status:         "Completed",
		Balance:        dec(balance),
	}
	if paidIn != "" {
		out.PaidIn = dec(paidIn)
	}
	if withdrawn != "" {
		out.Withdrawn = dec(withdrawn)
	}
	return out
}

func TestGenerate_DailyBlockWithClosingBalance(t *testing.T) {
	txns := []transaction.Transaction{
		{ReceiptNo: "A", CompletionTime: mustTime("2024-03-01 09:00:00"), Details: "food kiosk", Status: "Completed", Withdrawn: dec("200"), Balance: dec("800")},
		{ReceiptNo: "B", CompletionTime: mustTime("2024-03-01 14:00:00"), Details: "salary advance", Status: "Completed", PaidIn: dec("1000"), Balance: dec("1800")},
	}

	text, count := Generate(txns, testEngine(), "2024-03-01", "")
	require.Equal(t, 2, count)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "2024-03-01 *", lines[0])
	assert.Equal(t, "    Assets:Checking:Mpesa", lines[1])

	assert.Contains(t, lines[2], "Expenses:Food")
	assert.Contains(t, lines[2], "200.00 KES ; food kiosk")
	assert.NotContains(t, lines[2], "BAL")

	assert.Contains(t, lines[3], "Income:Salary")
	assert.Contains(t, lines[3], "-1000.00 KES ; salary advance")
	assert.True(t, strings.HasSuffix(lines[3], "BAL KES 1800.00"))

	// Blank separator line terminates the date block.
	assert.True(t, strings.HasSuffix(text, "\n\n"))
}

func TestRender_AmountSignConvention(t *testing.T) {
	days := []Day{{
		Date: "2024-03-01",
		Postings: []Posting{
			{Account: "Expenses:Food", Amount: *dec("450.00"), Details: "lunch", Balance: *dec("100")},
			{Account: "Income:Salary", Amount: *dec("50000.00"), Details: "pay", Balance: *dec("50100")},
		},
	}}
	text := Render(days)
	assert.Contains(t, text, " 450.00 KES ; lunch")
	assert.Contains(t, text, "-50000.00 KES ; pay")
}

func TestBuild_FiltersStatusAndDateRange(t *testing.T) {
	failed := tx("2024-03-01 10:00:00", "food", "", "100", "900")
	failed.Status = "Failed"

	txns := []transaction.Transaction{
		failed,
		tx("2024-02-28 10:00:00", "food before range", "", "50", "950"),
		tx("2024-03-01 11:00:00", "food in range", "", "75", "875"),
		tx("2024-03-05 09:00:00", "food at end", "", "25", "850"),
		tx("2024-03-06 09:00:00", "food after range", "", "30", "820"),
	}

	days := Build(txns, testEngine(), "2024-03-01", "2024-03-05")
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Date)
	require.Len(t, days[0].Postings, 1)
	assert.Equal(t, "food in range", days[0].Postings[0].Details)
	assert.Equal(t, "2024-03-05", days[1].Date)
}

func TestBuild_StatusCaseInsensitive(t *testing.T) {
	lower := tx("2024-03-01 10:00:00", "food", "", "100", "900")
	lower.Status = "COMPLETED"
	days := Build([]transaction.Transaction{lower}, testEngine(), "2024-03-01", "")
	require.Len(t, days, 1)
}

func TestBuild_IntraDayOrderingStable(t *testing.T) {
	txns := []transaction.Transaction{
		tx("2024-03-01 14:00:00", "second", "", "10", "90"),
		tx("2024-03-01 09:00:00", "first", "", "10", "100"),
		tx("2024-03-01 14:00:00", "third", "", "10", "80"),
	}
	days := Build(txns, testEngine(), "2024-03-01", "")
	require.Len(t, days, 1)
	require.Len(t, days[0].Postings, 3)
	assert.Equal(t, "first", days[0].Postings[0].Details)
	assert.Equal(t, "second", days[0].Postings[1].Details)
	assert.Equal(t, "third", days[0].Postings[2].Details)
	assert.Equal(t, "80", days[0].ClosingBalance().String())
}

func TestBuild_DateBlocksAscending(t *testing.T) {
	txns := []transaction.Transaction{
		tx("2024-03-03 10:00:00", "later", "", "10", "70"),
		tx("2024-03-01 10:00:00", "earlier", "", "10", "90"),
	}
	days := Build(txns, testEngine(), "2024-01-01", "")
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Date)
	assert.Equal(t, "2024-03-03", days[1].Date)
}

func TestGenerate_EmptyResult(t *testing.T) {
	txns := []transaction.Transaction{
		tx("2024-03-01 10:00:00", "food", "", "100", "900"),
	}
	text, count := Generate(txns, testEngine(), "2025-01-01", "")
	assert.Equal(t, 0, count)
	assert.Equal(t, "", text)
}

func TestBuild_AmountDerivation(t *testing.T) {
	days := Build([]transaction.Transaction{
		tx("2024-03-01 10:00:00", "salary", "1000", "", "1800"),
		tx("2024-03-01 11:00:00", "food", "", "200", "1600"),
	}, testEngine(), "2024-03-01", "")
	require.Len(t, days, 1)
	assert.Equal(t, "1000", days[0].Postings[0].Amount.String())
	assert.Equal(t, "200", days[0].Postings[1].Amount.String())
}

func mustTime(s string) time.Time {
	t, err := time.Parse(transaction.TimeLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
