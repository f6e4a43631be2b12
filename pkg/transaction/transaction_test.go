package transaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestTransaction_Amount(t *testing.T) {
	inbound := Transaction{PaidIn: dec("1000"), Balance: dec("1800")}
	assert.Equal(t, "1000", inbound.Amount().String())

	outbound := Transaction{Withdrawn: dec("200"), Balance: dec("800")}
	assert.Equal(t, "200", outbound.Amount().String())

	zeroPaidIn := Transaction{PaidIn: dec("0"), Withdrawn: dec("45")}
	assert.Equal(t, "45", zeroPaidIn.Amount().String())

	empty := Transaction{}
	assert.True(t, empty.Amount().IsZero())
}

func TestTransaction_Completed(t *testing.T) {
	assert.True(t, Transaction{Status: "Completed"}.Completed())
	assert.True(t, Transaction{Status: "COMPLETED"}.Completed())
	assert.True(t, Transaction{Status: "completed"}.Completed())
	assert.False(t, Transaction{Status: "Failed"}.Completed())
	assert.False(t, Transaction{}.Completed())
}

func TestTransaction_Date(t *testing.T) {
	tx := Transaction{CompletionTime: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)}
	assert.Equal(t, "2024-03-01", tx.Date())
}

func TestList_Add(t *testing.T) {
	var list List
	list.Add(Transaction{ReceiptNo: "A", PaidIn: dec("100")})
	list.Add(Transaction{ReceiptNo: "B", Withdrawn: dec("40")})
	list.Append(Transaction{ReceiptNo: "C", Withdrawn: dec("10")})

	assert.Equal(t, 3, list.Total)
	assert.Equal(t, "100", list.TotalPaidIn().String())
	assert.Equal(t, "50", list.TotalWithdrawn().String())
}
