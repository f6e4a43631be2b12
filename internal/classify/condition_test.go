package classify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalCondition(t *testing.T, src string, amount string) bool {
	t.Helper()
	cond, err := parseCondition(src)
	require.NoError(t, err)
	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	got, err := cond.evaluate(d)
	require.NoError(t, err)
	return got
}

func TestCondition_Comparisons(t *testing.T) {
	assert.True(t, evalCondition(t, "amount > 100", "150"))
	assert.False(t, evalCondition(t, "amount > 100", "100"))
	assert.True(t, evalCondition(t, "amount >= 100", "100"))
	assert.True(t, evalCondition(t, "amount < 100", "99.99"))
	assert.True(t, evalCondition(t, "amount <= 0.5", "0.5"))
	assert.True(t, evalCondition(t, "amount == 250", "250.00"))
	assert.True(t, evalCondition(t, "amount != 250", "250.01"))
}

func TestCondition_BooleanOperators(t *testing.T) {
	assert.True(t, evalCondition(t, "amount >= 50 and amount < 100", "75"))
	assert.False(t, evalCondition(t, "amount >= 50 and amount < 100", "100"))
	assert.True(t, evalCondition(t, "amount == 0 or amount > 1000", "0"))
	assert.False(t, evalCondition(t, "amount == 0 or amount > 1000", "500"))
	assert.True(t, evalCondition(t, "amount >= 50 && amount < 100", "75"))
	assert.True(t, evalCondition(t, "amount == 0 || amount > 1000", "2000"))
	assert.True(t, evalCondition(t, "not (amount < 5)", "10"))
	assert.True(t, evalCondition(t, "not amount > 5", "3"))
}

func TestCondition_Arithmetic(t *testing.T) {
	assert.True(t, evalCondition(t, "amount * 2 > 100", "60"))
	assert.False(t, evalCondition(t, "amount * 2 > 100", "40"))
	assert.True(t, evalCondition(t, "amount / 2 >= 25", "50"))
	assert.True(t, evalCondition(t, "amount - 10 == 90", "100"))
	assert.True(t, evalCondition(t, "amount + 1 > -1", "-1"))
	assert.True(t, evalCondition(t, "amount <= -1", "-5"))
}

func TestCondition_ParseErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"amount >",
		"foo > 1",
		"amount & 1",
		"amount = 1",
		"(amount > 1",
		"amount > 1 extra",
		"eval(amount)",
	} {
		_, err := parseCondition(src)
		assert.Error(t, err, "parseCondition(%q)", src)
	}
}

func TestCondition_EvalErrors(t *testing.T) {
	for _, src := range []string{
		"amount + 1",
		"amount / 0 > 1",
		"amount and amount",
		"not amount",
		"(amount > 1) + 2 == 3",
	} {
		cond, err := parseCondition(src)
		require.NoError(t, err, "parseCondition(%q)", src)
		_, err = cond.evaluate(decimal.NewFromInt(10))
		assert.Error(t, err, "evaluate(%q)", src)
	}
}
