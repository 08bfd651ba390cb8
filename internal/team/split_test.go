package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualSplits_EvenDivision(t *testing.T) {
	splits := EqualSplits(30000, []int{3, 1, 2})

	require.Len(t, splits, 3)
	assert.Equal(t, int64(10000), splits[1])
	assert.Equal(t, int64(10000), splits[2])
	assert.Equal(t, int64(10000), splits[3])
}

func TestEqualSplits_RemainderGoesToLowestIDs(t *testing.T) {
	splits := EqualSplits(100, []int{5, 9, 7})

	assert.Equal(t, int64(34), splits[5])
	assert.Equal(t, int64(33), splits[7])
	assert.Equal(t, int64(33), splits[9])

	var sum int64
	for _, s := range splits {
		sum += s
	}
	assert.Equal(t, int64(100), sum)
}

func TestEqualSplits_NoMembers(t *testing.T) {
	assert.Empty(t, EqualSplits(100, nil))
}

func TestExpenseDeltas_EqualThreeWay(t *testing.T) {
	// 300.00 paid by member 1, split equally across three members.
	splits := EqualSplits(30000, []int{1, 2, 3})
	deltas := ExpenseDeltas(1, 30000, splits)

	require.Len(t, deltas, 3)

	// Payer is owed the amount minus their own share.
	assert.Equal(t, int64(20000), deltas[1].ShouldReceiveCents)
	assert.Equal(t, int64(0), deltas[1].OwesCents)

	assert.Equal(t, int64(10000), deltas[2].OwesCents)
	assert.Equal(t, int64(0), deltas[2].ShouldReceiveCents)
	assert.Equal(t, int64(10000), deltas[3].OwesCents)
}

func TestExpenseDeltas_PayerNotInSplits(t *testing.T) {
	// Custom split where the payer carries no share themself.
	deltas := ExpenseDeltas(1, 5000, map[int]int64{2: 3000, 3: 2000})

	assert.Equal(t, int64(5000), deltas[1].ShouldReceiveCents)
	assert.Equal(t, int64(3000), deltas[2].OwesCents)
	assert.Equal(t, int64(2000), deltas[3].OwesCents)
}

func TestExpenseDeltas_TotalOwedMatchesTotalReceivable(t *testing.T) {
	splits := EqualSplits(9999, []int{1, 2, 3, 4})
	deltas := ExpenseDeltas(2, 9999, splits)

	var owed, receivable int64
	for _, d := range deltas {
		owed += d.OwesCents
		receivable += d.ShouldReceiveCents
	}
	assert.Equal(t, owed, receivable)
}

func TestSettlementAmount_ExplicitWins(t *testing.T) {
	amount := int64(4000)
	assert.Equal(t, int64(4000), SettlementAmount(&amount, 10000, 16000))
}

func TestSettlementAmount_DefaultsToMin(t *testing.T) {
	assert.Equal(t, int64(10000), SettlementAmount(nil, 10000, 16000))
	assert.Equal(t, int64(7000), SettlementAmount(nil, 10000, 7000))
}

func TestClampedSub_NeverNegative(t *testing.T) {
	assert.Equal(t, int64(6000), clampedSub(10000, 4000))
	assert.Equal(t, int64(0), clampedSub(4000, 10000))
	assert.Equal(t, int64(0), clampedSub(4000, 4000))
}

func TestPartialSettlement_Arithmetic(t *testing.T) {
	// Debtor owes 100.00, creditor should receive 200.00; settling 40.00
	// leaves 60.00 owed and 160.00 receivable.
	amount := int64(4000)
	settled := SettlementAmount(&amount, 10000, 20000)

	assert.Equal(t, int64(6000), clampedSub(10000, settled))
	assert.Equal(t, int64(16000), clampedSub(20000, settled))
}
