package team

import "sort"

// BalanceDelta is the change a shared expense or settlement applies to one
// member's aggregate balance.
type BalanceDelta struct {
	OwesCents          int64
	ShouldReceiveCents int64
}

// EqualSplits divides amountCents evenly across the members. Integer cents
// cannot always divide evenly, so the remainder is spread one cent at a time
// over the lowest member IDs to keep the result deterministic and the shares
// summing exactly to the amount.
func EqualSplits(amountCents int64, memberIDs []int) map[int]int64 {
	if len(memberIDs) == 0 {
		return map[int]int64{}
	}

	ids := make([]int, len(memberIDs))
	copy(ids, memberIDs)
	sort.Ints(ids)

	n := int64(len(ids))
	share := amountCents / n
	remainder := amountCents - share*n

	splits := make(map[int]int64, len(ids))
	for i, id := range ids {
		splits[id] = share
		if int64(i) < remainder {
			splits[id]++
		}
	}

	return splits
}

// ExpenseDeltas computes per-member balance changes for a shared expense:
// the payer's should_receive grows by the full amount minus their own share,
// every other member's owes grows by their share.
func ExpenseDeltas(paidBy int, amountCents int64, splits map[int]int64) map[int]BalanceDelta {
	deltas := make(map[int]BalanceDelta, len(splits)+1)

	payer := deltas[paidBy]
	payer.ShouldReceiveCents += amountCents
	deltas[paidBy] = payer

	for userID, share := range splits {
		d := deltas[userID]
		if userID == paidBy {
			// The payer only gets back what the others owe.
			d.ShouldReceiveCents -= share
		} else {
			d.OwesCents += share
		}
		deltas[userID] = d
	}

	return deltas
}

// SettlementAmount resolves the amount for a settlement: an explicit amount
// wins, otherwise the largest amount both sides can absorb.
func SettlementAmount(explicit *int64, debtorOwes, creditorShouldReceive int64) int64 {
	if explicit != nil {
		return *explicit
	}
	if debtorOwes < creditorShouldReceive {
		return debtorOwes
	}
	return creditorShouldReceive
}

// clampedSub subtracts b from a, flooring at zero. Balances never go
// negative through settlements.
func clampedSub(a, b int64) int64 {
	if a <= b {
		return 0
	}
	return a - b
}
