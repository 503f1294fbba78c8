package ledger

import "sort"

// party is one side of the greedy matching: a member id and the positive
// magnitude still to be settled.
type party struct {
	id     string
	amount float64
}

// MinimalTransfers produces an ordered plan of transfers that drives
// every balance to within epsilon of zero.
//
// Members are partitioned into creditors (balance > ε) and debtors
// (balance < −ε), each sorted by magnitude descending with ties broken by
// ascending member id so the plan is deterministic. The largest debtor
// then pays the largest creditor the smaller of the two remainders until one side
// is exhausted; the cursors only ever move forward, so the pass is linear
// over the pre-sorted slices.
//
// For k members with a non-zero balance the plan holds at most k−1
// transfers. Each transfer amount is rounded once, when appended.
func (e *Engine) MinimalTransfers(balances Balance) []Transfer {
	var creditors, debtors []party
	for id, bal := range balances {
		switch {
		case bal > e.eps:
			creditors = append(creditors, party{id: id, amount: bal})
		case bal < -e.eps:
			debtors = append(debtors, party{id: id, amount: -bal})
		}
	}
	sortByMagnitude(creditors)
	sortByMagnitude(debtors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}
		amount = e.Round(amount)

		// A residual above epsilon can still round to zero when epsilon
		// is finer than the configured precision. Nothing representable
		// is left to move on the smaller side; drop it so the pass
		// always terminates.
		if amount == 0 {
			if debtors[i].amount <= creditors[j].amount {
				i++
			} else {
				j++
			}
			continue
		}

		transfers = append(transfers, Transfer{
			From:   debtors[i].id,
			To:     creditors[j].id,
			Amount: amount,
		})

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		if debtors[i].amount < e.eps {
			i++
		}
		if creditors[j].amount < e.eps {
			j++
		}
	}

	return transfers
}

// sortByMagnitude orders parties largest-first, ties by ascending id.
func sortByMagnitude(parties []party) {
	sort.Slice(parties, func(a, b int) bool {
		if parties[a].amount != parties[b].amount {
			return parties[a].amount > parties[b].amount
		}
		return parties[a].id < parties[b].id
	})
}
