package ledger

import (
	"fmt"

	"github.com/pmehra/teamtab/internal/models"
)

// NetBalances computes the signed net balance of every current team
// member across the given expenses.
//
// For each expense the payer is credited the full amount and every
// participant is debited an equal share. Payers and participants who are
// no longer on the team are excluded from both the credit and the debit,
// so departed members do not distort current balances; the share divisor
// stays the full participant count.
//
// The balances of the current members always sum to zero (within
// epsilon) when every expense references only current members.
func (e *Engine) NetBalances(expenses []models.Expense, members []models.Member) (Balance, error) {
	balances := make(Balance, len(members))
	current := make(map[string]bool, len(members))
	for _, m := range members {
		balances[m.UserID] = 0
		current[m.UserID] = true
	}

	for _, exp := range expenses {
		if len(exp.Participants) == 0 {
			return nil, fmt.Errorf("expense %s: %w", exp.ID, ErrEmptyParticipants)
		}

		if current[exp.PayerID] {
			balances[exp.PayerID] += exp.Amount
		}

		share := exp.Amount / float64(len(exp.Participants))
		for _, p := range exp.Participants {
			if current[p] {
				balances[p] -= share
			}
		}
	}

	return balances, nil
}

// BudgetRemaining computes each member's spending capacity: their initial
// budget minus every amount they paid as payer, regardless of who
// participated. No clamping is applied; a negative value means the member
// has spent past their budget.
func (e *Engine) BudgetRemaining(expenses []models.Expense, members []models.Member) BudgetRemaining {
	remaining := make(BudgetRemaining, len(members))
	for _, m := range members {
		remaining[m.UserID] = m.InitialBudget
	}

	for _, exp := range expenses {
		if _, ok := remaining[exp.PayerID]; ok {
			remaining[exp.PayerID] -= exp.Amount
		}
	}

	return remaining
}
