package ledger

import (
	"fmt"
	"sort"

	"github.com/pmehra/teamtab/internal/models"
)

// NextPayer is the advisor's suggestion for who should pay next and the
// amount that would settle their debt.
type NextPayer struct {
	MemberID string  `json:"member_id"`
	Amount   float64 `json:"amount"`
}

// Candidate is one member considered able to cover a prospective expense.
type Candidate struct {
	MemberID  string  `json:"member_id"`
	Remaining float64 `json:"remaining"`
}

// Suggestion is the advisor's pick for who can best afford a prospective
// expense, with a confidence score and up to two runners-up.
type Suggestion struct {
	Payer        Candidate   `json:"payer"`
	Confidence   float64     `json:"confidence"`
	Alternatives []Candidate `json:"alternatives"`
}

// SuggestNextPayer picks the member with the largest outstanding debt and
// the amount that would clear it. Ties break on ascending member id.
//
// When nobody owes anything the suggestion is degenerate: the smallest
// member id with amount 0, not a meaningful recommendation.
func (e *Engine) SuggestNextPayer(balances Balance) NextPayer {
	var pick NextPayer
	found := false
	for id, bal := range balances {
		if bal >= -e.eps {
			continue
		}
		owed := -bal
		if !found || owed > pick.Amount || (owed == pick.Amount && id < pick.MemberID) {
			pick = NextPayer{MemberID: id, Amount: owed}
			found = true
		}
	}
	if found {
		pick.Amount = e.Round(pick.Amount)
		return pick
	}

	// Nobody owes: fall back to the smallest member id.
	for id := range balances {
		if pick.MemberID == "" || id < pick.MemberID {
			pick.MemberID = id
		}
	}
	return pick
}

// SuggestOptimalPayer picks the member best placed to pay a prospective
// expense: the affordable member (remaining budget >= amount) with the
// highest remaining budget. It returns nil when no member can afford the
// expense. Confidence is min(100, remaining/amount*50); up to two
// alternatives follow, sorted by remaining budget descending.
func (e *Engine) SuggestOptimalPayer(remaining BudgetRemaining, amount float64) (*Suggestion, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("expense amount %.2f: %w", amount, ErrAmountNotPositive)
	}

	var affordable []Candidate
	for id, rem := range remaining {
		if rem >= amount {
			affordable = append(affordable, Candidate{MemberID: id, Remaining: rem})
		}
	}
	if len(affordable) == 0 {
		return nil, nil
	}

	sort.Slice(affordable, func(a, b int) bool {
		if affordable[a].Remaining != affordable[b].Remaining {
			return affordable[a].Remaining > affordable[b].Remaining
		}
		return affordable[a].MemberID < affordable[b].MemberID
	})

	confidence := affordable[0].Remaining / amount * 50
	if confidence > 100 {
		confidence = 100
	}

	alternatives := affordable[1:]
	if len(alternatives) > 2 {
		alternatives = alternatives[:2]
	}

	return &Suggestion{
		Payer:        affordable[0],
		Confidence:   confidence,
		Alternatives: alternatives,
	}, nil
}

// Insights summarizes a team's budget position.
type Insights struct {
	TotalInitialBudget float64  `json:"total_initial_budget"`
	TotalRemaining     float64  `json:"total_remaining_budget"`
	TotalSpent         float64  `json:"total_spent"`
	UtilizationPct     float64  `json:"budget_utilization_percentage"`
	MembersOverBudget  int      `json:"members_over_budget"`
	MembersUnderBudget int      `json:"members_under_budget"`
	Recommendations    []string `json:"recommendations"`
}

// BudgetInsights aggregates budget-remaining values into team totals and
// plain-language recommendations.
func (e *Engine) BudgetInsights(remaining BudgetRemaining, members []models.Member) Insights {
	var in Insights
	highUtilization := 0
	var highRemaining []string

	var avg float64
	for _, m := range members {
		avg += remaining[m.UserID]
	}
	if len(members) > 0 {
		avg /= float64(len(members))
	}

	for _, m := range members {
		rem := remaining[m.UserID]
		spent := m.InitialBudget - rem

		in.TotalInitialBudget += m.InitialBudget
		in.TotalRemaining += rem
		if spent > 0 {
			in.TotalSpent += spent
		}

		switch {
		case rem < 0:
			in.MembersOverBudget++
		case rem > 0:
			in.MembersUnderBudget++
		}
		if m.InitialBudget > 0 && spent/m.InitialBudget > 0.8 {
			highUtilization++
		}
		if rem > avg*1.5 && len(highRemaining) < 2 {
			highRemaining = append(highRemaining, m.DisplayName)
		}
	}
	if in.TotalInitialBudget > 0 {
		in.UtilizationPct = in.TotalSpent / in.TotalInitialBudget * 100
	}

	if in.MembersOverBudget > 0 {
		in.Recommendations = append(in.Recommendations,
			fmt.Sprintf("%d member(s) are over budget. Consider budget adjustments or expense reallocation.", in.MembersOverBudget))
	}
	if highUtilization > 0 {
		in.Recommendations = append(in.Recommendations,
			fmt.Sprintf("%d member(s) have used over 80%% of their budget. Monitor spending closely.", highUtilization))
	}
	if len(highRemaining) > 0 {
		in.Recommendations = append(in.Recommendations,
			fmt.Sprintf("Consider having %s cover more expenses.", joinNames(highRemaining)))
	}
	if len(in.Recommendations) == 0 {
		in.Recommendations = append(in.Recommendations,
			"Budget allocation looks balanced across team members.")
	}

	return in
}

func joinNames(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return names[0] + ", " + names[1]
}
