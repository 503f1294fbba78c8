package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/pmehra/teamtab/internal/models"
)

func TestSuggestNextPayer(t *testing.T) {
	eng := New(Config{})

	tests := []struct {
		name     string
		balances Balance
		wantID   string
		wantAmt  float64
	}{
		{
			name:     "largest debtor wins",
			balances: Balance{"A": 100, "B": -70, "C": -30},
			wantID:   "B",
			wantAmt:  70,
		},
		{
			name:     "equal debts break ties by member id",
			balances: Balance{"A": 100, "C": -50, "B": -50},
			wantID:   "B",
			wantAmt:  50,
		},
		{
			name:     "nobody owes, degenerate fallback to smallest id",
			balances: Balance{"B": 0, "A": 0, "C": 0},
			wantID:   "A",
			wantAmt:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eng.SuggestNextPayer(tt.balances)
			if got.MemberID != tt.wantID {
				t.Errorf("member = %s, want %s", got.MemberID, tt.wantID)
			}
			if math.Abs(got.Amount-tt.wantAmt) > 0.01 {
				t.Errorf("amount = %v, want %v", got.Amount, tt.wantAmt)
			}
		})
	}
}

func TestSuggestOptimalPayer(t *testing.T) {
	eng := New(Config{})

	t.Run("highest remaining among affordable wins", func(t *testing.T) {
		remaining := BudgetRemaining{"A": 150, "B": 200}
		got, err := eng.SuggestOptimalPayer(remaining, 120)
		if err != nil {
			t.Fatalf("SuggestOptimalPayer() error = %v", err)
		}
		if got == nil {
			t.Fatal("expected a suggestion, got nil")
		}
		if got.Payer.MemberID != "B" {
			t.Errorf("payer = %s, want B", got.Payer.MemberID)
		}
		// 200/120 * 50 = 83.33
		if math.Abs(got.Confidence-83.33) > 0.01 {
			t.Errorf("confidence = %v, want 83.33", got.Confidence)
		}
		if len(got.Alternatives) != 1 || got.Alternatives[0].MemberID != "A" {
			t.Errorf("alternatives = %v, want [A]", got.Alternatives)
		}
	})

	t.Run("nil when nobody can afford it", func(t *testing.T) {
		remaining := BudgetRemaining{"A": 50, "B": 80}
		got, err := eng.SuggestOptimalPayer(remaining, 100)
		if err != nil {
			t.Fatalf("SuggestOptimalPayer() error = %v", err)
		}
		if got != nil {
			t.Errorf("expected nil suggestion, got %+v", got)
		}
	})

	t.Run("confidence caps at 100", func(t *testing.T) {
		remaining := BudgetRemaining{"A": 1000}
		got, err := eng.SuggestOptimalPayer(remaining, 10)
		if err != nil {
			t.Fatalf("SuggestOptimalPayer() error = %v", err)
		}
		if got.Confidence != 100 {
			t.Errorf("confidence = %v, want 100", got.Confidence)
		}
	})

	t.Run("at most two alternatives, sorted by remaining", func(t *testing.T) {
		remaining := BudgetRemaining{"A": 100, "B": 90, "C": 80, "D": 70}
		got, err := eng.SuggestOptimalPayer(remaining, 60)
		if err != nil {
			t.Fatalf("SuggestOptimalPayer() error = %v", err)
		}
		if got.Payer.MemberID != "A" {
			t.Errorf("payer = %s, want A", got.Payer.MemberID)
		}
		if len(got.Alternatives) != 2 {
			t.Fatalf("got %d alternatives, want 2", len(got.Alternatives))
		}
		if got.Alternatives[0].MemberID != "B" || got.Alternatives[1].MemberID != "C" {
			t.Errorf("alternatives = %v, want [B C]", got.Alternatives)
		}
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		_, err := eng.SuggestOptimalPayer(BudgetRemaining{"A": 100}, 0)
		if !errors.Is(err, ErrAmountNotPositive) {
			t.Errorf("error = %v, want %v", err, ErrAmountNotPositive)
		}
	})
}

func TestBudgetInsights(t *testing.T) {
	eng := New(Config{})
	members := []models.Member{member("A", 200), member("B", 200), member("C", 100)}
	remaining := BudgetRemaining{"A": -20, "B": 190, "C": 10}

	got := eng.BudgetInsights(remaining, members)

	if got.TotalInitialBudget != 500 {
		t.Errorf("total initial = %v, want 500", got.TotalInitialBudget)
	}
	if math.Abs(got.TotalRemaining-180) > 0.01 {
		t.Errorf("total remaining = %v, want 180", got.TotalRemaining)
	}
	// A spent 220, B spent 10, C spent 90.
	if math.Abs(got.TotalSpent-320) > 0.01 {
		t.Errorf("total spent = %v, want 320", got.TotalSpent)
	}
	if got.MembersOverBudget != 1 {
		t.Errorf("over budget = %d, want 1", got.MembersOverBudget)
	}
	if got.MembersUnderBudget != 2 {
		t.Errorf("under budget = %d, want 2", got.MembersUnderBudget)
	}
	if len(got.Recommendations) == 0 {
		t.Error("expected at least one recommendation")
	}
}
