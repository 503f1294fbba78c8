package ledger

import (
	"math"
	"testing"
)

func TestMinimalTransfers(t *testing.T) {
	eng := New(Config{})

	tests := []struct {
		name     string
		balances Balance
		want     []Transfer
	}{
		{
			name:     "single debtor pays single creditor",
			balances: Balance{"A": 100, "B": -100},
			want:     []Transfer{{From: "B", To: "A", Amount: 100}},
		},
		{
			name:     "two debtors, one creditor",
			balances: Balance{"A": 60, "B": -30, "C": -30},
			want: []Transfer{
				{From: "B", To: "A", Amount: 30},
				{From: "C", To: "A", Amount: 30},
			},
		},
		{
			name:     "all settled, no transfers",
			balances: Balance{"A": 0, "B": 0.004, "C": -0.004},
			want:     nil,
		},
		{
			name:     "equal magnitudes break ties by member id",
			balances: Balance{"D": -50, "B": -50, "C": 50, "A": 50},
			want: []Transfer{
				{From: "B", To: "A", Amount: 50},
				{From: "D", To: "C", Amount: 50},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eng.MinimalTransfers(tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transfers %v, want %d", len(got), got, len(tt.want))
			}
			for i, want := range tt.want {
				if got[i].From != want.From || got[i].To != want.To {
					t.Errorf("transfer %d = %s->%s, want %s->%s", i, got[i].From, got[i].To, want.From, want.To)
				}
				if math.Abs(got[i].Amount-want.Amount) > 0.01 {
					t.Errorf("transfer %d amount = %v, want %v", i, got[i].Amount, want.Amount)
				}
			}
		})
	}
}

// Applying the plan must drive every balance to within epsilon of zero,
// using at most k-1 transfers for k non-zero balances.
func TestMinimalTransfersProperties(t *testing.T) {
	eng := New(Config{})

	cases := []Balance{
		{"A": 100, "B": -100},
		{"A": 60, "B": -30, "C": -30},
		{"A": 123.45, "B": -23.45, "C": -100},
		{"A": 10.10, "B": 20.20, "C": -15.15, "D": -15.15},
		{"A": 0.33, "B": 0.33, "C": 0.34, "D": -1},
		{"A": 500, "B": -125, "C": -125, "D": -125, "E": -125},
	}

	for _, balances := range cases {
		nonZero := 0
		for _, bal := range balances {
			if math.Abs(bal) > 0.01 {
				nonZero++
			}
		}

		transfers := eng.MinimalTransfers(balances)
		if nonZero > 0 && len(transfers) > nonZero-1 {
			t.Errorf("balances %v: %d transfers exceeds k-1 = %d", balances, len(transfers), nonZero-1)
		}

		applied := make(Balance, len(balances))
		for id, bal := range balances {
			applied[id] = bal
		}
		for _, tr := range transfers {
			if tr.Amount <= 0 {
				t.Errorf("balances %v: non-positive transfer %v", balances, tr)
			}
			applied[tr.From] += tr.Amount
			applied[tr.To] -= tr.Amount
		}
		for id, bal := range applied {
			if math.Abs(bal) > 0.01 {
				t.Errorf("balances %v: %s left at %v after applying plan", balances, id, bal)
			}
		}
	}
}

// An epsilon finer than the rounding resolution must not stall the
// planner: a residual that rounds to a zero transfer is dropped rather
// than retried forever.
func TestMinimalTransfersSubPrecisionResidual(t *testing.T) {
	eng := New(Config{Epsilon: 0.001, Precision: 2})

	got := eng.MinimalTransfers(Balance{"A": 0.004, "B": -0.004})
	if len(got) != 0 {
		t.Errorf("got %v, want no transfers for a sub-precision residual", got)
	}

	// A representable debt alongside a sub-precision one still settles.
	got = eng.MinimalTransfers(Balance{"A": 50.004, "B": -50, "C": -0.004})
	if len(got) != 1 || got[0].From != "B" || got[0].To != "A" || got[0].Amount != 50 {
		t.Errorf("got %v, want [B->A: 50]", got)
	}
}

func TestMinimalTransfersDeterministic(t *testing.T) {
	eng := New(Config{})
	balances := Balance{"A": 40, "B": 40, "C": -40, "D": -40}

	first := eng.MinimalTransfers(balances)
	for i := 0; i < 10; i++ {
		again := eng.MinimalTransfers(Balance{"A": 40, "B": 40, "C": -40, "D": -40})
		if len(again) != len(first) {
			t.Fatalf("plan length changed between runs: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("plan changed between runs: %v vs %v", again, first)
			}
		}
	}
}
