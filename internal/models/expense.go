package models

// Expense represents a shared expense paid by one member and split
// equally among its participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// TeamID is the team this expense belongs to.
	TeamID string `json:"team_id"`

	// Description is a human-readable label (e.g., "Groceries", or the
	// synthetic "Settlement payment" records the approval workflow
	// appends).
	Description string `json:"description"`

	// Amount is the full amount paid. Always positive.
	Amount float64 `json:"amount"`

	// PayerID is the user who paid the full amount.
	PayerID string `json:"payer_id"`

	// Participants is the non-empty set of user ids the amount is split
	// among. It may include the payer.
	Participants []string `json:"participants"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at"`
}
