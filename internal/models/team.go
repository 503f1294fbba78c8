package models

// Team represents a group of people sharing expenses.
type Team struct {
	// ID is the unique identifier for the team (UUID format).
	ID string `json:"id"`

	// Name is the display name of the team (e.g., "Goa Trip", "Flat 4B").
	Name string `json:"name"`

	// CreatedBy is the user ID of the team creator. Only the creator may
	// perform privileged mutations such as recalculating budgets.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the Unix timestamp when the team was created.
	CreatedAt int64 `json:"created_at"`
}

// Member represents one user's membership in a team, together with the
// spending budget they brought into it.
type Member struct {
	// TeamID is the team this membership belongs to.
	TeamID string `json:"team_id"`

	// UserID is the member's user id.
	UserID string `json:"user_id"`

	// DisplayName is the member's display name, denormalized from the
	// user record for read paths.
	DisplayName string `json:"display_name"`

	// InitialBudget is the non-negative amount the member planned to
	// spend. Budget-remaining views start from this value.
	InitialBudget float64 `json:"initial_budget"`

	// JoinedAt is the Unix timestamp when the user joined the team.
	JoinedAt int64 `json:"joined_at"`
}
