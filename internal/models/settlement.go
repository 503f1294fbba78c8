package models

// RequestStatus is the lifecycle state of a settlement request.
type RequestStatus string

const (
	// StatusPending means the request awaits the recipient's approval.
	StatusPending RequestStatus = "PENDING"
	// StatusApproved is terminal: the recipient approved and a synthetic
	// expense was appended to the ledger.
	StatusApproved RequestStatus = "APPROVED"
	// StatusExpired is terminal: an approval was attempted after the
	// expiry deadline. Expiry is detected lazily, never by a sweeper.
	StatusExpired RequestStatus = "EXPIRED"
)

// SettlementRequest is a persisted, approvable proposal for one member to
// pay another. It is distinct from the ephemeral transfer plan the
// settlement planner computes.
type SettlementRequest struct {
	// ID is the unique identifier for the request (UUID format).
	ID string `json:"id"`

	// TeamID is the team this request belongs to.
	TeamID string `json:"team_id"`

	// FromID is the user proposing to pay.
	FromID string `json:"from_id"`

	// ToID is the user being paid. Only this user may approve.
	ToID string `json:"to_id"`

	// Amount is the proposed payment. Always positive.
	Amount float64 `json:"amount"`

	// Message is an optional note from the proposer.
	Message string `json:"message,omitempty"`

	// Status is PENDING until approval or expiry; both are terminal.
	Status RequestStatus `json:"status"`

	// CreatedAt is the Unix timestamp when the request was created.
	CreatedAt int64 `json:"created_at"`

	// ExpiresAt is CreatedAt plus the configured expiry window.
	ExpiresAt int64 `json:"expires_at"`

	// ApprovedAt is set exactly once, when the request is approved.
	ApprovedAt *int64 `json:"approved_at,omitempty"`
}
