package workflow

import "errors"

var (
	// ErrAmountNotPositive rejects a settlement request for zero or
	// negative money.
	ErrAmountNotPositive = errors.New("settlement amount must be positive")

	// ErrSelfSettlement rejects a request whose sender and recipient are
	// the same member.
	ErrSelfSettlement = errors.New("cannot open a settlement request with yourself")

	// ErrNotTeamMember is returned when sender or recipient is not a
	// current member of the team.
	ErrNotTeamMember = errors.New("both parties must be current team members")

	// ErrDuplicatePending is returned when a PENDING request already
	// exists for the same directional (team, from, to) pair.
	ErrDuplicatePending = errors.New("a pending settlement request already exists between these members")

	// ErrRequestNotFound is returned for an unknown request id.
	ErrRequestNotFound = errors.New("settlement request not found")

	// ErrNotRecipient is returned when anyone but the request's
	// recipient attempts an approval.
	ErrNotRecipient = errors.New("only the recipient can approve a settlement request")

	// ErrNotPending is returned when approving a request that already
	// reached a terminal state.
	ErrNotPending = errors.New("settlement request is not pending")

	// ErrRequestExpired is returned when an approval arrives past the
	// expiry deadline; the request transitions to EXPIRED as part of the
	// failing call.
	ErrRequestExpired = errors.New("settlement request has expired")
)
