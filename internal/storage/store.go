// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/pmehra/teamtab/internal/models"
)

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an insert collides with an existing
	// record (duplicate email, duplicate membership, duplicate pending
	// settlement request).
	ErrConflict = errors.New("record already exists")

	// ErrStale is returned when a compare-and-swap mutation observes a
	// state other than the one it expected. Exactly one of two racing
	// approvals sees PENDING; the other gets ErrStale.
	ErrStale = errors.New("record changed concurrently")
)

// Store defines the persistence operations the services depend on. The
// abstraction allows swapping storage backends without changing the
// service layer. Every mutating method either fully succeeds or leaves
// the store untouched.
type Store interface {
	// CreateUser persists a new user. Returns ErrConflict if the email
	// is already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if
	// no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateTeam persists a new team and enrolls the creator as its
	// first member with the given budget, atomically.
	CreateTeam(ctx context.Context, team *models.Team, creatorBudget float64) error

	// GetTeam retrieves a team by id.
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)

	// ListTeamsByUser returns every team the user belongs to.
	ListTeamsByUser(ctx context.Context, userID string) ([]models.Team, error)

	// AddTeamMember enrolls a user. Returns ErrConflict if they already
	// belong to the team.
	AddTeamMember(ctx context.Context, m *models.Member) error

	// ListTeamMembers returns the team's current members with display
	// names, ordered by join time.
	ListTeamMembers(ctx context.Context, teamID string) ([]models.Member, error)

	// UpdateMemberBudget sets one member's initial budget.
	UpdateMemberBudget(ctx context.Context, teamID, userID string, budget float64) error

	// SetTeamBudgets sets every member's initial budget to the same
	// value in a single mutation.
	SetTeamBudgets(ctx context.Context, teamID string, budget float64) error

	// CreateExpense persists an expense and its participant set
	// atomically. The ID and CreatedAt fields are populated if unset.
	CreateExpense(ctx context.Context, exp *models.Expense) error

	// GetExpense retrieves an expense with its participants.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListTeamExpenses returns all expenses of a team, newest first,
	// each with its full participant set.
	ListTeamExpenses(ctx context.Context, teamID string) ([]models.Expense, error)

	// DeleteExpense removes an expense and its participants.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlementRequest persists a new request. The membership
	// check, duplicate check and insert run in one transaction:
	// ErrNotFound is returned if either party is not a current team
	// member, ErrConflict if a PENDING request for the same
	// (team, from, to) triple exists.
	CreateSettlementRequest(ctx context.Context, req *models.SettlementRequest) error

	// GetSettlementRequest retrieves a request by id.
	GetSettlementRequest(ctx context.Context, requestID string) (*models.SettlementRequest, error)

	// ListSettlementRequestsByMember returns every request where the
	// user is sender or recipient, newest first.
	ListSettlementRequestsByMember(ctx context.Context, teamID, userID string) ([]models.SettlementRequest, error)

	// ApproveSettlementRequest flips a PENDING request to APPROVED and
	// appends the synthetic settlement expense in one transaction. The
	// flip is a compare-and-swap on status: ErrStale if the request is
	// no longer PENDING, ErrNotFound if it does not exist.
	ApproveSettlementRequest(ctx context.Context, requestID string, approvedAt int64, settlement *models.Expense) error

	// ExpireSettlementRequest flips a PENDING request to EXPIRED with
	// the same compare-and-swap semantics as approval.
	ExpireSettlementRequest(ctx context.Context, requestID string) error

	// Close releases any resources held by the store.
	Close() error
}
