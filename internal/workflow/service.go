// Package workflow runs the approval lifecycle of manually proposed
// settlements: PENDING requests that the recipient either approves,
// producing a synthetic ledger expense, or lets expire.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pmehra/teamtab/internal/metrics"
	"github.com/pmehra/teamtab/internal/models"
	"github.com/pmehra/teamtab/internal/notify"
	"github.com/pmehra/teamtab/internal/storage"
)

// DefaultExpiry is the window a request stays approvable after creation.
const DefaultExpiry = 7 * 24 * time.Hour

// Config carries the service tunables. The zero value uses DefaultExpiry
// and the wall clock.
type Config struct {
	// Expiry is added to the creation time to produce expires_at.
	Expiry time.Duration

	// Now returns the current time; overridable in tests.
	Now func() time.Time

	// Round finalizes the monetary amount of a new request. Defaults to
	// 2-decimal rounding; wire the ledger engine's Round to keep one
	// rounding rule across the system.
	Round func(float64) float64
}

// Service coordinates settlement requests against the backing store. All
// at-most-once guarantees are delegated to the store's transactions; the
// service itself holds no locks.
type Service struct {
	store    storage.Store
	notifier notify.Notifier
	expiry   time.Duration
	now      func() time.Time
	round    func(float64) float64
}

// New creates a settlement request service.
func New(store storage.Store, notifier notify.Notifier, cfg Config) *Service {
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultExpiry
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Round == nil {
		cfg.Round = func(v float64) float64 { return math.Round(v*100) / 100 }
	}
	return &Service{
		store:    store,
		notifier: notifier,
		expiry:   cfg.Expiry,
		now:      cfg.Now,
		round:    cfg.Round,
	}
}

// Create opens a new PENDING settlement request from one member to
// another. Both must be current team members, and at most one PENDING
// request may exist per directional (team, from, to) pair; the reverse
// direction does not block.
func (s *Service) Create(ctx context.Context, teamID, fromID, toID string, amount float64, message string) (*models.SettlementRequest, error) {
	// Round once here; the persisted request and the synthetic expense
	// built from it at approval carry the finalized amount.
	amount = s.round(amount)
	if amount <= 0 {
		return nil, fmt.Errorf("amount %.2f: %w", amount, ErrAmountNotPositive)
	}
	if fromID == toID {
		return nil, ErrSelfSettlement
	}

	members, err := s.store.ListTeamMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team members: %w", err)
	}
	byID := memberIndex(members)
	if _, ok := byID[fromID]; !ok {
		return nil, fmt.Errorf("member %s: %w", fromID, ErrNotTeamMember)
	}
	if _, ok := byID[toID]; !ok {
		return nil, fmt.Errorf("member %s: %w", toID, ErrNotTeamMember)
	}

	now := s.now()
	req := &models.SettlementRequest{
		ID:        uuid.New().String(),
		TeamID:    teamID,
		FromID:    fromID,
		ToID:      toID,
		Amount:    amount,
		Message:   message,
		Status:    models.StatusPending,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.expiry).Unix(),
	}

	if err := s.store.CreateSettlementRequest(ctx, req); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrDuplicatePending
		}
		if errors.Is(err, storage.ErrNotFound) {
			// A party left the team between the advisory read above and
			// the store's transactional re-check.
			return nil, ErrNotTeamMember
		}
		return nil, fmt.Errorf("failed to create settlement request: %w", err)
	}
	metrics.SettlementRequestsCreated.Inc()

	s.emit(ctx, notify.EventRequestCreated, req, byID)
	return req, nil
}

// Approve transitions a PENDING request to APPROVED and appends the
// synthetic settlement expense in the same store transaction. Only the
// recipient may approve. An approval attempted past expires_at flips the
// request to EXPIRED and fails; the flip and the failure are two faces
// of the same call, there is no background sweeper.
//
// The settlement expense records the full offset: the sender pays the
// stated amount with the recipient as sole participant, so under
// equal-split accounting the whole amount moves between the two.
func (s *Service) Approve(ctx context.Context, requestID, approverID string) (*models.SettlementRequest, error) {
	req, err := s.store.GetSettlementRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load settlement request: %w", err)
	}

	if approverID != req.ToID {
		return nil, ErrNotRecipient
	}
	if req.Status != models.StatusPending {
		return nil, fmt.Errorf("status %s: %w", req.Status, ErrNotPending)
	}

	now := s.now()
	if now.Unix() > req.ExpiresAt {
		if err := s.store.ExpireSettlementRequest(ctx, req.ID); err != nil && !errors.Is(err, storage.ErrStale) {
			return nil, fmt.Errorf("failed to expire settlement request: %w", err)
		}
		metrics.SettlementRequestsExpired.Inc()
		return nil, ErrRequestExpired
	}

	description := "Settlement payment"
	if req.Message != "" {
		description = "Settlement payment: " + req.Message
	}
	settlement := &models.Expense{
		ID:           uuid.New().String(),
		TeamID:       req.TeamID,
		Description:  description,
		Amount:       req.Amount,
		PayerID:      req.FromID,
		Participants: []string{req.ToID},
		CreatedAt:    now.Unix(),
	}

	approvedAt := now.Unix()
	if err := s.store.ApproveSettlementRequest(ctx, req.ID, approvedAt, settlement); err != nil {
		if errors.Is(err, storage.ErrStale) {
			// A concurrent approval won the compare-and-swap.
			return nil, fmt.Errorf("status changed concurrently: %w", ErrNotPending)
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to approve settlement request: %w", err)
	}
	metrics.SettlementRequestsApproved.Inc()

	req.Status = models.StatusApproved
	req.ApprovedAt = &approvedAt

	members, err := s.store.ListTeamMembers(ctx, req.TeamID)
	if err != nil {
		slog.Warn("approved settlement but could not load members for notification",
			"request_id", req.ID, "error", err)
		return req, nil
	}
	s.emit(ctx, notify.EventRequestApproved, req, memberIndex(members))
	return req, nil
}

// RequestView is one settlement request annotated for the viewing member.
type RequestView struct {
	Request          models.SettlementRequest `json:"request"`
	Direction        string                   `json:"direction"` // "sent" or "received"
	CounterpartyID   string                   `json:"counterparty_id"`
	CounterpartyName string                   `json:"counterparty_name"`
}

// List returns every request where the member is sender or recipient,
// newest first, annotated with direction and counterparty display name.
// Read-only; no state transition happens here, even for requests past
// their deadline.
func (s *Service) List(ctx context.Context, teamID, userID string) ([]RequestView, error) {
	requests, err := s.store.ListSettlementRequestsByMember(ctx, teamID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement requests: %w", err)
	}

	members, err := s.store.ListTeamMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team members: %w", err)
	}
	byID := memberIndex(members)

	views := make([]RequestView, 0, len(requests))
	for _, req := range requests {
		view := RequestView{Request: req}
		if req.FromID == userID {
			view.Direction = "sent"
			view.CounterpartyID = req.ToID
		} else {
			view.Direction = "received"
			view.CounterpartyID = req.FromID
		}
		view.CounterpartyName = displayName(byID, view.CounterpartyID)
		views = append(views, view)
	}
	return views, nil
}

// emit delivers a notification event, best effort. Failures are logged
// and counted; they never affect the committed mutation.
func (s *Service) emit(ctx context.Context, typ notify.EventType, req *models.SettlementRequest, byID map[string]models.Member) {
	ev := notify.Event{
		Type:      typ,
		TeamID:    req.TeamID,
		RequestID: req.ID,
		FromID:    req.FromID,
		FromName:  displayName(byID, req.FromID),
		ToID:      req.ToID,
		ToName:    displayName(byID, req.ToID),
		Amount:    req.Amount,
		Message:   req.Message,
	}
	if team, err := s.store.GetTeam(ctx, req.TeamID); err == nil {
		ev.TeamName = team.Name
	}

	if err := s.notifier.Notify(ctx, ev); err != nil {
		metrics.NotificationFailures.Inc()
		slog.Warn("notification delivery failed",
			"type", typ, "request_id", req.ID, "error", err)
	}
}

func memberIndex(members []models.Member) map[string]models.Member {
	byID := make(map[string]models.Member, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}
	return byID
}

func displayName(byID map[string]models.Member, userID string) string {
	if m, ok := byID[userID]; ok {
		return m.DisplayName
	}
	return "Unknown"
}
