package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pmehra/teamtab/internal/models"
	"github.com/pmehra/teamtab/internal/storage"
)

// CreateSettlementRequest persists a new request. The duplicate-pending
// check and the insert run in one transaction so two concurrent creates
// for the same (team, from, to) triple cannot both land.
func (s *SQLiteStore) CreateSettlementRequest(ctx context.Context, req *models.SettlementRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt == 0 {
		req.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		// Both parties must still be team members at insert time; the
		// caller's earlier read may be stale.
		var memberCount int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM team_members
			 WHERE team_id = ? AND user_id IN (?, ?)`,
			req.TeamID, req.FromID, req.ToID,
		).Scan(&memberCount)
		if err != nil {
			return fmt.Errorf("failed to check memberships: %w", err)
		}
		if memberCount != 2 {
			return fmt.Errorf("settlement request parties: %w", storage.ErrNotFound)
		}

		var exists int
		err = tx.QueryRowContext(ctx,
			`SELECT 1 FROM settlement_requests
			 WHERE team_id = ? AND from_user_id = ? AND to_user_id = ? AND status = ?`,
			req.TeamID, req.FromID, req.ToID, models.StatusPending,
		).Scan(&exists)
		if err == nil {
			return fmt.Errorf("pending request %s -> %s: %w", req.FromID, req.ToID, storage.ErrConflict)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}

		var message interface{}
		if req.Message != "" {
			message = req.Message
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlement_requests
			 (id, team_id, from_user_id, to_user_id, amount, message, status, created_at, expires_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			req.ID, req.TeamID, req.FromID, req.ToID, req.Amount, message,
			req.Status, req.CreatedAt, req.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement request: %w", err)
		}
		return nil
	})
}

// GetSettlementRequest retrieves a request by ID.
func (s *SQLiteStore) GetSettlementRequest(ctx context.Context, requestID string) (*models.SettlementRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, from_user_id, to_user_id, amount, message, status, created_at, expires_at, approved_at
		 FROM settlement_requests WHERE id = ?`,
		requestID,
	)
	req, err := scanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement request %s: %w", requestID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement request: %w", err)
	}
	return req, nil
}

// ListSettlementRequestsByMember returns every request where the user is
// sender or recipient, newest first.
func (s *SQLiteStore) ListSettlementRequestsByMember(ctx context.Context, teamID, userID string) ([]models.SettlementRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, team_id, from_user_id, to_user_id, amount, message, status, created_at, expires_at, approved_at
		 FROM settlement_requests
		 WHERE team_id = ? AND (from_user_id = ? OR to_user_id = ?)
		 ORDER BY created_at DESC, id`,
		teamID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement requests: %w", err)
	}
	defer rows.Close()

	var requests []models.SettlementRequest
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement requests: %w", err)
	}
	return requests, nil
}

// ApproveSettlementRequest flips a PENDING request to APPROVED and
// appends the synthetic settlement expense in one transaction. The
// status flip is a compare-and-swap: of two racing approvals exactly one
// sees PENDING, the other gets ErrStale.
func (s *SQLiteStore) ApproveSettlementRequest(ctx context.Context, requestID string, approvedAt int64, settlement *models.Expense) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = approvedAt
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := casStatus(ctx, tx, requestID, models.StatusApproved, &approvedAt); err != nil {
			return err
		}
		return insertExpense(ctx, tx, settlement)
	})
}

// ExpireSettlementRequest flips a PENDING request to EXPIRED.
func (s *SQLiteStore) ExpireSettlementRequest(ctx context.Context, requestID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return casStatus(ctx, tx, requestID, models.StatusExpired, nil)
	})
}

// casStatus performs the guarded PENDING -> status transition.
func casStatus(ctx context.Context, tx *sql.Tx, requestID string, status models.RequestStatus, approvedAt *int64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE settlement_requests SET status = ?, approved_at = ? WHERE id = ? AND status = ?",
		status, approvedAt, requestID, models.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check settlement update: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Distinguish a missing row from a lost race.
	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM settlement_requests WHERE id = ?", requestID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("settlement request %s: %w", requestID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check settlement request: %w", err)
	}
	return fmt.Errorf("settlement request %s: %w", requestID, storage.ErrStale)
}

// scanRequest reads one settlement request row through the given Scan
// function, handling the nullable message and approved_at columns.
func scanRequest(scan func(...interface{}) error) (*models.SettlementRequest, error) {
	req := &models.SettlementRequest{}
	var message sql.NullString
	var approvedAt sql.NullInt64

	err := scan(&req.ID, &req.TeamID, &req.FromID, &req.ToID, &req.Amount,
		&message, &req.Status, &req.CreatedAt, &req.ExpiresAt, &approvedAt)
	if err != nil {
		return nil, err
	}

	if message.Valid {
		req.Message = message.String
	}
	if approvedAt.Valid {
		req.ApprovedAt = &approvedAt.Int64
	}
	return req, nil
}
