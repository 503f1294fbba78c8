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

// CreateExpense persists an expense and its participant set atomically.
func (s *SQLiteStore) CreateExpense(ctx context.Context, exp *models.Expense) error {
	if exp.ID == "" {
		exp.ID = uuid.New().String()
	}
	if exp.CreatedAt == 0 {
		exp.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertExpense(ctx, tx, exp)
	})
}

// insertExpense writes the expense row and its participants inside the
// caller's transaction. Shared with the settlement approval path so the
// synthetic expense commits together with the status flip.
func insertExpense(ctx context.Context, tx *sql.Tx, exp *models.Expense) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO expenses (id, team_id, description, amount, payer_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		exp.ID, exp.TeamID, exp.Description, exp.Amount, exp.PayerID, exp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, userID := range exp.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id) VALUES (?, ?)",
			exp.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense with its participants.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	exp := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, team_id, description, amount, payer_id, created_at FROM expenses WHERE id = ?",
		expenseID,
	).Scan(&exp.ID, &exp.TeamID, &exp.Description, &exp.Amount, &exp.PayerID, &exp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM expense_participants WHERE expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		exp.Participants = append(exp.Participants, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return exp, nil
}

// ListTeamExpenses returns all expenses of a team, newest first, each
// with its full participant set.
func (s *SQLiteStore) ListTeamExpenses(ctx context.Context, teamID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, team_id, description, amount, payer_id, created_at
		 FROM expenses WHERE team_id = ? ORDER BY created_at DESC, id`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	index := make(map[string]int)
	for rows.Next() {
		var exp models.Expense
		if err := rows.Scan(&exp.ID, &exp.TeamID, &exp.Description, &exp.Amount, &exp.PayerID, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		index[exp.ID] = len(expenses)
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, nil
	}

	// One pass over the join table instead of a query per expense.
	pRows, err := s.db.QueryContext(ctx,
		`SELECT p.expense_id, p.user_id
		 FROM expense_participants p
		 JOIN expenses e ON e.id = p.expense_id
		 WHERE e.team_id = ? ORDER BY p.user_id`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer pRows.Close()

	for pRows.Next() {
		var expenseID, userID string
		if err := pRows.Scan(&expenseID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if i, ok := index[expenseID]; ok {
			expenses[i].Participants = append(expenses[i].Participants, userID)
		}
	}
	if err := pRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return expenses, nil
}

// DeleteExpense removes an expense; participants cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check expense delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}
