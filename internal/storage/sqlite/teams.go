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

// CreateTeam persists a new team and enrolls the creator as its first
// member in one transaction.
func (s *SQLiteStore) CreateTeam(ctx context.Context, team *models.Team, creatorBudget float64) error {
	if team.ID == "" {
		team.ID = uuid.New().String()
	}
	if team.CreatedAt == 0 {
		team.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO teams (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
			team.ID, team.Name, team.CreatedBy, team.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert team: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO team_members (team_id, user_id, initial_budget, joined_at) VALUES (?, ?, ?, ?)",
			team.ID, team.CreatedBy, creatorBudget, team.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to enroll creator: %w", err)
		}
		return nil
	})
}

// GetTeam retrieves a team by ID.
func (s *SQLiteStore) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	team := &models.Team{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, created_at FROM teams WHERE id = ?",
		teamID,
	).Scan(&team.ID, &team.Name, &team.CreatedBy, &team.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %s: %w", teamID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// ListTeamsByUser returns every team the user belongs to.
func (s *SQLiteStore) ListTeamsByUser(ctx context.Context, userID string) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.created_by, t.created_at
		 FROM teams t
		 JOIN team_members m ON m.team_id = t.id
		 WHERE m.user_id = ?
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	return teams, nil
}

// AddTeamMember enrolls a user in a team.
func (s *SQLiteStore) AddTeamMember(ctx context.Context, m *models.Member) error {
	if m.JoinedAt == 0 {
		m.JoinedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO team_members (team_id, user_id, initial_budget, joined_at) VALUES (?, ?, ?, ?)",
		m.TeamID, m.UserID, m.InitialBudget, m.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s in team %s: %w", m.UserID, m.TeamID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

// ListTeamMembers returns the team's members joined with their display
// names, ordered by join time.
func (s *SQLiteStore) ListTeamMembers(ctx context.Context, teamID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.team_id, m.user_id, u.display_name, m.initial_budget, m.joined_at
		 FROM team_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.team_id = ?
		 ORDER BY m.joined_at, m.user_id`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.DisplayName, &m.InitialBudget, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// UpdateMemberBudget sets one member's initial budget.
func (s *SQLiteStore) UpdateMemberBudget(ctx context.Context, teamID, userID string, budget float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE team_members SET initial_budget = ? WHERE team_id = ? AND user_id = ?",
		budget, teamID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check budget update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s in team %s: %w", userID, teamID, storage.ErrNotFound)
	}
	return nil
}

// SetTeamBudgets sets every member's initial budget to the same value.
func (s *SQLiteStore) SetTeamBudgets(ctx context.Context, teamID string, budget float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE team_members SET initial_budget = ? WHERE team_id = ?",
		budget, teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to set team budgets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check budget update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("team %s has no members: %w", teamID, storage.ErrNotFound)
	}
	return nil
}
