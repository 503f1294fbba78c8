package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pmehra/teamtab/internal/models"
	"github.com/pmehra/teamtab/internal/storage"
)

type createExpenseRequest struct {
	Description  string   `json:"description" binding:"required"`
	Amount       float64  `json:"amount" binding:"required"`
	PayerID      string   `json:"payer_id" binding:"required"`
	Participants []string `json:"participants" binding:"required"`
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	teamID := c.Param("teamID")
	if _, authorized := s.requireMembership(c, teamID); !authorized {
		return
	}

	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid expense payload")
		return
	}
	if req.Amount <= 0 {
		badRequest(c, "amount must be positive")
		return
	}
	if len(req.Participants) == 0 {
		badRequest(c, "participants must not be empty")
		return
	}
	if err := uuid.Validate(req.PayerID); err != nil {
		badRequest(c, "invalid payer id")
		return
	}
	seen := make(map[string]struct{}, len(req.Participants))
	for _, p := range req.Participants {
		if err := uuid.Validate(p); err != nil {
			badRequest(c, "invalid participant id")
			return
		}
		if _, dup := seen[p]; dup {
			badRequest(c, "duplicate participant id")
			return
		}
		seen[p] = struct{}{}
	}

	exp := &models.Expense{
		TeamID:       teamID,
		Description:  req.Description,
		Amount:       req.Amount,
		PayerID:      req.PayerID,
		Participants: req.Participants,
	}
	if err := s.store.CreateExpense(c.Request.Context(), exp); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, exp)
}

func (s *Server) handleListExpenses(c *gin.Context) {
	teamID := c.Param("teamID")
	if _, authorized := s.requireMembership(c, teamID); !authorized {
		return
	}
	expenses, err := s.store.ListTeamExpenses(c.Request.Context(), teamID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, expenses)
}

func (s *Server) handleDeleteExpense(c *gin.Context) {
	teamID := c.Param("teamID")
	if _, authorized := s.requireMembership(c, teamID); !authorized {
		return
	}

	expenseID := c.Param("expenseID")
	if err := uuid.Validate(expenseID); err != nil {
		badRequest(c, "invalid expense id")
		return
	}

	// The expense must belong to the team in the URL; ids from other teams
	// look like missing records.
	exp, err := s.store.GetExpense(c.Request.Context(), expenseID)
	if err != nil {
		fail(c, err)
		return
	}
	if exp.TeamID != teamID {
		fail(c, storage.ErrNotFound)
		return
	}

	if err := s.store.DeleteExpense(c.Request.Context(), expenseID); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": expenseID})
}
