package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmehra/teamtab/internal/ledger"
	"github.com/pmehra/teamtab/internal/metrics"
	"github.com/pmehra/teamtab/internal/models"
)

// teamLedger loads the inputs every summary endpoint needs.
func (s *Server) teamLedger(c *gin.Context, teamID string) ([]models.Expense, []models.Member, bool) {
	members, authorized := s.requireMembership(c, teamID)
	if !authorized {
		return nil, nil, false
	}
	expenses, err := s.store.ListTeamExpenses(c.Request.Context(), teamID)
	if err != nil {
		fail(c, err)
		return nil, nil, false
	}
	return expenses, members, true
}

func (s *Server) handleBalances(c *gin.Context) {
	expenses, members, authorized := s.teamLedger(c, c.Param("teamID"))
	if !authorized {
		return
	}
	balances, err := s.engine.NetBalances(expenses, members)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"balances": balances})
}

func (s *Server) handleSettlements(c *gin.Context) {
	expenses, members, authorized := s.teamLedger(c, c.Param("teamID"))
	if !authorized {
		return
	}
	balances, err := s.engine.NetBalances(expenses, members)
	if err != nil {
		fail(c, err)
		return
	}

	transfers := s.engine.MinimalTransfers(balances)
	metrics.SettlementPlanSize.Observe(float64(len(transfers)))

	ok(c, http.StatusOK, gin.H{"settlements": transfers})
}

func (s *Server) handleNextPayer(c *gin.Context) {
	expenses, members, authorized := s.teamLedger(c, c.Param("teamID"))
	if !authorized {
		return
	}
	balances, err := s.engine.NetBalances(expenses, members)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, s.engine.SuggestNextPayer(balances))
}

func (s *Server) handleBudgetStatus(c *gin.Context) {
	expenses, members, authorized := s.teamLedger(c, c.Param("teamID"))
	if !authorized {
		return
	}
	ok(c, http.StatusOK, gin.H{"remaining": s.engine.BudgetRemaining(expenses, members)})
}

func (s *Server) handleBudgetInsights(c *gin.Context) {
	expenses, members, authorized := s.teamLedger(c, c.Param("teamID"))
	if !authorized {
		return
	}
	remaining := s.engine.BudgetRemaining(expenses, members)
	ok(c, http.StatusOK, s.engine.BudgetInsights(remaining, members))
}

type suggestPayerRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

type suggestPayerResponse struct {
	Suggestion *ledger.Suggestion `json:"suggestion"`
}

func (s *Server) handleSuggestPayer(c *gin.Context) {
	expenses, members, authorized := s.teamLedger(c, c.Param("teamID"))
	if !authorized {
		return
	}

	var req suggestPayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid suggestion payload")
		return
	}

	remaining := s.engine.BudgetRemaining(expenses, members)
	suggestion, err := s.engine.SuggestOptimalPayer(remaining, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}

	// suggestion is nil when nobody can afford the amount; the client gets
	// an explicit null rather than a 404.
	ok(c, http.StatusOK, suggestPayerResponse{Suggestion: suggestion})
}
