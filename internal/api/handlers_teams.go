package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pmehra/teamtab/internal/models"
	"github.com/pmehra/teamtab/internal/workflow"
)

type createTeamRequest struct {
	Name          string  `json:"name" binding:"required"`
	InitialBudget float64 `json:"initial_budget"`
}

type addMemberRequest struct {
	UserID        string  `json:"user_id" binding:"required"`
	InitialBudget float64 `json:"initial_budget"`
}

type budgetUpdateRequest struct {
	InitialBudget float64 `json:"initial_budget"`
}

type recalculateRequest struct {
	TotalBudget float64 `json:"total_budget" binding:"required"`
}

type teamDetailResponse struct {
	Team    *models.Team    `json:"team"`
	Members []models.Member `json:"members"`
}

// requireMembership validates the team id, loads the member list and checks
// the caller belongs to the team. Non-members get the same response as a
// missing team.
func (s *Server) requireMembership(c *gin.Context, teamID string) ([]models.Member, bool) {
	if err := uuid.Validate(teamID); err != nil {
		badRequest(c, "invalid team id")
		return nil, false
	}
	if _, err := s.store.GetTeam(c.Request.Context(), teamID); err != nil {
		fail(c, err)
		return nil, false
	}
	members, err := s.store.ListTeamMembers(c.Request.Context(), teamID)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	userID := currentUserID(c)
	for _, m := range members {
		if m.UserID == userID {
			return members, true
		}
	}
	fail(c, workflow.ErrNotTeamMember)
	return nil, false
}

// requireCreator additionally checks the caller created the team.
func (s *Server) requireCreator(c *gin.Context, teamID string) ([]models.Member, bool) {
	members, authorized := s.requireMembership(c, teamID)
	if !authorized {
		return nil, false
	}
	team, err := s.store.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if team.CreatedBy != currentUserID(c) {
		fail(c, errForbidden)
		return nil, false
	}
	return members, true
}

func (s *Server) handleCreateTeam(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid team payload")
		return
	}
	if req.InitialBudget < 0 {
		badRequest(c, "initial_budget must not be negative")
		return
	}

	team := &models.Team{Name: req.Name, CreatedBy: currentUserID(c)}
	if err := s.store.CreateTeam(c.Request.Context(), team, req.InitialBudget); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, team)
}

func (s *Server) handleListTeams(c *gin.Context) {
	teams, err := s.store.ListTeamsByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, teams)
}

func (s *Server) handleGetTeam(c *gin.Context) {
	teamID := c.Param("teamID")
	members, authorized := s.requireMembership(c, teamID)
	if !authorized {
		return
	}
	team, err := s.store.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, teamDetailResponse{Team: team, Members: members})
}

func (s *Server) handleAddMember(c *gin.Context) {
	teamID := c.Param("teamID")
	if _, authorized := s.requireMembership(c, teamID); !authorized {
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid member payload")
		return
	}
	if err := uuid.Validate(req.UserID); err != nil {
		badRequest(c, "invalid user id")
		return
	}
	if req.InitialBudget < 0 {
		badRequest(c, "initial_budget must not be negative")
		return
	}
	if _, err := s.store.GetUserByID(c.Request.Context(), req.UserID); err != nil {
		fail(c, err)
		return
	}

	member := &models.Member{
		TeamID:        teamID,
		UserID:        req.UserID,
		InitialBudget: req.InitialBudget,
	}
	if err := s.store.AddTeamMember(c.Request.Context(), member); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, member)
}

func (s *Server) handleUpdateMemberBudget(c *gin.Context) {
	teamID := c.Param("teamID")
	if _, authorized := s.requireCreator(c, teamID); !authorized {
		return
	}

	memberID := c.Param("userID")
	if err := uuid.Validate(memberID); err != nil {
		badRequest(c, "invalid user id")
		return
	}

	var req budgetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid budget payload")
		return
	}
	if req.InitialBudget < 0 {
		badRequest(c, "initial_budget must not be negative")
		return
	}

	if err := s.store.UpdateMemberBudget(c.Request.Context(), teamID, memberID, req.InitialBudget); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"team_id": teamID, "user_id": memberID, "initial_budget": req.InitialBudget})
}

// handleRecalculateBudgets splits a team-wide budget equally across the
// current members.
func (s *Server) handleRecalculateBudgets(c *gin.Context) {
	teamID := c.Param("teamID")
	members, authorized := s.requireCreator(c, teamID)
	if !authorized {
		return
	}

	var req recalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid budget payload")
		return
	}
	if req.TotalBudget < 0 {
		badRequest(c, "total_budget must not be negative")
		return
	}

	perMember := s.engine.Round(req.TotalBudget / float64(len(members)))
	if err := s.store.SetTeamBudgets(c.Request.Context(), teamID, perMember); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"team_id":           teamID,
		"members":           len(members),
		"budget_per_member": perMember,
	})
}
