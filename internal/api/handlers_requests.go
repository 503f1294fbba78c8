package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createRequestPayload struct {
	ToID    string  `json:"to_id" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
	Message string  `json:"message"`
}

func (s *Server) handleCreateRequest(c *gin.Context) {
	teamID := c.Param("teamID")
	if _, authorized := s.requireMembership(c, teamID); !authorized {
		return
	}

	var req createRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid settlement request payload")
		return
	}
	if err := uuid.Validate(req.ToID); err != nil {
		badRequest(c, "invalid recipient id")
		return
	}

	created, err := s.requests.Create(c.Request.Context(), teamID, currentUserID(c), req.ToID, req.Amount, req.Message)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

func (s *Server) handleListRequests(c *gin.Context) {
	teamID := c.Param("teamID")
	if _, authorized := s.requireMembership(c, teamID); !authorized {
		return
	}

	views, err := s.requests.List(c.Request.Context(), teamID, currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, views)
}

func (s *Server) handleApproveRequest(c *gin.Context) {
	requestID := c.Param("requestID")
	if err := uuid.Validate(requestID); err != nil {
		badRequest(c, "invalid request id")
		return
	}

	approved, err := s.requests.Approve(c.Request.Context(), requestID, currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, approved)
}
