package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmehra/teamtab/internal/models"
)

type signupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid signup payload")
		return
	}

	user, err := s.authn.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, sessionResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid login payload")
		return
	}

	user, err := s.authn.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, sessionResponse{Token: token, User: toUserResponse(user)})
}
