package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmehra/teamtab/internal/auth"
	"github.com/pmehra/teamtab/internal/ledger"
	"github.com/pmehra/teamtab/internal/storage"
	"github.com/pmehra/teamtab/internal/workflow"
)

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// fail maps domain sentinel errors onto HTTP status codes. Anything
// unrecognized is a 500 with a generic message; the detail goes to the log,
// not the client.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, workflow.ErrAmountNotPositive),
		errors.Is(err, workflow.ErrSelfSettlement),
		errors.Is(err, ledger.ErrAmountNotPositive),
		errors.Is(err, ledger.ErrEmptyParticipants),
		errors.Is(err, auth.ErrWeakPassword):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, workflow.ErrNotRecipient),
		errors.Is(err, errForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, workflow.ErrNotTeamMember):
		// Teams a caller does not belong to look exactly like teams that
		// do not exist.
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, workflow.ErrRequestNotFound),
		errors.Is(err, storage.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, workflow.ErrDuplicatePending),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, storage.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, workflow.ErrNotPending),
		errors.Is(err, workflow.ErrRequestExpired):
		status, msg = http.StatusConflict, err.Error()
	default:
		slog.Error("request failed", "error", err, "path", c.Request.URL.Path)
	}

	c.AbortWithStatusJSON(status, Response{Success: false, Error: msg})
}

var errForbidden = errors.New("operation restricted to the team creator")

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}
