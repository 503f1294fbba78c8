package api

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pmehra/teamtab/internal/auth"
	"github.com/pmehra/teamtab/internal/metrics"
)

const userIDKey = "user_id"

// authMiddleware validates the bearer token and stashes the user id in the
// gin context for the handlers.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			fail(c, auth.ErrMissingToken)
			return
		}
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			fail(c, auth.ErrInvalidToken)
			return
		}

		claims, err := s.jwt.Validate(token)
		if err != nil {
			fail(c, err)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// requestMiddleware logs every request and feeds the duration histogram.
func requestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(status),
		).Observe(float64(elapsed.Milliseconds()))

		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", elapsed.String(),
			"client_ip", c.ClientIP(),
		)
	}
}
