// Package api exposes the ledger engine and settlement workflow over HTTP.
// It is a thin adapter: request decoding, auth and error mapping live here;
// all domain behavior lives in the engine, workflow and storage packages.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pmehra/teamtab/internal/auth"
	"github.com/pmehra/teamtab/internal/ledger"
	"github.com/pmehra/teamtab/internal/storage"
	"github.com/pmehra/teamtab/internal/workflow"
)

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server wires the router to the domain services.
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine

	store    storage.Store
	engine   *ledger.Engine
	requests *workflow.Service
	authn    auth.Authenticator
	jwt      *auth.JWTManager
}

// NewServer builds the router with all routes and middleware registered.
func NewServer(
	config ServerConfig,
	store storage.Store,
	engine *ledger.Engine,
	requests *workflow.Service,
	authn auth.Authenticator,
	jwt *auth.JWTManager,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:   config,
		router:   gin.New(),
		store:    store,
		engine:   engine,
		requests: requests,
		authn:    authn,
		jwt:      jwt,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestMiddleware())

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	authed := api.Group("")
	authed.Use(s.authMiddleware())
	{
		authed.POST("/teams", s.handleCreateTeam)
		authed.GET("/teams", s.handleListTeams)
		authed.GET("/teams/:teamID", s.handleGetTeam)
		authed.POST("/teams/:teamID/members", s.handleAddMember)
		authed.PUT("/teams/:teamID/members/:userID/budget", s.handleUpdateMemberBudget)
		authed.POST("/teams/:teamID/budgets/recalculate", s.handleRecalculateBudgets)

		authed.POST("/teams/:teamID/expenses", s.handleCreateExpense)
		authed.GET("/teams/:teamID/expenses", s.handleListExpenses)
		authed.DELETE("/teams/:teamID/expenses/:expenseID", s.handleDeleteExpense)

		authed.GET("/teams/:teamID/summary/balances", s.handleBalances)
		authed.GET("/teams/:teamID/summary/settlements", s.handleSettlements)
		authed.GET("/teams/:teamID/summary/next-payer", s.handleNextPayer)

		authed.GET("/teams/:teamID/budget/status", s.handleBudgetStatus)
		authed.GET("/teams/:teamID/budget/insights", s.handleBudgetInsights)
		authed.POST("/teams/:teamID/budget/suggest-payer", s.handleSuggestPayer)

		authed.POST("/teams/:teamID/settlement-requests", s.handleCreateRequest)
		authed.GET("/teams/:teamID/settlement-requests", s.handleListRequests)
		authed.POST("/settlement-requests/:requestID/approve", s.handleApproveRequest)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"status": "healthy"})
}

// Start runs the HTTP server until ctx is canceled, then shuts it down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	slog.Info("starting http server", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		return err
	}
}

// Stop shuts the server down, waiting up to ten seconds for in-flight
// requests.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("stopping http server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
