package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pmehra/teamtab/internal/auth"
	"github.com/pmehra/teamtab/internal/ledger"
	"github.com/pmehra/teamtab/internal/notify"
	"github.com/pmehra/teamtab/internal/storage/sqlite"
	"github.com/pmehra/teamtab/internal/workflow"
)

type testEnv struct {
	router *gin.Engine
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := ledger.New(ledger.Config{})
	requests := workflow.New(store, &notify.LogNotifier{}, workflow.Config{})
	authn := auth.NewPasswordAuthenticator(store)
	jwt := auth.NewJWTManager("test-secret", time.Hour)

	server := NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, store, engine, requests, authn, jwt)
	return &testEnv{router: server.Router()}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func (e *testEnv) signup(t *testing.T, email, name string) (token, userID string) {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": email, "display_name": name, "password": "long enough",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d, body %s", email, w.Code, w.Body.String())
	}
	var session struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session.Token, session.User.ID
}

func (e *testEnv) createTeam(t *testing.T, token string, budget float64) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/teams", token, gin.H{
		"name": "Trip", "initial_budget": budget,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create team: status %d, body %s", w.Code, w.Body.String())
	}
	var team struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &team); err != nil {
		t.Fatalf("decode team: %v", err)
	}
	return team.ID
}

func (e *testEnv) addMember(t *testing.T, token, teamID, userID string, budget float64) {
	t.Helper()
	w, _ := e.do(t, http.MethodPost, "/api/teams/"+teamID+"/members", token, gin.H{
		"user_id": userID, "initial_budget": budget,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add member: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)

	token, _ := e.signup(t, "alice@example.com", "Alice")
	if token == "" {
		t.Fatal("signup returned empty token")
	}

	w, _ := e.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": "alice@example.com", "display_name": "Alicia", "password": "long enough",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", w.Code)
	}

	w, _ = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "long enough",
	})
	if w.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", w.Code)
	}

	w, _ = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}

	w, _ = e.do(t, http.MethodGet, "/api/teams", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", w.Code)
	}
}

func TestTeamAccessControl(t *testing.T) {
	e := newTestEnv(t)
	aliceToken, _ := e.signup(t, "alice@example.com", "Alice")
	mallToken, _ := e.signup(t, "mallory@example.com", "Mallory")
	teamID := e.createTeam(t, aliceToken, 100)

	// Outsiders see the team as missing, not forbidden.
	w, _ := e.do(t, http.MethodGet, "/api/teams/"+teamID, mallToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("outsider status = %d, want 404", w.Code)
	}

	w, _ = e.do(t, http.MethodGet, "/api/teams/not-a-uuid", aliceToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}

	// Budget recalculation is creator-only.
	bobToken, bobID := e.signup(t, "bob@example.com", "Bob")
	e.addMember(t, aliceToken, teamID, bobID, 100)
	w, _ = e.do(t, http.MethodPost, "/api/teams/"+teamID+"/budgets/recalculate", bobToken, gin.H{"total_budget": 300})
	if w.Code != http.StatusForbidden {
		t.Errorf("non-creator recalculate status = %d, want 403", w.Code)
	}
	w, _ = e.do(t, http.MethodPost, "/api/teams/"+teamID+"/budgets/recalculate", aliceToken, gin.H{"total_budget": 300})
	if w.Code != http.StatusOK {
		t.Errorf("creator recalculate status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestExpenseAndSummaryFlow(t *testing.T) {
	e := newTestEnv(t)
	aliceToken, aliceID := e.signup(t, "alice@example.com", "Alice")
	_, bobID := e.signup(t, "bob@example.com", "Bob")
	teamID := e.createTeam(t, aliceToken, 200)
	e.addMember(t, aliceToken, teamID, bobID, 150)

	// Alice pays 100, split between both.
	w, _ := e.do(t, http.MethodPost, "/api/teams/"+teamID+"/expenses", aliceToken, gin.H{
		"description":  "groceries",
		"amount":       100,
		"payer_id":     aliceID,
		"participants": []string{aliceID, bobID},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d, body %s", w.Code, w.Body.String())
	}

	w, _ = e.do(t, http.MethodPost, "/api/teams/"+teamID+"/expenses", aliceToken, gin.H{
		"description":  "nothing",
		"amount":       -5,
		"payer_id":     aliceID,
		"participants": []string{aliceID},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative amount status = %d, want 400", w.Code)
	}

	w, env := e.do(t, http.MethodGet, "/api/teams/"+teamID+"/summary/balances", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("balances: status %d, body %s", w.Code, w.Body.String())
	}
	var balanceBody struct {
		Balances map[string]float64 `json:"balances"`
	}
	if err := json.Unmarshal(env.Data, &balanceBody); err != nil {
		t.Fatalf("decode balances: %v", err)
	}
	if balanceBody.Balances[aliceID] != 50 || balanceBody.Balances[bobID] != -50 {
		t.Errorf("balances = %v, want alice +50, bob -50", balanceBody.Balances)
	}

	w, env = e.do(t, http.MethodGet, "/api/teams/"+teamID+"/summary/settlements", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("settlements: status %d", w.Code)
	}
	var planBody struct {
		Settlements []ledger.Transfer `json:"settlements"`
	}
	if err := json.Unmarshal(env.Data, &planBody); err != nil {
		t.Fatalf("decode settlements: %v", err)
	}
	if len(planBody.Settlements) != 1 || planBody.Settlements[0].From != bobID || planBody.Settlements[0].Amount != 50 {
		t.Errorf("settlements = %+v, want bob pays alice 50", planBody.Settlements)
	}

	w, env = e.do(t, http.MethodGet, "/api/teams/"+teamID+"/summary/next-payer", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("next payer: status %d", w.Code)
	}
	var next ledger.NextPayer
	if err := json.Unmarshal(env.Data, &next); err != nil {
		t.Fatalf("decode next payer: %v", err)
	}
	if next.MemberID != bobID {
		t.Errorf("next payer = %s, want bob", next.MemberID)
	}

	// Alice has spent 100 of her 200 budget; bob nothing of his 150. Bob
	// has the most remaining, so he is the optimal payer for 100.
	w, env = e.do(t, http.MethodPost, "/api/teams/"+teamID+"/budget/suggest-payer", aliceToken, gin.H{"amount": 100})
	if w.Code != http.StatusOK {
		t.Fatalf("suggest payer: status %d, body %s", w.Code, w.Body.String())
	}
	var suggestBody struct {
		Suggestion *ledger.Suggestion `json:"suggestion"`
	}
	if err := json.Unmarshal(env.Data, &suggestBody); err != nil {
		t.Fatalf("decode suggestion: %v", err)
	}
	if suggestBody.Suggestion == nil || suggestBody.Suggestion.Payer.MemberID != bobID {
		t.Errorf("suggestion = %+v, want bob", suggestBody.Suggestion)
	}
}

func TestSettlementRequestFlow(t *testing.T) {
	e := newTestEnv(t)
	aliceToken, _ := e.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := e.signup(t, "bob@example.com", "Bob")
	teamID := e.createTeam(t, aliceToken, 200)
	e.addMember(t, aliceToken, teamID, bobID, 200)

	w, env := e.do(t, http.MethodPost, "/api/teams/"+teamID+"/settlement-requests", aliceToken, gin.H{
		"to_id": bobID, "amount": 40, "message": "dinner",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create request: status %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if created.Status != "PENDING" {
		t.Errorf("status = %s, want PENDING", created.Status)
	}

	// Duplicate pending in the same direction.
	w, _ = e.do(t, http.MethodPost, "/api/teams/"+teamID+"/settlement-requests", aliceToken, gin.H{
		"to_id": bobID, "amount": 10,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}

	approvePath := fmt.Sprintf("/api/settlement-requests/%s/approve", created.ID)

	// The sender cannot approve their own request.
	w, _ = e.do(t, http.MethodPost, approvePath, aliceToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("sender approve status = %d, want 403", w.Code)
	}

	w, _ = e.do(t, http.MethodPost, approvePath, bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: status %d, body %s", w.Code, w.Body.String())
	}

	// A second approval is a state conflict.
	w, _ = e.do(t, http.MethodPost, approvePath, bobToken, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("double approve status = %d, want 409", w.Code)
	}

	w, env = e.do(t, http.MethodGet, "/api/teams/"+teamID+"/settlement-requests", bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list requests: status %d", w.Code)
	}
	var views []workflow.RequestView
	if err := json.Unmarshal(env.Data, &views); err != nil {
		t.Fatalf("decode views: %v", err)
	}
	if len(views) != 1 || views[0].Direction != "received" {
		t.Errorf("views = %+v, want one received request", views)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	w, _ := e.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", w.Code)
	}
}
