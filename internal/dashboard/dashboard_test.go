package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/threatsentry/threatsentry/internal/agent"
	"github.com/threatsentry/threatsentry/internal/alert"
	"github.com/threatsentry/threatsentry/internal/config"
	"github.com/threatsentry/threatsentry/internal/dashboard"
	"github.com/threatsentry/threatsentry/internal/history"
)

// ── stubs ───────────────────────────────────────────────────────────────

type stubAgent struct {
	out string
	err error
}

func (a stubAgent) Invoke(context.Context, string) (string, error) {
	return a.out, a.err
}

type stubProvider struct {
	agent      agent.Agent
	newErr     error
	strategies []agent.Strategy
}

func (p *stubProvider) New(s agent.Strategy) (agent.Agent, error) {
	p.strategies = append(p.strategies, s)
	if p.newErr != nil {
		return nil, p.newErr
	}
	return p.agent, nil
}

func setupRouter(t *testing.T, store history.Store, provider dashboard.AgentProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{CORSOrigins: []string{"*"}}
	return dashboard.NewServer(cfg, store, provider, zap.NewNop()).Router()
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ── tests ───────────────────────────────────────────────────────────────

func TestHealthz(t *testing.T) {
	router := setupRouter(t, history.NewMemoryStore(), &stubProvider{agent: stubAgent{}})
	w := doJSON(router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestQuery_success(t *testing.T) {
	provider := &stubProvider{agent: stubAgent{out: "the IP is benign"}}
	router := setupRouter(t, history.NewMemoryStore(), provider)

	w := doJSON(router, http.MethodPost, "/api/v1/query", `{"query":"1.2.3.4","strategy":"react"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["result"] != "the IP is benign" {
		t.Errorf("result: %v", resp["result"])
	}
	if len(provider.strategies) != 1 || provider.strategies[0] != agent.StrategyReAct {
		t.Errorf("strategies: %v", provider.strategies)
	}
}

func TestQuery_jsonResultPassedThrough(t *testing.T) {
	provider := &stubProvider{agent: stubAgent{out: `{"threat_score":18,"risk_level":"High"}`}}
	router := setupRouter(t, history.NewMemoryStore(), provider)

	w := doJSON(router, http.MethodPost, "/api/v1/query", `{"query":"score 1.2.3.4"}`)
	var resp struct {
		Result struct {
			Score int    `json:"threat_score"`
			Risk  string `json:"risk_level"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v: %s", err, w.Body.String())
	}
	if resp.Result.Score != 18 || resp.Result.Risk != "High" {
		t.Errorf("result: %+v", resp.Result)
	}
}

func TestQuery_agentErrorIsErrorObject(t *testing.T) {
	provider := &stubProvider{agent: stubAgent{err: errors.New("model unavailable")}}
	router := setupRouter(t, history.NewMemoryStore(), provider)

	w := doJSON(router, http.MethodPost, "/api/v1/query", `{"query":"1.2.3.4"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("agent failure should still be 200, got %d", w.Code)
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] == nil || !strings.Contains(resp["error"].(string), "model unavailable") {
		t.Errorf("expected error object, got %s", w.Body.String())
	}
}

func TestQuery_validation(t *testing.T) {
	router := setupRouter(t, history.NewMemoryStore(), &stubProvider{agent: stubAgent{}})

	for name, body := range map[string]string{
		"empty query":  `{"query":""}`,
		"bad strategy": `{"query":"x","strategy":"banana"}`,
		"not json":     `{]`,
	} {
		w := doJSON(router, http.MethodPost, "/api/v1/query", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestAlerts_newestFirstAndCapped(t *testing.T) {
	store := history.NewMemoryStore()
	for i := 0; i < 60; i++ {
		store.Append(context.Background(), history.Entry{
			Alert:  mustAlert(t, fmt.Sprintf(`{"id":"a-%d","severity":"low"}`, i)),
			Triage: "Low Severity",
		})
	}
	router := setupRouter(t, store, &stubProvider{agent: stubAgent{}})

	w := doJSON(router, http.MethodGet, "/api/v1/alerts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Count  int             `json:"count"`
		Alerts []history.Entry `json:"alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 50 {
		t.Errorf("count: got %d, want 50", resp.Count)
	}
	if resp.Alerts[0].Alert.ID != "a-59" {
		t.Errorf("newest entry: %q", resp.Alerts[0].Alert.ID)
	}
}

func TestAlerts_limitParam(t *testing.T) {
	store := history.NewMemoryStore()
	for i := 0; i < 10; i++ {
		store.Append(context.Background(), history.Entry{
			Alert:  mustAlert(t, fmt.Sprintf(`{"id":"a-%d"}`, i)),
			Triage: "Unknown severity",
		})
	}
	router := setupRouter(t, store, &stubProvider{agent: stubAgent{}})

	w := doJSON(router, http.MethodGet, "/api/v1/alerts?limit=3", "")
	var resp struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 3 {
		t.Errorf("count: got %d, want 3", resp.Count)
	}

	w = doJSON(router, http.MethodGet, "/api/v1/alerts?limit=0", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("limit=0: expected 400, got %d", w.Code)
	}
	w = doJSON(router, http.MethodGet, "/api/v1/alerts?limit=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("limit=abc: expected 400, got %d", w.Code)
	}
}

func TestAlerts_emptyHistory(t *testing.T) {
	router := setupRouter(t, history.NewMemoryStore(), &stubProvider{agent: stubAgent{}})
	w := doJSON(router, http.MethodGet, "/api/v1/alerts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"alerts":[]`) {
		t.Errorf("expected empty alerts array, got %s", w.Body.String())
	}
}

func TestIndex_served(t *testing.T) {
	router := setupRouter(t, history.NewMemoryStore(), &stubProvider{agent: stubAgent{}})
	w := doJSON(router, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Threat Intelligence Dashboard") {
		t.Error("index page missing title")
	}
}

func mustAlert(t *testing.T, raw string) (a alert.Record) {
	t.Helper()
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatal(err)
	}
	return a
}
