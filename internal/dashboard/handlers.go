package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/threatsentry/threatsentry/internal/agent"
	"github.com/threatsentry/threatsentry/internal/history"
)

// maxHistoryEntries caps the history view at the most recent entries.
const maxHistoryEntries = 50

type queryRequest struct {
	Query    string `json:"query"`
	Strategy string `json:"strategy"`
}

// Query handles POST /api/v1/query: runs a free-text question (IP, hash,
// or prose) through the selected agent strategy. Engine failures are
// surfaced as an {"error": ...} body, not an HTTP error: the query itself
// was valid, the upstream answer was not.
func (s *Server) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	strategy, err := agent.ParseStrategy(req.Strategy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := s.agents.New(strategy)
	if err != nil {
		s.logger.Error("agent construction failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	result, err := a.Invoke(c.Request.Context(), req.Query)
	recordQuery(string(strategy), err == nil)
	if err != nil {
		s.logger.Warn("agent query failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	// Tool-shaped answers are often themselves JSON; pass them through
	// unescaped when they are.
	var raw json.RawMessage
	if json.Unmarshal([]byte(result), &raw) == nil {
		c.JSON(http.StatusOK, gin.H{"result": raw})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// Alerts handles GET /api/v1/alerts?limit=N: the most recent triaged
// alerts, newest first, capped at maxHistoryEntries.
func (s *Server) Alerts(c *gin.Context) {
	limit := maxHistoryEntries
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	entries, err := s.store.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("history read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read alert history"})
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(entries),
		"alerts": entries,
	})
}
