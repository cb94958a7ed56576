// Package api serves the fight server's read-only HTTP status endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/arena"
	"github.com/cory-johannsen/fightsim/internal/game/bout"
)

// healthTimeout bounds each dependency check made by /health.
const healthTimeout = 2 * time.Second

// BoutSource exposes running and finished bouts.
type BoutSource interface {
	Live() []string
	Finished() []string
	Snapshot(id string) (bout.State, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context, timeout time.Duration) error
}

// Handler serves the bout endpoints.
type Handler struct {
	bouts  BoutSource
	health HealthChecker
	logger *zap.Logger
}

// NewRouter builds the gin engine with every route registered. health may be
// nil when the server runs without a database.
//
// Precondition: bouts and logger must be non-nil.
func NewRouter(bouts BoutSource, health HealthChecker, logger *zap.Logger) *gin.Engine {
	h := &Handler{bouts: bouts, health: health, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), h.logRequests)
	r.GET("/health", h.Health)
	r.GET("/bouts", h.ListBouts)
	r.GET("/bouts/:id", h.GetBout)
	r.GET("/bouts/:id/actions", h.GetActions)
	return r
}

func (h *Handler) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.logger.Debug("http request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// Health reports 200 when every dependency answers, else 503.
func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Health(c.Request.Context(), healthTimeout); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListBouts returns the ids of live and recently finished bouts.
func (h *Handler) ListBouts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"live":     h.bouts.Live(),
		"finished": h.bouts.Finished(),
	})
}

// GetBout returns a bout snapshot, or 404 when the id is unknown.
func (h *Handler) GetBout(c *gin.Context) {
	s, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetActions returns the bout's actions in order. The optional since query
// parameter skips that many leading actions so clients can poll.
func (h *Handler) GetActions(c *gin.Context) {
	since := 0
	if v := c.Query("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be a non-negative integer"})
			return
		}
		since = n
	}
	s, ok := h.snapshot(c)
	if !ok {
		return
	}
	actions := s.Actions()
	if since > len(actions) {
		since = len(actions)
	}
	c.JSON(http.StatusOK, gin.H{
		"complete": s.Complete,
		"total":    len(actions),
		"actions":  actions[since:],
	})
}

func (h *Handler) snapshot(c *gin.Context) (bout.State, bool) {
	id := c.Param("id")
	s, err := h.bouts.Snapshot(id)
	switch {
	case errors.Is(err, arena.ErrBoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "bout not found", "id": id})
		return bout.State{}, false
	case err != nil:
		h.logger.Error("bout snapshot", zap.String("bout_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return bout.State{}, false
	}
	return s, true
}
