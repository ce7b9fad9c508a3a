package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/metrics"
	"github.com/cleberrangel/clickup-task-analyzer/internal/websocket"
	"github.com/gin-gonic/gin"
)

// HealthCheck é a resposta de /health
type HealthCheck struct {
	Status     string                          `json:"status"`
	Version    string                          `json:"version"`
	Uptime     string                          `json:"uptime"`
	Timestamp  string                          `json:"timestamp"`
	Components map[string]metrics.HealthStatus `json:"components"`
}

// HealthHandler responde health check e métricas
type HealthHandler struct {
	db        *sql.DB
	wsHub     *websocket.Hub
	version   string
	startTime time.Time
}

// NewHealthHandler cria o handler; db e wsHub podem ser nil
func NewHealthHandler(db *sql.DB, wsHub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		wsHub:     wsHub,
		version:   version,
		startTime: time.Now(),
	}
}

// Health retorna o estado dos componentes
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthCheck
// @Failure 503 {object} HealthCheck
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"database":  metrics.CheckDatabaseHealth(h.db),
		"clickup":   h.checkClickUpHealth(),
		"websocket": h.checkWebSocketHealth(),
	}

	overall := metrics.DetermineOverallStatus(components)
	status := http.StatusOK
	if overall == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, HealthCheck{
		Status:     overall,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	})
}

// checkClickUpHealth marca degradado quando mais da metade das chamadas ao ClickUp falhou
func (h *HealthHandler) checkClickUpHealth() metrics.HealthStatus {
	snap := metrics.Get().Snapshot()
	if snap.ClickUp.Requests >= 10 && snap.ClickUp.Errors*2 > snap.ClickUp.Requests {
		return metrics.HealthStatus{Status: "degraded", Message: "alta taxa de erro na API do ClickUp"}
	}
	return metrics.HealthStatus{Status: "healthy"}
}

func (h *HealthHandler) checkWebSocketHealth() metrics.HealthStatus {
	if h.wsHub == nil {
		return metrics.HealthStatus{Status: "disabled"}
	}
	return metrics.HealthStatus{Status: "healthy"}
}

// GetMetrics retorna o snapshot de métricas
// @Summary Métricas da aplicação
// @Tags metrics
// @Produce json
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Get().Snapshot())
}
