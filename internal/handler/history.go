package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/cleberrangel/clickup-task-analyzer/internal/repository"
	"github.com/gin-gonic/gin"
)

// HistoryLister lista execuções gravadas
type HistoryLister interface {
	List(ctx context.Context, f repository.HistoryFilter) ([]model.AnalysisRun, error)
}

// HistoryHandler expõe o histórico de análises
type HistoryHandler struct {
	repo HistoryLister
}

// NewHistoryHandler cria o handler. repo nil responde 503 (histórico desabilitado).
func NewHistoryHandler(repo HistoryLister) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// ListHistory retorna as últimas execuções
// @Summary      Lista o histórico de análises
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query int false "Máximo de registros (padrão 50)"
// @Param        user_id query int false "Filtra por usuário do ClickUp"
// @Router       /api/v1/history [get]
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Success: false,
			Error:   "histórico desabilitado",
			Details: "configure DATABASE_URL",
		})
		return
	}

	var f repository.HistoryFilter
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Success: false, Error: "limit inválido"})
			return
		}
		f.Limit = limit
	}
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Success: false, Error: "user_id inválido"})
			return
		}
		f.UserID = id
	}

	runs, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Data: runs})
}
