package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/middleware"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/cleberrangel/clickup-task-analyzer/internal/service"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalysisHandler manipula requisições de análise
type AnalysisHandler struct {
	analysis *service.AnalysisService
	excel    *service.ExcelGenerator
	queue    *service.AnalysisQueue
}

// NewAnalysisHandler cria o handler. queue nil desliga o modo webhook.
func NewAnalysisHandler(analysis *service.AnalysisService, queue *service.AnalysisQueue) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		excel:    service.NewExcelGenerator(),
		queue:    queue,
	}
}

// RunAnalysis executa a análise e retorna o export JSON
// @Summary      Analisa estimativas de tempo de um usuário
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.AnalysisRequest true "Parâmetros da análise"
// @Success      200 {object} model.Response
// @Success      202 {object} model.Response "Quando webhook_url é fornecido"
// @Failure      400 {object} model.ErrorResponse
// @Failure      404 {object} model.ErrorResponse
// @Failure      502 {object} model.ErrorResponse
// @Router       /api/v1/analysis [post]
func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	h.handle(c, false)
}

// ExportXLSX executa a análise e retorna a planilha
// @Summary      Exporta a análise em Excel
// @Tags         analysis
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        request body model.AnalysisRequest true "Parâmetros da análise"
// @Router       /api/v1/analysis/xlsx [post]
func (h *AnalysisHandler) ExportXLSX(c *gin.Context) {
	h.handle(c, true)
}

func (h *AnalysisHandler) handle(c *gin.Context, workbook bool) {
	var req model.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	req.Username = middleware.SanitizeQuery(req.Username)
	req.TeamID = middleware.SanitizeID(req.TeamID)
	req.StatusFilter = middleware.SanitizeStatuses(req.StatusFilter)

	opts, err := service.ParseRequest(req, h.analysis.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	if req.WebhookURL != "" && h.queue != nil {
		id, err := h.queue.Enqueue(service.AnalysisJob{Options: opts, WebhookURL: req.WebhookURL, Workbook: workbook})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, model.Response{
			Success: true,
			Data:    gin.H{"operation_id": id, "status": "queued"},
		})
		return
	}

	result, err := h.analysis.Analyze(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	if !workbook {
		c.JSON(http.StatusOK, model.Response{Success: true, Data: service.BuildExport(result)})
		return
	}

	buf, err := h.excel.Generate(result)
	if err != nil {
		respondError(c, fmt.Errorf("gerar excel: %w", err))
		return
	}

	filename := service.ExportFileName(result.User.Username, fmt.Sprintf("analysis_%s.xlsx", h.analysis.Now().Format("2006-01-02_15-04-05")))
	logger.FromGin(c).Info().Str("run_id", result.RunID).Int("bytes", buf.Len()).Msg("Planilha gerada")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("X-Run-ID", result.RunID)
	c.Header("X-Total-Tasks", strconv.Itoa(result.Range.Aggregate.TotalTasks))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ResolveUser busca um membro do time por parte do nome ou email
// @Summary      Resolve usuário do ClickUp
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q       query string true  "Parte do nome ou email"
// @Param        team_id query string false "Time (padrão: primeiro disponível)"
// @Router       /api/v1/users/resolve [get]
func (h *AnalysisHandler) ResolveUser(c *gin.Context) {
	q := middleware.SanitizeQuery(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "parâmetro q obrigatório",
		})
		return
	}

	res, err := h.analysis.ResolveUser(c.Request.Context(), q, middleware.SanitizeID(c.Query("team_id")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{Success: true, Data: res})
}
