package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/cleberrangel/clickup-task-analyzer/internal/service"
	"github.com/gin-gonic/gin"
)

// respondError traduz erros de domínio em status HTTP
func respondError(c *gin.Context, err error) {
	status, msg, details := classifyError(err)

	log := logger.FromGin(c)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Erro ao processar requisição")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("Requisição rejeitada")
	}

	c.JSON(status, model.ErrorResponse{
		Success: false,
		Error:   msg,
		Details: details,
	})
}

func classifyError(err error) (int, string, string) {
	var remote *model.RemoteRequestError

	switch {
	case errors.Is(err, model.ErrInvalidRequest), errors.Is(err, model.ErrInvalidWindow):
		return http.StatusBadRequest, "requisição inválida", err.Error()
	case errors.Is(err, model.ErrUserNotFound):
		return http.StatusNotFound, "usuário não encontrado", err.Error()
	case errors.Is(err, model.ErrNoTeams):
		return http.StatusNotFound, "nenhum time disponível", "a chave do ClickUp não tem acesso a nenhum time"
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit excedido", "aguarde alguns segundos e tente novamente"
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, "token do ClickUp inválido", "verifique a variável CLICKUP_API_KEY"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "recurso não encontrado no ClickUp", err.Error()
	case errors.Is(err, service.ErrQueueFull), errors.Is(err, service.ErrQueueStopped):
		return http.StatusServiceUnavailable, "fila de processamento indisponível", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout na requisição", "a API do ClickUp demorou muito para responder"
	case errors.As(err, &remote):
		return http.StatusBadGateway, "erro na API do ClickUp", err.Error()
	default:
		return http.StatusInternalServerError, "erro interno", err.Error()
	}
}
