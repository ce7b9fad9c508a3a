package middleware

import (
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID é o header HTTP para request ID
const HeaderRequestID = "X-Request-ID"

// probes de health/metrics só aparecem em debug
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestID adiciona request_id a cada requisição e loga uma linha ao final
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Reaproveita o ID do header (sanitizado) ou gera um curto
		requestID := SanitizeID(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.New().String()[:8]
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		log := logger.Get(ctx)

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		case quietPaths[c.Request.URL.Path]:
			event = log.Debug()
		default:
			event = log.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("Requisição concluída")
	}
}
