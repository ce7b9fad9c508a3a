package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WebhookPayload é o corpo JSON enviado ao webhook
type WebhookPayload struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Data    *model.ExportData `json:"data,omitempty"`
}

// WebhookService envia resultados de análise para um webhook
type WebhookService struct {
	httpClient *http.Client
}

// NewWebhookService cria um novo serviço de webhook. timeout <= 0 usa 30s.
func NewWebhookService(timeout time.Duration) *WebhookService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookService{httpClient: &http.Client{Timeout: timeout}}
}

// SendAnalysis envia o export como JSON
func (w *WebhookService) SendAnalysis(ctx context.Context, webhookURL string, data model.ExportData) error {
	return w.sendJSON(ctx, webhookURL, WebhookPayload{Success: true, Data: &data})
}

// SendError avisa o webhook que a análise falhou
func (w *WebhookService) SendError(ctx context.Context, webhookURL string, err error) error {
	return w.sendJSON(ctx, webhookURL, WebhookPayload{Success: false, Error: err.Error()})
}

// SendWorkbook envia a planilha como multipart junto com o resumo
func (w *WebhookService) SendWorkbook(ctx context.Context, webhookURL string, data model.ExportData, xlsx []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := []struct{ name, value string }{
		{"success", "true"},
		{"run_id", data.RunID},
		{"username", data.User.Username},
		{"total_tasks", strconv.Itoa(data.Summary.TotalTasks)},
		{"total_hours", strconv.FormatFloat(data.Summary.TotalHours, 'f', -1, 64)},
		{"file_mime", xlsxMime},
	}
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	part, err := writer.CreateFormFile("file", ExportFileName(data.User.Username, "analysis.xlsx"))
	if err != nil {
		return fmt.Errorf("criar form file: %w", err)
	}
	if _, err := part.Write(xlsx); err != nil {
		return fmt.Errorf("copiar arquivo: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("fechar writer: %w", err)
	}

	return w.post(ctx, webhookURL, writer.FormDataContentType(), &body)
}

func (w *WebhookService) sendJSON(ctx context.Context, webhookURL string, payload WebhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return w.post(ctx, webhookURL, "application/json", bytes.NewReader(jsonData))
}

func (w *WebhookService) post(ctx context.Context, webhookURL, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, body)
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("enviar webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook retornou status %d: %s", resp.StatusCode, string(respBody))
	}

	logger.Get(ctx).Info().
		Str("url", webhookURL).
		Int("status", resp.StatusCode).
		Str("content_type", contentType).
		Msg("Webhook enviado com sucesso")
	return nil
}
