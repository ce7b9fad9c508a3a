package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/google/uuid"
)

// ErrQueueFull indica que a fila de análises assíncronas está cheia
var ErrQueueFull = errors.New("fila de processamento cheia")

// ErrQueueStopped indica que a fila já foi encerrada
var ErrQueueStopped = errors.New("fila de processamento encerrada")

// AnalysisJob é uma análise cujo resultado vai para um webhook
type AnalysisJob struct {
	ID         string
	Options    AnalysisOptions
	WebhookURL string
	Workbook   bool
}

// AnalysisQueue processa análises em background e entrega o resultado via webhook
type AnalysisQueue struct {
	analysis *AnalysisService
	webhook  *WebhookService
	excel    *ExcelGenerator

	jobs       chan AnalysisJob
	workers    int
	jobTimeout time.Duration

	processorCtx    context.Context
	processorCancel context.CancelFunc
	processorWg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// QueueConfig configura a fila
type QueueConfig struct {
	Workers    int
	Capacity   int
	JobTimeout time.Duration
}

// NewAnalysisQueue cria a fila; Start precisa ser chamado antes de Enqueue
func NewAnalysisQueue(analysis *AnalysisService, webhook *WebhookService, cfg QueueConfig) *AnalysisQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 16
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &AnalysisQueue{
		analysis:        analysis,
		webhook:         webhook,
		excel:           NewExcelGenerator(),
		jobs:            make(chan AnalysisJob, cfg.Capacity),
		workers:         cfg.Workers,
		jobTimeout:      cfg.JobTimeout,
		processorCtx:    ctx,
		processorCancel: cancel,
	}
}

// Start inicia os workers
func (q *AnalysisQueue) Start() {
	logger.Global().Info().Int("workers", q.workers).Msg("Iniciando fila de análises")
	for i := 0; i < q.workers; i++ {
		q.processorWg.Add(1)
		go q.worker()
	}
}

// Stop para de aceitar jobs, espera os pendentes e encerra os workers
func (q *AnalysisQueue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	q.processorWg.Wait()
	q.processorCancel()
	logger.Global().Info().Msg("Fila de análises parada")
}

// Enqueue agenda a análise e retorna o ID que identifica a operação (websocket e run_id)
func (q *AnalysisQueue) Enqueue(job AnalysisJob) (string, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.Options.RunID = job.ID

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return "", ErrQueueStopped
	}

	select {
	case q.jobs <- job:
		logger.Global().Info().
			Str("operation_id", job.ID).
			Str("username", job.Options.Username).
			Str("webhook", job.WebhookURL).
			Msg("Análise adicionada à fila")
		return job.ID, nil
	default:
		return "", ErrQueueFull
	}
}

func (q *AnalysisQueue) worker() {
	defer q.processorWg.Done()
	for job := range q.jobs {
		q.process(job)
	}
}

func (q *AnalysisQueue) process(job AnalysisJob) {
	ctx, cancel := context.WithTimeout(q.processorCtx, q.jobTimeout)
	defer cancel()
	ctx = logger.WithOperationID(ctx, job.ID)
	log := logger.Get(ctx)

	result, err := q.analysis.Analyze(ctx, job.Options)
	if err != nil {
		if werr := q.webhook.SendError(ctx, job.WebhookURL, err); werr != nil {
			log.Error().Err(werr).Msg("Erro ao enviar webhook de erro")
		}
		return
	}

	data := BuildExport(result)
	if job.Workbook {
		buf, err := q.excel.Generate(result)
		if err == nil {
			err = q.webhook.SendWorkbook(ctx, job.WebhookURL, data, buf.Bytes())
		}
		if err != nil {
			log.Error().Err(err).Msg("Erro ao enviar planilha ao webhook")
		}
		return
	}

	if err := q.webhook.SendAnalysis(ctx, job.WebhookURL, data); err != nil {
		log.Error().Err(err).Msg("Erro ao enviar webhook de sucesso")
	}
}
