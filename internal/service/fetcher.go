package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/client"
	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/metrics"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"golang.org/x/time/rate"
)

const (
	// MaxPages limita a paginação caso a API nunca sinalize a última página
	MaxPages = 500

	// progressEvery intervalo de tarefas entre eventos de progresso
	progressEvery = 5
)

// TaskAPI é a parte do cliente ClickUp usada para buscar e enriquecer tarefas
type TaskAPI interface {
	GetTeamTasks(ctx context.Context, teamID string, q client.TaskQuery) (*model.TaskResponse, error)
	GetTaskComments(ctx context.Context, taskID string) ([]model.Comment, error)
	GetTaskTimeEntries(ctx context.Context, taskID string) ([]model.TimeEntry, error)
}

// Waiter bloqueia até a próxima chamada ser permitida. *rate.Limiter satisfaz.
type Waiter interface {
	Wait(ctx context.Context) error
}

// ProgressReporter recebe eventos de andamento (hub websocket, CLI)
type ProgressReporter interface {
	Report(ctx context.Context, p model.Progress)
}

// NewRequestLimiter cria o limitador do enriquecimento: uma chamada a cada interval.
// interval <= 0 desliga o limite.
func NewRequestLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// TaskFetcher pagina as tarefas de um assignee e opcionalmente as enriquece
type TaskFetcher struct {
	api      TaskAPI
	limiter  Waiter
	progress ProgressReporter
}

// NewTaskFetcher cria um novo fetcher. limiter nil equivale a sem limite; progress pode ser nil.
func NewTaskFetcher(api TaskAPI, limiter Waiter, progress ProgressReporter) *TaskFetcher {
	if limiter == nil {
		limiter = NewRequestLimiter(0)
	}
	return &TaskFetcher{api: api, limiter: limiter, progress: progress}
}

// FetchTasks pagina GET /team/{id}/task a partir da página 0 com as tarefas do assignee
// atualizadas dentro da janela (incluindo fechadas e subtarefas).
//
// Para numa página vazia ou quando a API sinaliza a última página. Erro na primeira
// página é retornado; erro numa página seguinte é logado e encerra a paginação
// mantendo o que já foi coletado. O filtro de status é aplicado por página e o
// resultado não tem IDs repetidos.
func (f *TaskFetcher) FetchTasks(ctx context.Context, assigneeID int64, teamID string, window model.DateWindow, filter StatusFilter) ([]model.Task, error) {
	log := logger.Get(ctx)

	var all []model.Task
	seen := make(map[string]struct{})

	for page := 0; page < MaxPages; page++ {
		resp, err := f.api.GetTeamTasks(ctx, teamID, client.TaskQuery{
			AssigneeID:    assigneeID,
			Page:          page,
			Window:        window,
			IncludeClosed: true,
			Subtasks:      true,
		})
		if err != nil {
			metrics.Get().IncrementPage(0, false)
			if page == 0 {
				return nil, err
			}
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			log.Warn().
				Str("team_id", teamID).
				Int("page", page).
				Int("collected", len(all)).
				Err(err).
				Msg("Falha na página, mantendo tarefas já coletadas")
			break
		}

		metrics.Get().IncrementPage(len(resp.Tasks), true)
		if len(resp.Tasks) == 0 {
			break
		}

		kept := 0
		for _, task := range resp.Tasks {
			if !filter.Matches(task) {
				continue
			}
			if _, dup := seen[task.ID]; dup {
				continue
			}
			seen[task.ID] = struct{}{}
			all = append(all, task)
			kept++
		}

		log.Info().
			Str("team_id", teamID).
			Int("page", page).
			Int("page_tasks", len(resp.Tasks)).
			Int("kept", kept).
			Int("total", len(all)).
			Bool("last_page", resp.IsLastPage()).
			Msg("Tasks coletadas")

		f.report(ctx, model.Progress{
			Stage:   "fetch",
			Current: page + 1,
			Message: fmt.Sprintf("página %d: %d tarefas", page, len(all)),
		})

		if resp.IsLastPage() {
			break
		}
		if page == MaxPages-1 {
			log.Warn().Int("max_pages", MaxPages).Msg("Limite de páginas atingido")
		}
	}

	return all, nil
}

// Enrich anexa comentários e time tracking a cada tarefa, sequencialmente, esperando o
// limiter antes de cada chamada. Falha numa tarefa deixa as duas listas vazias só nela.
// Retorna uma cópia; o slice de entrada não é alterado.
func (f *TaskFetcher) Enrich(ctx context.Context, tasks []model.Task) []model.Task {
	log := logger.Get(ctx)
	out := make([]model.Task, len(tasks))
	copy(out, tasks)

	if len(out) > 0 {
		log.Info().Int("tasks", len(out)).Msg("Buscando comentários e time tracking")
	}

	for i := range out {
		if ctx.Err() != nil {
			log.Warn().Int("remaining", len(out)-i).Err(ctx.Err()).Msg("Enriquecimento interrompido")
			for j := i; j < len(out); j++ {
				out[j].Comments = []model.Comment{}
				out[j].TimeEntries = []model.TimeEntry{}
			}
			break
		}

		comments, entries, err := f.enrichOne(ctx, out[i].ID)
		if err != nil {
			log.Warn().
				Str("task_id", out[i].ID).
				Err(err).
				Msg("Falha no enriquecimento, seguindo sem comentários/time tracking")
			comments = []model.Comment{}
			entries = []model.TimeEntry{}
			metrics.Get().IncrementEnrichment(false)
		} else {
			metrics.Get().IncrementEnrichment(true)
		}
		out[i].Comments = comments
		out[i].TimeEntries = entries

		done := i + 1
		if done%progressEvery == 0 || done == len(out) {
			log.Info().Int("processed", done).Int("total", len(out)).Msg("Enriquecimento em andamento")
			f.report(ctx, model.Progress{Stage: "enrich", Current: done, Total: len(out)})
		}
	}

	return out
}

func (f *TaskFetcher) enrichOne(ctx context.Context, taskID string) ([]model.Comment, []model.TimeEntry, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limiter: %w", err)
	}
	comments, err := f.api.GetTaskComments(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limiter: %w", err)
	}
	entries, err := f.api.GetTaskTimeEntries(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	if comments == nil {
		comments = []model.Comment{}
	}
	if entries == nil {
		entries = []model.TimeEntry{}
	}
	return comments, entries, nil
}

func (f *TaskFetcher) report(ctx context.Context, p model.Progress) {
	if f.progress == nil {
		return
	}
	if p.OperationID == "" {
		p.OperationID = logger.GetOperationID(ctx)
	}
	f.progress.Report(ctx, p)
}
