package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/lib/pq"
)

const (
	// DefaultHistoryLimit quantidade padrão de execuções listadas
	DefaultHistoryLimit = 50
	// MaxHistoryLimit limite máximo aceito em List
	MaxHistoryLimit = 500
)

// HistoryRepository persiste o resumo de cada análise em analysis_runs
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository cria um novo repositório de histórico
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// HistoryFilter restringe a listagem
type HistoryFilter struct {
	UserID int64
	Limit  int
}

// Save grava uma execução
func (r *HistoryRepository) Save(ctx context.Context, run model.AnalysisRun) error {
	daily, err := json.Marshal(run.DailyBreakdown)
	if err != nil {
		return fmt.Errorf("serializar daily_breakdown: %w", err)
	}

	filter := run.StatusFilter
	if filter == nil {
		filter = []string{}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			id, username, user_id, team_id, date_from, date_to, status_filter,
			total_tasks, tasks_with_estimates, total_estimate_hours, daily_breakdown, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		run.ID, run.Username, run.UserID, run.TeamID, run.DateFrom, run.DateTo, pq.Array(filter),
		run.TotalTasks, run.TasksWithEstimates, run.TotalEstimateHours, daily, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserir analysis_run: %w", err)
	}
	return nil
}

// List retorna as execuções mais recentes primeiro
func (r *HistoryRepository) List(ctx context.Context, f HistoryFilter) ([]model.AnalysisRun, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	query := `
		SELECT id, username, user_id, team_id, date_from, date_to, status_filter,
			total_tasks, tasks_with_estimates, total_estimate_hours, daily_breakdown, created_at
		FROM analysis_runs
	`
	args := []interface{}{}
	if f.UserID != 0 {
		query += " WHERE user_id = $1"
		args = append(args, f.UserID)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar analysis_runs: %w", err)
	}
	defer rows.Close()

	runs := []model.AnalysisRun{}
	for rows.Next() {
		var run model.AnalysisRun
		var daily []byte
		if err := rows.Scan(
			&run.ID, &run.Username, &run.UserID, &run.TeamID, &run.DateFrom, &run.DateTo,
			pq.Array(&run.StatusFilter), &run.TotalTasks, &run.TasksWithEstimates,
			&run.TotalEstimateHours, &daily, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ler analysis_run: %w", err)
		}
		if err := json.Unmarshal(daily, &run.DailyBreakdown); err != nil {
			return nil, fmt.Errorf("decodificar daily_breakdown de %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteOlderThan remove execuções criadas antes de cutoff e retorna quantas
func (r *HistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM analysis_runs WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("limpar analysis_runs: %w", err)
	}
	return res.RowsAffected()
}
