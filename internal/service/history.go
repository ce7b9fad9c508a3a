package service

import (
	"context"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

// HistoryStore persiste o resumo das análises (repository.HistoryRepository em produção)
type HistoryStore interface {
	Save(ctx context.Context, run model.AnalysisRun) error
}

// RunFromAnalysis resume uma análise para o histórico
func RunFromAnalysis(a *model.Analysis) model.AnalysisRun {
	agg := a.Range.Aggregate
	return model.AnalysisRun{
		ID:                 a.RunID,
		Username:           a.User.Username,
		UserID:             a.User.ID,
		TeamID:             a.TeamID,
		DateFrom:           a.Range.Window.From,
		DateTo:             a.Range.Window.To,
		StatusFilter:       a.StatusFilter,
		TotalTasks:         agg.TotalTasks,
		TasksWithEstimates: agg.TasksWithEstimates,
		TotalEstimateHours: agg.TotalEstimateHours,
		DailyBreakdown:     agg.DailyBreakdown,
		CreatedAt:          a.GeneratedAt.UTC().Truncate(time.Microsecond),
	}
}
