package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

// BuildExport monta o documento JSON de uma análise
func BuildExport(a *model.Analysis) model.ExportData {
	data := model.ExportData{
		RunID:        a.RunID,
		User:         a.User,
		AnalysisDate: formatDate(a.GeneratedAt),
		StatusFilter: a.StatusFilter,
		ExportPeriod: buildExportPeriod(a.Range),
	}
	if a.CurrentMonth != nil {
		month := buildExportPeriod(*a.CurrentMonth)
		data.CurrentMonth = &month
	}
	return data
}

func buildExportPeriod(p model.PeriodAnalysis) model.ExportPeriod {
	agg := p.Aggregate
	tasks := p.Tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	return model.ExportPeriod{
		DateRange: model.ExportRange{
			From: formatDate(p.Window.From),
			To:   formatDate(p.Window.To),
		},
		Summary: model.ExportSummary{
			TotalTasks:            agg.TotalTasks,
			TasksWithEstimates:    agg.TasksWithEstimates,
			TasksWithoutEstimates: agg.TasksWithoutEstimates,
			TotalHours:            agg.TotalEstimateHours,
		},
		DailyBreakdown: agg.DailyBreakdown,
		StructuredText: p.StructuredText,
		StatusCounts:   StatusDistribution(tasks),
		Tasks:          tasks,
	}
}

// ExportFileName gera "<usuario>_<sufixo>" em minúsculas, com espaços trocados por "_"
func ExportFileName(username, suffix string) string {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(username)), " ", "_")
	if name == "" {
		name = "analysis"
	}
	return name + "_" + suffix
}

// WriteJSON grava o export indentado em path, criando o diretório se preciso
func WriteJSON(path string, data model.ExportData) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("criar diretório %s: %w", dir, err)
		}
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar export: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("gravar %s: %w", path, err)
	}
	return nil
}
