package service

import (
	"math"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

const millisPerHour = 1000 * 60 * 60

// MillisToHours converte ms para horas arredondando em 2 casas
func MillisToHours(ms int64) float64 {
	return round2(float64(ms) / millisPerHour)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BucketDate escolhe a data usada no breakdown diário: date_done, depois
// date_closed, depois date_updated. false quando nenhuma existe.
func BucketDate(task model.Task) (time.Time, bool) {
	for _, raw := range []string{task.DateDone, task.DateClosed, task.DateUpdated} {
		if t, ok := ParseMillis(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Aggregate calcula totais e breakdown diário de estimativas.
//
// A janela não limita os buckets: tarefas são buscadas por date_updated mas
// agrupadas por date_done/date_closed, então um dia fora da janela pode aparecer.
// O total é arredondado a partir da soma em ms, não da soma dos dias.
func Aggregate(tasks []model.Task, window model.DateWindow) model.AggregateResult {
	dailyMs := make(map[string]int64)
	result := model.AggregateResult{
		TotalTasks:     len(tasks),
		DailyBreakdown: model.DailyEstimate{},
	}

	for _, task := range tasks {
		estimate := task.EstimateMillis()
		if estimate <= 0 {
			result.TasksWithoutEstimates++
			continue
		}

		result.TasksWithEstimates++
		result.TotalEstimateMs += estimate

		if day, ok := BucketDate(task); ok {
			dailyMs[DateKey(day)] += estimate
		}
	}

	for day, ms := range dailyMs {
		result.DailyBreakdown[day] = MillisToHours(ms)
	}
	result.TotalEstimateHours = MillisToHours(result.TotalEstimateMs)

	return result
}
