package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

const (
	// MaxDescriptionLength limite da descrição no texto estruturado
	MaxDescriptionLength = 1000

	ruleWidth = 70
)

// DaySummary é uma data de calendário da janela com as tarefas que caíram nela
type DaySummary struct {
	Date         string       `json:"date"`
	Weekday      string       `json:"weekday"`
	Hours        float64      `json:"hours"`
	Tasks        []model.Task `json:"-"`
	TaskCount    int          `json:"task_count"`
	IsWeekend    bool         `json:"is_weekend"`
	WeekendDay   string       `json:"weekend_day,omitempty"`
	AvgTaskHours float64      `json:"avg_task_hours"`
}

// DayStats resume a atividade diária
type DayStats struct {
	ActiveDays         int     `json:"active_days"`
	ActiveWorkingDays  int     `json:"active_working_days"`
	ActiveWeekendDays  int     `json:"active_weekend_days"`
	AvgActiveDayHours  float64 `json:"avg_active_day_hours"`
	MaxDayHours        float64 `json:"max_day_hours"`
	MaxDay             string  `json:"max_day,omitempty"`
	TotalCalendarDays  int     `json:"total_calendar_days"`
	WeekendDaysInRange int     `json:"weekend_days_in_range"`
}

// BuildDays monta uma entrada por data da janela. Horas vêm do breakdown (0 quando o
// dia não tem estimativa); as tarefas incluem as sem estimativa, agrupadas pela mesma
// data usada na agregação.
func BuildDays(tasks []model.Task, agg model.AggregateResult, window model.DateWindow) []DaySummary {
	byDay := make(map[string][]model.Task)
	for _, task := range tasks {
		if day, ok := BucketDate(task); ok {
			key := DateKey(day)
			byDay[key] = append(byDay[key], task)
		}
	}

	dates := EnumerateDays(window)
	days := make([]DaySummary, 0, len(dates))
	for _, d := range dates {
		key := DateKey(d)
		summary := DaySummary{
			Date:       key,
			Weekday:    d.Weekday().String(),
			Hours:      agg.DailyBreakdown[key],
			Tasks:      byDay[key],
			TaskCount:  len(byDay[key]),
			IsWeekend:  IsWeekend(d),
			WeekendDay: WeekendLabel(d),
		}
		if summary.TaskCount > 0 {
			summary.AvgTaskHours = round2(summary.Hours / float64(summary.TaskCount))
		}
		days = append(days, summary)
	}
	return days
}

// DaySummaryStats calcula médias e contagens a partir de BuildDays. Só dias com
// horas estimadas contam como ativos.
func DaySummaryStats(days []DaySummary) DayStats {
	stats := DayStats{TotalCalendarDays: len(days)}
	var activeHours float64

	for _, d := range days {
		if d.IsWeekend {
			stats.WeekendDaysInRange++
		}
		// dia ativo é o que tem horas estimadas; tarefas sem estimativa não contam
		if d.Hours <= 0 {
			continue
		}
		stats.ActiveDays++
		if d.IsWeekend {
			stats.ActiveWeekendDays++
		} else {
			stats.ActiveWorkingDays++
		}
		activeHours += d.Hours
		if d.Hours > stats.MaxDayHours {
			stats.MaxDayHours = d.Hours
			stats.MaxDay = d.Date
		}
	}

	if stats.ActiveDays > 0 {
		stats.AvgActiveDayHours = round2(activeHours / float64(stats.ActiveDays))
	}
	return stats
}

// StatusDistribution conta tarefas por status
func StatusDistribution(tasks []model.Task) map[string]int {
	dist := make(map[string]int)
	for _, task := range tasks {
		label := task.Status.Status
		if label == "" {
			label = "sem status"
		}
		dist[label]++
	}
	return dist
}

// TrackedMillis soma a duração dos time entries de uma tarefa enriquecida
func TrackedMillis(task model.Task) int64 {
	var total int64
	for _, entry := range task.TimeEntries {
		ms, err := strconv.ParseInt(strings.TrimSpace(entry.Duration), 10, 64)
		if err != nil || ms < 0 {
			continue
		}
		total += ms
	}
	return total
}

// StructuredText gera o bloco de texto dia a dia usado como entrada de LLM e no CLI
func StructuredText(tasks []model.Task, agg model.AggregateResult, window model.DateWindow) string {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	b.WriteString(rule + "\n")
	b.WriteString("TASK ANALYSIS DATA\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "\n📅 Date Range: %s to %s\n", DateKey(window.From), DateKey(window.To))
	fmt.Fprintf(&b, "   Total Tasks: %d\n", agg.TotalTasks)
	fmt.Fprintf(&b, "   Tasks with time estimates: %d\n", agg.TasksWithEstimates)
	fmt.Fprintf(&b, "   Total Estimated Time: %s hours\n", formatHours(agg.TotalEstimateHours))

	b.WriteString("\n   Daily Breakdown:\n")
	for _, day := range BuildDays(tasks, agg, window) {
		marker := ""
		if day.IsWeekend {
			marker = " (weekend-" + day.WeekendDay + ")"
		}
		fmt.Fprintf(&b, "\n     %s%s: Total %s hours (%d tasks)\n", day.Date, marker, formatHours(day.Hours), day.TaskCount)

		for _, task := range day.Tasks {
			name := task.Name
			if name == "" {
				name = "Unnamed"
			}
			if est := task.EstimateMillis(); est > 0 {
				fmt.Fprintf(&b, "        - %s, Estimated time: %s hours\n", name, formatHours(MillisToHours(est)))
			} else {
				fmt.Fprintf(&b, "        - %s, Estimated time: Not set\n", name)
			}

			if desc := FlattenDescription(task.Description); desc != "" {
				fmt.Fprintf(&b, "          Description: %s\n", desc)
			}
		}
	}

	return b.String()
}

// FlattenDescription remove quebras de linha e corta em MaxDescriptionLength caracteres
func FlattenDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ""
	}
	desc = strings.ReplaceAll(desc, "\n", " ")
	runes := []rune(desc)
	if len(runes) > MaxDescriptionLength {
		return string(runes[:MaxDescriptionLength]) + "..."
	}
	return desc
}

// SortedDates retorna as chaves do breakdown em ordem
func SortedDates(daily model.DailyEstimate) []string {
	keys := make([]string, 0, len(daily))
	for k := range daily {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
