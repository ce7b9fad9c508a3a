package service

import (
	"strings"
	"testing"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-04 (qui) .. 2024-01-07 (dom)
var reportWindow = mustWindow(day(2024, 1, 4), day(2024, 1, 7))

func reportTasks() []model.Task {
	return []model.Task{
		{ID: "a", Name: "Deploy", TimeEstimate: hours(2), DateDone: ms(day(2024, 1, 5)), Description: "linha 1\nlinha 2", Status: model.Status{Status: "done"}},
		{ID: "b", Name: "", DateDone: ms(day(2024, 1, 5)), Status: model.Status{Status: "done"}},
		{ID: "c", Name: "Review", TimeEstimate: hours(1.25), DateUpdated: ms(day(2024, 1, 7)), Status: model.Status{Status: "in review"}},
	}
}

func TestBuildDaysEnumeratesWholeWindow(t *testing.T) {
	tasks := reportTasks()
	days := BuildDays(tasks, Aggregate(tasks, reportWindow), reportWindow)

	require.Len(t, days, 4)
	assert.Equal(t, "2024-01-04", days[0].Date)
	assert.False(t, days[0].IsWeekend)
	assert.Equal(t, 0.0, days[0].Hours)

	fri := days[1]
	assert.True(t, fri.IsWeekend)
	assert.Equal(t, "Friday", fri.WeekendDay)
	assert.Equal(t, 2.0, fri.Hours)
	assert.Equal(t, 2, fri.TaskCount, "tarefa sem estimativa também entra no dia")
	assert.Equal(t, 1.0, fri.AvgTaskHours)

	assert.Equal(t, "Saturday", days[2].WeekendDay)
	assert.False(t, days[3].IsWeekend)
	assert.Equal(t, 1.25, days[3].Hours)
}

func TestDaySummaryStats(t *testing.T) {
	tasks := reportTasks()
	stats := DaySummaryStats(BuildDays(tasks, Aggregate(tasks, reportWindow), reportWindow))

	assert.Equal(t, 4, stats.TotalCalendarDays)
	assert.Equal(t, 2, stats.WeekendDaysInRange)
	assert.Equal(t, 2, stats.ActiveDays)
	assert.Equal(t, 1, stats.ActiveWeekendDays)
	assert.Equal(t, 1, stats.ActiveWorkingDays)
	assert.Equal(t, 1.63, stats.AvgActiveDayHours)
	assert.Equal(t, "2024-01-05", stats.MaxDay)
}

func TestDaySummaryStatsIgnoresDaysWithoutEstimates(t *testing.T) {
	window := mustWindow(day(2024, 1, 1), day(2024, 1, 2))
	tasks := []model.Task{
		{ID: "a", TimeEstimate: hours(4), DateDone: ms(day(2024, 1, 1))},
		{ID: "b", DateDone: ms(day(2024, 1, 2))},
	}
	days := BuildDays(tasks, Aggregate(tasks, window), window)
	require.Len(t, days, 2)
	require.Equal(t, 1, days[1].TaskCount)

	stats := DaySummaryStats(days)
	assert.Equal(t, 1, stats.ActiveDays)
	assert.Equal(t, 1, stats.ActiveWorkingDays)
	assert.Equal(t, 0, stats.ActiveWeekendDays)
	assert.Equal(t, 4.0, stats.AvgActiveDayHours)
	assert.Equal(t, "2024-01-01", stats.MaxDay)
}

func TestStructuredText(t *testing.T) {
	tasks := reportTasks()
	text := StructuredText(tasks, Aggregate(tasks, reportWindow), reportWindow)

	rule := strings.Repeat("=", 70)
	assert.True(t, strings.HasPrefix(text, rule+"\nTASK ANALYSIS DATA\n"+rule+"\n"))
	assert.Contains(t, text, "📅 Date Range: 2024-01-04 to 2024-01-07\n")
	assert.Contains(t, text, "   Total Tasks: 3\n")
	assert.Contains(t, text, "   Tasks with time estimates: 2\n")
	assert.Contains(t, text, "   Total Estimated Time: 3.25 hours\n")
	assert.Contains(t, text, "\n     2024-01-04: Total 0 hours (0 tasks)\n")
	assert.Contains(t, text, "\n     2024-01-05 (weekend-Friday): Total 2 hours (2 tasks)\n")
	assert.Contains(t, text, "\n     2024-01-06 (weekend-Saturday): Total 0 hours (0 tasks)\n")
	assert.Contains(t, text, "        - Deploy, Estimated time: 2 hours\n")
	assert.Contains(t, text, "          Description: linha 1 linha 2\n")
	assert.Contains(t, text, "        - Unnamed, Estimated time: Not set\n")
	assert.Contains(t, text, "        - Review, Estimated time: 1.25 hours\n")
}

func TestFlattenDescriptionTruncates(t *testing.T) {
	assert.Equal(t, "", FlattenDescription("  \n "))
	assert.Equal(t, "a b", FlattenDescription(" a\nb "))

	long := strings.Repeat("x", MaxDescriptionLength+10)
	got := FlattenDescription(long)
	assert.Equal(t, MaxDescriptionLength+3, len(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	exact := strings.Repeat("y", MaxDescriptionLength)
	assert.Equal(t, exact, FlattenDescription(exact))
}

func TestStatusDistributionAndTracked(t *testing.T) {
	dist := StatusDistribution(append(reportTasks(), model.Task{ID: "x"}))
	assert.Equal(t, map[string]int{"done": 2, "in review": 1, "sem status": 1}, dist)

	task := model.Task{TimeEntries: []model.TimeEntry{{Duration: "3600000"}, {Duration: "bad"}, {Duration: "-5"}, {Duration: "1800000"}}}
	assert.Equal(t, int64(5400000), TrackedMillis(task))
}
