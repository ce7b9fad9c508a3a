package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

// DateLayout formato das chaves do breakdown diário
const DateLayout = "2006-01-02"

var inputLayouts = []string{"2006-01-02", "2006/01/02", "01-02-2006", "01/02/2006"}

var daysAgoPattern = regexp.MustCompile(`^(\d+)\s*(d|days?)$`)

// ParseMillis converte um timestamp do ClickUp (ms em string) para time.Time UTC.
// Retorna false para vazio ou inválido.
func ParseMillis(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// DateKey retorna a data UTC no formato YYYY-MM-DD
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// IsWeekend usa a convenção sexta/sábado
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// WeekendLabel retorna "Friday"/"Saturday" para fins de semana e "" caso contrário
func WeekendLabel(t time.Time) string {
	if !IsWeekend(t) {
		return ""
	}
	return t.Weekday().String()
}

// EnumerateDays lista todas as datas de calendário da janela, inclusive as pontas
func EnumerateDays(w model.DateWindow) []time.Time {
	start := truncateDay(w.From)
	end := truncateDay(w.To)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseWindow interpreta from/to com ParseDate. Um "to" só com data cobre o dia
// inteiro (até 23:59:59.999 UTC); "Nd" é um instante relativo a now.
func ParseWindow(from, to string, now time.Time) (model.DateWindow, error) {
	start, err := ParseDate(from, now)
	if err != nil {
		return model.DateWindow{}, fmt.Errorf("%w: from: %v", model.ErrInvalidRequest, err)
	}
	end, err := ParseDate(to, now)
	if err != nil {
		return model.DateWindow{}, fmt.Errorf("%w: to: %v", model.ErrInvalidRequest, err)
	}
	if isDateOnly(to) {
		end = end.AddDate(0, 0, 1).Add(-time.Millisecond)
	}

	w, err := model.NewDateWindow(start, end)
	if err != nil {
		return model.DateWindow{}, fmt.Errorf("%w: %s é anterior a %s", err, to, from)
	}
	return w, nil
}

func isDateOnly(s string) bool {
	return !daysAgoPattern.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// ParseDate aceita YYYY-MM-DD, YYYY/MM/DD, MM-DD-YYYY, MM/DD/YYYY ou "Nd"/"N days" (N dias antes de now)
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	if m := daysAgoPattern.FindStringSubmatch(strings.ToLower(s)); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil {
			return now.UTC().AddDate(0, 0, -days), nil
		}
	}

	return time.Time{}, fmt.Errorf("data inválida %q: use YYYY-MM-DD ou 'Nd' para N dias atrás", s)
}

// CurrentMonthWindow retorna o mês de now inteiro, do dia 1 até o último milissegundo
func CurrentMonthWindow(now time.Time) model.DateWindow {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return model.DateWindow{From: start, To: end}
}
