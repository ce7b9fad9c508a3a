package service

import (
	"sort"
	"strings"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

// StatusTypeClosed é a categoria de status de tarefas fechadas no ClickUp
const StatusTypeClosed = "closed"

// StatusFilter filtra tarefas por categoria/rótulo de status.
//
// Uma tarefa passa se o filtro aceita tudo, se a categoria do status é "closed"
// ou se o rótulo (case-insensitive) está no conjunto. Tarefas fechadas passam
// mesmo quando o rótulo não foi pedido.
type StatusFilter struct {
	all    bool
	labels map[string]struct{}
}

// ParseStatusFilter monta o filtro. Lista vazia ou contendo "all" aceita tudo.
func ParseStatusFilter(values []string) StatusFilter {
	f := StatusFilter{labels: make(map[string]struct{})}
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if v == "all" {
			return StatusFilter{all: true}
		}
		f.labels[v] = struct{}{}
	}
	if len(f.labels) == 0 {
		f.all = true
	}
	return f
}

// MatchAll indica se o filtro aceita qualquer tarefa
func (f StatusFilter) MatchAll() bool {
	return f.all
}

// Matches aplica o filtro a uma tarefa
func (f StatusFilter) Matches(task model.Task) bool {
	if f.all {
		return true
	}
	if task.Status.Type == StatusTypeClosed {
		return true
	}
	_, ok := f.labels[strings.ToLower(task.Status.Status)]
	return ok
}

// Labels retorna os rótulos do filtro ordenados ("all" quando aceita tudo)
func (f StatusFilter) Labels() []string {
	if f.all {
		return []string{"all"}
	}
	out := make([]string, 0, len(f.labels))
	for l := range f.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
