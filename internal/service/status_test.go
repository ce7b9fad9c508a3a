package service

import (
	"reflect"
	"testing"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

func taskWithStatus(label, kind string) model.Task {
	return model.Task{ID: label + kind, Status: model.Status{Status: label, Type: kind}}
}

func TestStatusFilterMatches(t *testing.T) {
	tests := []struct {
		name   string
		filter []string
		task   model.Task
		want   bool
	}{
		{"lista vazia aceita tudo", nil, taskWithStatus("in progress", "custom"), true},
		{"all aceita tudo", []string{"done", "ALL"}, taskWithStatus("backlog", "open"), true},
		{"rótulo igual", []string{"done"}, taskWithStatus("done", "custom"), true},
		{"rótulo case-insensitive", []string{"In Review"}, taskWithStatus("IN REVIEW", "custom"), true},
		{"rótulo fora do conjunto", []string{"done"}, taskWithStatus("in progress", "custom"), false},
		{"categoria closed sempre passa", []string{"done"}, taskWithStatus("archived", "closed"), true},
		{"só espaços equivale a vazio", []string{" ", ""}, taskWithStatus("x", "open"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseStatusFilter(tt.filter)
			if got := f.Matches(tt.task); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusFilterLabels(t *testing.T) {
	if got := ParseStatusFilter(nil).Labels(); !reflect.DeepEqual(got, []string{"all"}) {
		t.Errorf("Labels() = %v", got)
	}
	if got := ParseStatusFilter([]string{"done", "All"}).Labels(); !reflect.DeepEqual(got, []string{"all"}) {
		t.Errorf("Labels() com all no meio = %v", got)
	}
	got := ParseStatusFilter([]string{"Done", "in review", "done"}).Labels()
	if !reflect.DeepEqual(got, []string{"done", "in review"}) {
		t.Errorf("Labels() = %v", got)
	}
}
