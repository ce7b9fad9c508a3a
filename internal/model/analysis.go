package model

import (
	"strconv"
	"time"
)

// DateWindow é o intervalo [From, To] (inclusive, UTC) usado tanto no filtro
// remoto quanto nos buckets da agregação
type DateWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewDateWindow normaliza as datas para UTC
func NewDateWindow(from, to time.Time) (DateWindow, error) {
	if to.Before(from) {
		return DateWindow{}, ErrInvalidWindow
	}
	return DateWindow{From: from.UTC(), To: to.UTC()}, nil
}

// FromMillis retorna From como string de epoch em ms
func (w DateWindow) FromMillis() string {
	return strconv.FormatInt(w.From.UnixMilli(), 10)
}

// ToMillis retorna To como string de epoch em ms
func (w DateWindow) ToMillis() string {
	return strconv.FormatInt(w.To.UnixMilli(), 10)
}

// DailyEstimate mapeia "YYYY-MM-DD" para horas estimadas (2 casas).
// Só contém dias com ao menos uma tarefa estimada.
type DailyEstimate map[string]float64

// AggregateResult contém as estatísticas de estimativa de um conjunto de tarefas
type AggregateResult struct {
	TotalTasks            int           `json:"total_tasks"`
	TasksWithEstimates    int           `json:"tasks_with_estimates"`
	TasksWithoutEstimates int           `json:"tasks_without_estimates"`
	TotalEstimateMs       int64         `json:"total_estimate_ms"`
	TotalEstimateHours    float64       `json:"total_estimate_hours"`
	DailyBreakdown        DailyEstimate `json:"daily_breakdown"`
}

// UserResolution é o resultado da busca parcial de usuário. Candidates traz
// os demais membros que também corresponderam, em ordem de roster.
type UserResolution struct {
	User       User   `json:"user"`
	TeamID     string `json:"team_id"`
	TeamName   string `json:"team_name,omitempty"`
	Candidates []User `json:"candidates,omitempty"`
}

// Ambiguous indica que mais de um membro correspondeu
func (r UserResolution) Ambiguous() bool {
	return len(r.Candidates) > 0
}

// PeriodAnalysis agrupa tarefas, agregação e texto estruturado de uma janela
type PeriodAnalysis struct {
	Window         DateWindow      `json:"window"`
	Tasks          []Task          `json:"tasks"`
	Aggregate      AggregateResult `json:"analysis"`
	StructuredText string          `json:"structured_output_for_llm"`
}

// Analysis é o resultado completo de uma execução
type Analysis struct {
	RunID        string          `json:"run_id"`
	User         User            `json:"user"`
	TeamID       string          `json:"team_id"`
	Candidates   []User          `json:"candidates,omitempty"`
	StatusFilter []string        `json:"status_filter"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Range        PeriodAnalysis  `json:"date_range"`
	CurrentMonth *PeriodAnalysis `json:"current_month,omitempty"`
}

// Progress é um evento de andamento da coleta/enriquecimento
type Progress struct {
	OperationID string `json:"operation_id,omitempty"`
	Stage       string `json:"stage"`
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	Message     string `json:"message,omitempty"`
}

// AnalysisRun é o resumo persistido de uma execução
type AnalysisRun struct {
	ID                 string        `json:"id"`
	Username           string        `json:"username"`
	UserID             int64         `json:"user_id"`
	TeamID             string        `json:"team_id"`
	DateFrom           time.Time     `json:"date_from"`
	DateTo             time.Time     `json:"date_to"`
	StatusFilter       []string      `json:"status_filter"`
	TotalTasks         int           `json:"total_tasks"`
	TasksWithEstimates int           `json:"tasks_with_estimates"`
	TotalEstimateHours float64       `json:"total_estimate_hours"`
	DailyBreakdown     DailyEstimate `json:"daily_breakdown"`
	CreatedAt          time.Time     `json:"created_at"`
}
