package model

// AnalysisRequest representa o payload de entrada para uma análise
type AnalysisRequest struct {
	Username     string   `json:"username" binding:"required"`
	TeamID       string   `json:"team_id"`
	From         string   `json:"from" binding:"required"`
	To           string   `json:"to" binding:"required"`
	StatusFilter []string `json:"status_filter"`
	Enrich       bool     `json:"enrich"`
	CurrentMonth bool     `json:"current_month"`
	WebhookURL   string   `json:"webhook_url" binding:"omitempty,url"`
}

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ExportRange descreve a janela exportada
type ExportRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ExportSummary resume a agregação no export
type ExportSummary struct {
	TotalTasks            int     `json:"total_tasks"`
	TasksWithEstimates    int     `json:"tasks_with_estimates"`
	TasksWithoutEstimates int     `json:"tasks_without_estimates"`
	TotalHours            float64 `json:"total_hours"`
}

// ExportPeriod é o bloco de um período no export JSON
type ExportPeriod struct {
	DateRange      ExportRange    `json:"date_range"`
	Summary        ExportSummary  `json:"summary"`
	DailyBreakdown DailyEstimate  `json:"daily_breakdown"`
	StructuredText string         `json:"structured_output_for_llm"`
	StatusCounts   map[string]int `json:"status_distribution"`
	Tasks          []Task         `json:"tasks"`
}

// ExportData é o formato do arquivo JSON exportado
type ExportData struct {
	RunID        string        `json:"run_id"`
	User         User          `json:"user"`
	AnalysisDate string        `json:"analysis_date"`
	StatusFilter []string      `json:"status_filter"`
	ExportPeriod               // campos da janela pedida no nível raiz
	CurrentMonth *ExportPeriod `json:"current_month,omitempty"`
}
