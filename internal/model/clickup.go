package model

// TaskResponse representa a resposta da API do ClickUp para listagem de tarefas do time
type TaskResponse struct {
	Tasks    []Task `json:"tasks"`
	LastPage *bool  `json:"last_page"`
}

// Task representa uma tarefa do ClickUp.
// Datas chegam como strings com epoch em milissegundos; "" significa ausente.
type Task struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Status       Status `json:"status"`
	TimeEstimate *int64 `json:"time_estimate"`
	DateCreated  string `json:"date_created"`
	DateUpdated  string `json:"date_updated"`
	DateClosed   string `json:"date_closed"`
	DateDone     string `json:"date_done"`
	Assignees    []User `json:"assignees"`
	Watchers     []User `json:"watchers"`
	URL          string `json:"url,omitempty"`

	// Preenchidos apenas pelo enriquecimento
	Comments    []Comment   `json:"comments,omitempty"`
	TimeEntries []TimeEntry `json:"time_entries,omitempty"`
}

// EstimateMillis retorna a estimativa em ms, 0 quando ausente
func (t Task) EstimateMillis() int64 {
	if t.TimeEstimate == nil {
		return 0
	}
	return *t.TimeEstimate
}

// Status representa o status de uma tarefa
type Status struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Color  string `json:"color,omitempty"`
	Type   string `json:"type"`
}

// User representa um usuário do ClickUp (assignee, watcher ou membro do time)
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Color    string `json:"color,omitempty"`
}

// Comment representa um comentário de tarefa
type Comment struct {
	ID          string `json:"id"`
	User        User   `json:"user"`
	CommentText string `json:"comment_text"`
	Date        string `json:"date,omitempty"`
}

// TimeEntry representa um registro de time tracking. Duration em ms.
type TimeEntry struct {
	ID       string `json:"id"`
	Duration string `json:"duration"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// TeamsResponse representa a resposta de GET /team
type TeamsResponse struct {
	Teams []Team `json:"teams"`
}

// TeamResponse representa a resposta de GET /team/{id}
type TeamResponse struct {
	Team Team `json:"team"`
}

// Team representa um workspace do ClickUp
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []Member `json:"members,omitempty"`
}

// Member representa um membro do time
type Member struct {
	User User `json:"user"`
}

// CommentsResponse representa a resposta de GET /task/{id}/comment
type CommentsResponse struct {
	Comments []Comment `json:"comments"`
}

// TimeEntriesResponse representa a resposta de GET /task/{id}/time
type TimeEntriesResponse struct {
	Data []TimeEntry `json:"data"`
}

// IsLastPage indica fim da paginação. Ausência do campo conta como última página.
func (r TaskResponse) IsLastPage() bool {
	return r.LastPage == nil || *r.LastPage
}
