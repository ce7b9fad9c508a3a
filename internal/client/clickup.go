package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/metrics"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

const (
	// DefaultBaseURL endpoint público da API v2 do ClickUp
	DefaultBaseURL = "https://api.clickup.com/api/v2"

	// DefaultTimeout timeout padrão para requisições
	DefaultTimeout = 60 * time.Second

	// maxErrorBody limita quanto do corpo de erro é guardado
	maxErrorBody = 4096
)

// Options configura o cliente
type Options struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client é o cliente HTTP para a API do ClickUp. Não faz retry: quem chama decide.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient cria um novo cliente ClickUp. Sem chave retorna model.ErrMissingAPIKey.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, model.ErrMissingAPIKey
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Request executa uma requisição contra a API e decodifica o JSON em out (se não nil).
// Qualquer falha de transporte ou status fora de 2xx vira *model.RemoteRequestError.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.Get().IncrementRemoteRequest(false)
		return &model.RemoteRequestError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	logger.Get(ctx).Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("ClickUp respondeu")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.Get().IncrementRemoteRequest(false)
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &model.RemoteRequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	metrics.Get().IncrementRemoteRequest(true)

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &model.RemoteRequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// GetTeams busca todos os times (workspaces) acessíveis pela chave
func (c *Client) GetTeams(ctx context.Context) ([]model.Team, error) {
	var resp model.TeamsResponse
	if err := c.Request(ctx, http.MethodGet, "team", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("buscar times: %w", err)
	}
	return resp.Teams, nil
}

// GetTeam busca um time com a lista de membros
func (c *Client) GetTeam(ctx context.Context, teamID string) (*model.Team, error) {
	var resp model.TeamResponse
	if err := c.Request(ctx, http.MethodGet, "team/"+url.PathEscape(teamID), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("buscar time %s: %w", teamID, err)
	}
	if resp.Team.ID == "" {
		resp.Team.ID = teamID
	}
	return &resp.Team, nil
}

// TaskQuery parametriza a listagem de tarefas do time
type TaskQuery struct {
	AssigneeID    int64
	Page          int
	Window        model.DateWindow
	IncludeClosed bool
	Subtasks      bool
}

// Values converte a query para os parâmetros aceitos por GET /team/{id}/task
func (q TaskQuery) Values() url.Values {
	v := url.Values{}
	v.Add("assignees[]", strconv.FormatInt(q.AssigneeID, 10))
	v.Set("include_closed", strconv.FormatBool(q.IncludeClosed))
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("date_updated_gt", q.Window.FromMillis())
	v.Set("date_updated_lt", q.Window.ToMillis())
	v.Set("subtasks", strconv.FormatBool(q.Subtasks))
	return v
}

// GetTeamTasks busca uma página de tarefas do time
func (c *Client) GetTeamTasks(ctx context.Context, teamID string, q TaskQuery) (*model.TaskResponse, error) {
	var resp model.TaskResponse
	path := "team/" + url.PathEscape(teamID) + "/task"
	if err := c.Request(ctx, http.MethodGet, path, q.Values(), nil, &resp); err != nil {
		return nil, fmt.Errorf("buscar tarefas (página %d): %w", q.Page, err)
	}
	return &resp, nil
}

// GetTaskComments busca os comentários de uma tarefa
func (c *Client) GetTaskComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	var resp model.CommentsResponse
	if err := c.Request(ctx, http.MethodGet, "task/"+url.PathEscape(taskID)+"/comment", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("buscar comentários da tarefa %s: %w", taskID, err)
	}
	return resp.Comments, nil
}

// GetTaskTimeEntries busca os registros de time tracking de uma tarefa
func (c *Client) GetTaskTimeEntries(ctx context.Context, taskID string) ([]model.TimeEntry, error) {
	var resp model.TimeEntriesResponse
	if err := c.Request(ctx, http.MethodGet, "task/"+url.PathEscape(taskID)+"/time", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("buscar time tracking da tarefa %s: %w", taskID, err)
	}
	return resp.Data, nil
}
