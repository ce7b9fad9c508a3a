package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/client"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

// fakeClickUp implementa TeamAPI e TaskAPI em memória
type fakeClickUp struct {
	mu sync.Mutex

	teams    []model.Team
	teamsErr error
	rosters  map[string]*model.Team
	teamErr  error

	pages    [][]model.Task
	lastPage []*bool
	pageErr  map[int]error

	comments   map[string][]model.Comment
	commentErr map[string]error
	entries    map[string][]model.TimeEntry
	entryErr   map[string]error

	taskQueries  []client.TaskQuery
	commentCalls []string
	entryCalls   []string
}

func (f *fakeClickUp) GetTeams(ctx context.Context) ([]model.Team, error) {
	return f.teams, f.teamsErr
}

func (f *fakeClickUp) GetTeam(ctx context.Context, teamID string) (*model.Team, error) {
	if f.teamErr != nil {
		return nil, f.teamErr
	}
	team, ok := f.rosters[teamID]
	if !ok {
		return nil, &model.RemoteRequestError{Method: "GET", Path: "/team/" + teamID, StatusCode: 404}
	}
	return team, nil
}

func (f *fakeClickUp) GetTeamTasks(ctx context.Context, teamID string, q client.TaskQuery) (*model.TaskResponse, error) {
	f.mu.Lock()
	f.taskQueries = append(f.taskQueries, q)
	f.mu.Unlock()

	if err := f.pageErr[q.Page]; err != nil {
		return nil, err
	}
	if q.Page >= len(f.pages) {
		return &model.TaskResponse{Tasks: []model.Task{}, LastPage: boolPtr(false)}, nil
	}
	resp := &model.TaskResponse{Tasks: f.pages[q.Page]}
	if q.Page < len(f.lastPage) {
		resp.LastPage = f.lastPage[q.Page]
	}
	return resp, nil
}

func (f *fakeClickUp) GetTaskComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	f.mu.Lock()
	f.commentCalls = append(f.commentCalls, taskID)
	f.mu.Unlock()
	if err := f.commentErr[taskID]; err != nil {
		return nil, err
	}
	return f.comments[taskID], nil
}

func (f *fakeClickUp) GetTaskTimeEntries(ctx context.Context, taskID string) ([]model.TimeEntry, error) {
	f.mu.Lock()
	f.entryCalls = append(f.entryCalls, taskID)
	f.mu.Unlock()
	if err := f.entryErr[taskID]; err != nil {
		return nil, err
	}
	return f.entries[taskID], nil
}

// countingWaiter conta as esperas sem bloquear
type countingWaiter struct {
	mu    sync.Mutex
	calls int
}

func (w *countingWaiter) Wait(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	return ctx.Err()
}

type recordingReporter struct {
	mu     sync.Mutex
	events []model.Progress
}

func (r *recordingReporter) Report(ctx context.Context, p model.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

func (r *recordingReporter) stages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Stage
	}
	return out
}

type memoryHistory struct {
	mu   sync.Mutex
	runs []model.AnalysisRun
	err  error
}

func (m *memoryHistory) Save(ctx context.Context, run model.AnalysisRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	return nil
}

func boolPtr(b bool) *bool { return &b }

func int64Ptr(v int64) *int64 { return &v }

func ms(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func hours(h float64) *int64 {
	v := int64(h * millisPerHour)
	return &v
}

func mustWindow(from, to time.Time) model.DateWindow {
	w, err := model.NewDateWindow(from, to)
	if err != nil {
		panic(err)
	}
	return w
}
