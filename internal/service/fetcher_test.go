package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fetchWindow = mustWindow(day(2024, 1, 1), day(2024, 1, 31))

func tasksNamed(ids ...string) []model.Task {
	out := make([]model.Task, len(ids))
	for i, id := range ids {
		out[i] = model.Task{ID: id, Name: "task " + id, Status: model.Status{Status: "done", Type: "custom"}}
	}
	return out
}

func TestFetchTasksQueryParameters(t *testing.T) {
	api := &fakeClickUp{pages: [][]model.Task{tasksNamed("a")}}
	f := NewTaskFetcher(api, nil, nil)

	_, err := f.FetchTasks(context.Background(), 42, "t1", fetchWindow, ParseStatusFilter(nil))
	require.NoError(t, err)

	require.Len(t, api.taskQueries, 1)
	q := api.taskQueries[0]
	assert.Equal(t, int64(42), q.AssigneeID)
	assert.Equal(t, 0, q.Page)
	assert.True(t, q.IncludeClosed)
	assert.True(t, q.Subtasks)
	assert.Equal(t, fetchWindow, q.Window)
}

func TestFetchTasksStopsOnEmptyPage(t *testing.T) {
	api := &fakeClickUp{
		pages:    [][]model.Task{tasksNamed("a", "b"), tasksNamed("c"), {}},
		lastPage: []*bool{boolPtr(false), boolPtr(false), boolPtr(false)},
	}
	f := NewTaskFetcher(api, nil, nil)

	tasks, err := f.FetchTasks(context.Background(), 1, "t1", fetchWindow, ParseStatusFilter(nil))
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
	assert.Len(t, api.taskQueries, 3)
}

func TestFetchTasksStopsOnLastPage(t *testing.T) {
	api := &fakeClickUp{
		pages:    [][]model.Task{tasksNamed("a"), tasksNamed("b"), tasksNamed("never")},
		lastPage: []*bool{boolPtr(false), boolPtr(true)},
	}
	f := NewTaskFetcher(api, nil, nil)

	tasks, err := f.FetchTasks(context.Background(), 1, "t1", fetchWindow, ParseStatusFilter(nil))
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Len(t, api.taskQueries, 2)
}

func TestFetchTasksMissingLastPageIsLast(t *testing.T) {
	api := &fakeClickUp{pages: [][]model.Task{tasksNamed("a"), tasksNamed("b")}}
	f := NewTaskFetcher(api, nil, nil)

	tasks, err := f.FetchTasks(context.Background(), 1, "t1", fetchWindow, ParseStatusFilter(nil))
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestFetchTasksDeduplicatesByID(t *testing.T) {
	api := &fakeClickUp{
		pages:    [][]model.Task{tasksNamed("a", "b"), tasksNamed("b", "c")},
		lastPage: []*bool{boolPtr(false), boolPtr(true)},
	}
	f := NewTaskFetcher(api, nil, nil)

	tasks, err := f.FetchTasks(context.Background(), 1, "t1", fetchWindow, ParseStatusFilter(nil))
	require.NoError(t, err)
	ids := []string{}
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestFetchTasksAppliesStatusFilter(t *testing.T) {
	page := []model.Task{
		{ID: "done", Status: model.Status{Status: "Done", Type: "custom"}},
		{ID: "wip", Status: model.Status{Status: "in progress", Type: "custom"}},
		{ID: "closed", Status: model.Status{Status: "in review", Type: "closed"}},
	}
	api := &fakeClickUp{pages: [][]model.Task{page}}
	f := NewTaskFetcher(api, nil, nil)

	tasks, err := f.FetchTasks(context.Background(), 1, "t1", fetchWindow, ParseStatusFilter([]string{"done"}))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "done", tasks[0].ID)
	assert.Equal(t, "closed", tasks[1].ID)
}

func TestFetchTasksFirstPageErrorIsFatal(t *testing.T) {
	remote := &model.RemoteRequestError{Method: "GET", Path: "/team/t1/task", StatusCode: 500}
	api := &fakeClickUp{pageErr: map[int]error{0: remote}}
	f := NewTaskFetcher(api, nil, nil)

	tasks, err := f.FetchTasks(context.Background(), 1, "t1", fetchWindow, ParseStatusFilter(nil))
	assert.Nil(t, tasks)
	var rre *model.RemoteRequestError
	assert.True(t, errors.As(err, &rre))
}

func TestFetchTasksLaterPageErrorKeepsPartial(t *testing.T) {
	api := &fakeClickUp{
		pages:    [][]model.Task{tasksNamed("a", "b"), nil},
		lastPage: []*bool{boolPtr(false)},
		pageErr:  map[int]error{1: &model.RemoteRequestError{StatusCode: 502}},
	}
	f := NewTaskFetcher(api, nil, nil)

	tasks, err := f.FetchTasks(context.Background(), 1, "t1", fetchWindow, ParseStatusFilter(nil))
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestFetchTasksReportsProgress(t *testing.T) {
	api := &fakeClickUp{
		pages:    [][]model.Task{tasksNamed("a"), tasksNamed("b")},
		lastPage: []*bool{boolPtr(false), boolPtr(true)},
	}
	rep := &recordingReporter{}
	f := NewTaskFetcher(api, nil, rep)

	_, err := f.FetchTasks(context.Background(), 1, "t1", fetchWindow, ParseStatusFilter(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"fetch", "fetch"}, rep.stages())
}

func TestEnrichIsolatesFailures(t *testing.T) {
	api := &fakeClickUp{
		comments: map[string][]model.Comment{
			"a": {{ID: "c1", CommentText: "ok"}},
			"c": {{ID: "c3", CommentText: "ok"}},
		},
		entries: map[string][]model.TimeEntry{
			"a": {{ID: "e1", Duration: "3600000"}},
			"b": {{ID: "e2", Duration: "60000"}},
			"c": {{ID: "e3", Duration: "1000"}},
		},
		commentErr: map[string]error{"b": &model.RemoteRequestError{StatusCode: 500}},
	}
	waiter := &countingWaiter{}
	f := NewTaskFetcher(api, waiter, nil)

	input := tasksNamed("a", "b", "c")
	out := f.Enrich(context.Background(), input)

	require.Len(t, out, 3)
	assert.Len(t, out[0].Comments, 1)
	assert.Len(t, out[0].TimeEntries, 1)

	assert.NotNil(t, out[1].Comments)
	assert.Empty(t, out[1].Comments)
	assert.NotNil(t, out[1].TimeEntries)
	assert.Empty(t, out[1].TimeEntries, "falha nos comentários zera também o time tracking")

	assert.Len(t, out[2].Comments, 1)
	assert.Len(t, out[2].TimeEntries, 1)

	// entrada não é alterada
	assert.Nil(t, input[0].Comments)

	// uma espera por chamada remota: a(2) + b(1, falhou nos comentários) + c(2)
	assert.Equal(t, 5, waiter.calls)
	assert.Equal(t, []string{"a", "c"}, api.entryCalls)
}

func TestEnrichEmptyResponsesBecomeEmptySlices(t *testing.T) {
	f := NewTaskFetcher(&fakeClickUp{}, nil, nil)
	out := f.Enrich(context.Background(), tasksNamed("a"))
	assert.NotNil(t, out[0].Comments)
	assert.NotNil(t, out[0].TimeEntries)
}

func TestEnrichReportsProgressEveryFiveTasks(t *testing.T) {
	rep := &recordingReporter{}
	f := NewTaskFetcher(&fakeClickUp{}, nil, rep)

	f.Enrich(context.Background(), tasksNamed("1", "2", "3", "4", "5", "6", "7"))

	require.Len(t, rep.events, 2)
	assert.Equal(t, 5, rep.events[0].Current)
	assert.Equal(t, 7, rep.events[1].Current)
	assert.Equal(t, 7, rep.events[1].Total)
}

func TestEnrichStopsOnCancel(t *testing.T) {
	api := &fakeClickUp{}
	f := NewTaskFetcher(api, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := f.Enrich(ctx, tasksNamed("a", "b"))
	assert.Empty(t, api.commentCalls)
	for _, task := range out {
		assert.NotNil(t, task.Comments)
		assert.NotNil(t, task.TimeEntries)
	}
}

func TestRequestLimiterSpacing(t *testing.T) {
	lim := NewRequestLimiter(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, lim.Wait(ctx))
	}
	// primeira chamada é imediata (burst 1), as outras esperam o intervalo
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)

	unlimited := NewRequestLimiter(0)
	start = time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
