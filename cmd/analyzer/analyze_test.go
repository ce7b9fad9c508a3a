package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubClickUp(t *testing.T) {
	t.Helper()
	done := strconv.FormatInt(time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC).UnixMilli(), 10)
	estimate := int64(3 * 3600000)

	mux := http.NewServeMux()
	mux.HandleFunc("/team", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.TeamsResponse{Teams: []model.Team{{ID: "1", Name: "Time"}}})
	})
	mux.HandleFunc("/team/1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.TeamResponse{Team: model.Team{ID: "1", Members: []model.Member{
			{User: model.User{ID: 42, Username: "Carla Dias", Email: "carla@example.com"}},
		}}})
	})
	mux.HandleFunc("/team/1/task", func(w http.ResponseWriter, r *http.Request) {
		tasks := []model.Task{}
		if r.URL.Query().Get("page") == "0" {
			tasks = append(tasks, model.Task{
				ID: "t1", Name: "Fechar sprint", TimeEstimate: &estimate, DateDone: done, DateUpdated: done,
				Status: model.Status{Status: "complete", Type: "closed"},
			})
		}
		_ = json.NewEncoder(w).Encode(model.TaskResponse{Tasks: tasks})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("CLICKUP_API_KEY", "pk_test")
	t.Setenv("CLICKUP_BASE_URL", srv.URL)
	t.Setenv("REQUEST_INTERVAL_MS", "0")
	t.Setenv("WEBHOOK_URL", "")
}

func TestAnalyzeCommand(t *testing.T) {
	stubClickUp(t)
	dir := t.TempDir()

	cmd := analyzeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"carla", "--from", "2024-03-01", "--to", "2024-03-31",
		"--export", dir, "--xlsx", filepath.Join(dir, "carla.xlsx")})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Usuário: Carla Dias")
	assert.Contains(t, text, "Total Tasks: 1")
	assert.Contains(t, text, "2024-03-08 (weekend-Friday): Total 3 hours (1 tasks)")

	raw, err := os.ReadFile(filepath.Join(dir, "carla_dias_data.json"))
	require.NoError(t, err)
	var data model.ExportData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, 3.0, data.Summary.TotalHours)
	assert.Equal(t, []string{"completed"}, data.StatusFilter)

	_, err = os.Stat(filepath.Join(dir, "carla.xlsx"))
	assert.NoError(t, err)
}

func TestAnalyzeCommand_RequiresDates(t *testing.T) {
	stubClickUp(t)

	cmd := analyzeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"carla"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestResolveCommand(t *testing.T) {
	stubClickUp(t)

	cmd := resolveCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"CARLA@"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Carla Dias <carla@example.com> (id 42)")
	assert.Contains(t, out.String(), "Time: 1")
}
