package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/blendeval/internal/api"
	"github.com/slok/blendeval/internal/app/list"
	"github.com/slok/blendeval/internal/app/progress"
	"github.com/slok/blendeval/internal/app/start"
	"github.com/slok/blendeval/internal/app/stop"
	"github.com/slok/blendeval/internal/method"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/optimizer/fake"
	"github.com/slok/blendeval/internal/storage/memory"
)

type testEnv struct {
	srv *httptest.Server
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	require := require.New(t)
	ctx := context.Background()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)
	require.NoError(repo.SaveReferenceItem(ctx, model.ReferenceItem{ID: 7, Name: "PB Fines", Composition: map[string]float64{"fe": 62.1}}))
	require.NoError(repo.SaveReferenceItem(ctx, model.ReferenceItem{ID: 9, Name: "Newman Lump", Composition: map[string]float64{"fe": 63.5}}))
	require.NoError(repo.SaveConfiguration(ctx, model.ConfigurationSnapshot{
		Owner:        "alice",
		Module:       "sinter",
		ReferenceIDs: []int64{7, 9},
		Settings:     model.NewRow(),
	}))

	opt, err := fake.NewOptimizer(fake.OptimizerConfig{Results: 4, Steps: 1, FailingMethods: []string{"annealing"}})
	require.NoError(err)
	methods := method.Default()

	startSvc, err := start.NewService(start.ServiceConfig{Repository: repo, Optimizer: opt, Methods: methods})
	require.NoError(err)
	stopSvc, err := stop.NewService(stop.ServiceConfig{Repository: repo, Optimizer: opt, Methods: methods})
	require.NoError(err)
	progressSvc, err := progress.NewService(progress.ServiceConfig{Repository: repo, Optimizer: opt, Methods: methods})
	require.NoError(err)
	listSvc, err := list.NewService(list.ServiceConfig{Repository: repo})
	require.NoError(err)

	h, err := api.NewHandler(api.HandlerConfig{
		StartService:    startSvc,
		StopService:     stopSvc,
		ProgressService: progressSvc,
		ListService:     listSvc,
	})
	require.NoError(err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return testEnv{srv: srv}
}

func (e testEnv) do(t *testing.T, httpMethod, path, user, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(httpMethod, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(api.UserHeader, user)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestAPIStartProgressStop(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	env := newTestEnv(t)

	// Start with one failing method.
	code, body := env.do(t, http.MethodPost, "/start", "alice", `{"module":"sinter"}`)
	require.Equal(http.StatusOK, code)
	assert.Equal("started", body["status"])
	tasks := body["tasks"].([]any)
	require.Len(tasks, 3)
	names := []string{}
	for _, tk := range tasks {
		names = append(names, tk.(map[string]any)["name"].(string))
	}
	assert.Equal([]string{"linear", "genetic", "pso"}, names)
	psoID := tasks[2].(map[string]any)["taskId"].(string)

	// Progress is enriched, sorted and paginated.
	code, body = env.do(t, http.MethodGet, "/progress/"+psoID+"?page=2&pageSize=3&sort=rank&order=desc", "alice", "")
	require.Equal(http.StatusOK, code)
	assert.Equal("pso", body["name"])
	assert.Equal("completed", body["status"])
	assert.Equal(float64(4), body["totalResults"])
	assert.Equal(float64(2), body["totalPages"])
	results := body["results"].([]any)
	require.Len(results, 1)
	first := results[0].(map[string]any)
	assert.Equal(float64(1), first["rank"])
	assert.Equal("PB Fines", first["material_id"])

	// Progress already recorded the completion, so stop skips it.
	code, body = env.do(t, http.MethodPost, "/stop", "alice", `{"taskIds":["`+psoID+`","missing"]}`)
	require.Equal(http.StatusOK, code)
	assert.Equal([]any{}, body["stopped"])

	code, body = env.do(t, http.MethodGet, "/tasks?status=running", "alice", "")
	require.Equal(http.StatusOK, code)
	assert.Len(body["tasks"].([]any), 2)
}

func TestAPIStop(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/start", "alice", `{"module":"sinter"}`)
	tasks := body["tasks"].([]any)
	linearID := tasks[0].(map[string]any)["taskId"].(string)

	code, body := env.do(t, http.MethodPost, "/stop", "bob", `{"taskIds":["`+linearID+`"]}`)
	require.Equal(http.StatusOK, code)
	assert.Equal([]any{}, body["stopped"])

	code, body = env.do(t, http.MethodPost, "/stop", "alice", `{"taskIds":["`+linearID+`"]}`)
	require.Equal(http.StatusOK, code)
	assert.Equal([]any{linearID}, body["stopped"])
}

func TestAPIErrors(t *testing.T) {
	tests := map[string]struct {
		method  string
		path    string
		user    string
		body    string
		expCode int
	}{
		"Missing user should fail.": {
			method: http.MethodPost, path: "/start", body: `{"module":"sinter"}`, expCode: http.StatusBadRequest,
		},
		"Missing configuration should be not found.": {
			method: http.MethodPost, path: "/start", user: "bob", body: `{"module":"sinter"}`, expCode: http.StatusNotFound,
		},
		"Invalid body should fail.": {
			method: http.MethodPost, path: "/start", user: "alice", body: `{`, expCode: http.StatusBadRequest,
		},
		"Unknown task progress should be not found.": {
			method: http.MethodGet, path: "/progress/missing", user: "alice", expCode: http.StatusNotFound,
		},
		"Invalid page should fail.": {
			method: http.MethodGet, path: "/progress/missing?page=0", user: "alice", expCode: http.StatusBadRequest,
		},
		"Invalid status filter should fail.": {
			method: http.MethodGet, path: "/tasks?status=paused", user: "alice", expCode: http.StatusBadRequest,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			code, body := env.do(t, test.method, test.path, test.user, test.body)
			assert.Equal(t, test.expCode, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAPIHealth(t *testing.T) {
	env := newTestEnv(t)
	code, _ := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
}
