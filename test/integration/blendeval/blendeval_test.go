package blendeval_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intblendeval "github.com/slok/blendeval/test/integration/blendeval"
	"github.com/slok/blendeval/test/integration/testutils"
)

const (
	catalogYAML = `
items:
  - id: 7
    name: PB Fines
    composition: {fe: 62.1}
  - id: 9
    name: Newman Lump
    composition: {fe: 63.5}
`
	configYAML = `
reference_ids: [7, 9]
settings:
  linear:
    max_iterations: 50
`
)

func newTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test-blendeval.db")
}

func setupModule(ctx context.Context, t *testing.T, config intblendeval.Config, dbPath, user string) {
	t.Helper()

	catalog := intblendeval.WriteFile(t, "catalog.yaml", catalogYAML)
	_, stderr, err := intblendeval.RunCmd(ctx, config, dbPath, user, "catalog import "+catalog)
	require.NoError(t, err, string(stderr))

	cfg := intblendeval.WriteFile(t, "config.yaml", configYAML)
	_, stderr, err = intblendeval.RunCmd(ctx, config, dbPath, user, "config save sinter "+cfg)
	require.NoError(t, err, string(stderr))
}

func TestCLIStartAndList(t *testing.T) {
	config := intblendeval.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	dbPath := newTestDB(t)

	setupModule(ctx, t, config, dbPath, "alice")

	stdout, stderr, err := intblendeval.RunCmd(ctx, config, dbPath, "alice", "start sinter --format json")
	require.NoError(t, err, string(stderr))
	var started []map[string]string
	require.NoError(t, json.Unmarshal(stdout, &started))
	assert.NotEmpty(t, started)

	stdout, stderr, err = intblendeval.RunCmd(ctx, config, dbPath, "alice", "tasks --format json")
	require.NoError(t, err, string(stderr))
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal(stdout, &tasks))
	assert.Len(t, tasks, len(started))

	_, _, err = intblendeval.RunCmd(ctx, config, dbPath, "bob", "start sinter")
	assert.Error(t, err)
}

func TestServeAPI(t *testing.T) {
	config := intblendeval.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	dbPath := newTestDB(t)

	setupModule(ctx, t, config, dbPath, "alice")

	addr := freeAddr(t)
	args := strings.Fields(fmt.Sprintf("--db-path %s %s serve --listen-address %s", dbPath, config.OptimizerArgs(), addr))
	cmd, err := testutils.StartBlendeval(ctx, nil, config.Binary, args, true)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	base := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 100*time.Millisecond)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/start", strings.NewReader(`{"module":"sinter"}`))
	require.NoError(t, err)
	req.Header.Set("X-User", "alice")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var started struct {
		Tasks []struct {
			TaskID string `json:"taskId"`
		} `json:"tasks"`
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	assert.Equal(t, "started", started.Status)
	require.NotEmpty(t, started.Tasks)

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, base+"/progress/"+started.Tasks[0].TaskID+"?sort=cost.total", nil)
	require.NoError(t, err)
	req.Header.Set("X-User", "alice")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().String()
}
