package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decantr-dev/decantr/internal/config"
	"github.com/decantr-dev/decantr/internal/logging"
	"github.com/decantr-dev/decantr/pkg/state"
)

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionShort(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), config.ConfigFileName)

	out, err := execRoot(t, "version", "--short", "--config", cfgPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestScenariosCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), config.ConfigFileName)

	out, err := execRoot(t, "scenarios", "--config", cfgPath, "--log-level", "error")
	require.NoError(t, err)
	for _, name := range config.Scenarios {
		assert.Contains(t, out, name)
	}
}

func TestInitCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), config.ConfigFileName)

	_, err := execRoot(t, "init", "--config", cfgPath, "--log-level", "error")
	require.NoError(t, err)
	_, err = os.Stat(cfgPath)
	require.NoError(t, err)

	_, err = execRoot(t, "init", "--config", cfgPath, "--log-level", "error")
	assert.Error(t, err)

	_, err = execRoot(t, "init", "--config", cfgPath, "--log-level", "error", "--force")
	assert.NoError(t, err)
}

func TestInvalidConfigFailsEarly(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("bench:\n  scenario: spiral\n"), 0644))

	_, err := execRoot(t, "version", "--config", cfgPath)
	assert.Error(t, err)
}

func TestRunScenariosJSON(t *testing.T) {
	a := testApp(t)
	var buf bytes.Buffer

	err := a.runScenarios(context.Background(), &buf, []string{"diamond", "store"}, runOptions{jsonOut: true})
	require.NoError(t, err)

	var out struct {
		Results []result `json:"results"`
		Stats   struct {
			Flushes int `json:"Flushes"`
			Runs    int `json:"Runs"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Results, 2)
	for _, r := range out.Results {
		assert.Equal(t, r.Expected, r.Runs, r.Scenario)
		assert.Equal(t, 20, r.Iterations)
		assert.Equal(t, 4, r.Size)
	}
	// Every write flushes once.
	assert.Equal(t, 40, out.Stats.Flushes)
	assert.Equal(t, 40, out.Stats.Runs)
}

func TestRunScenariosText(t *testing.T) {
	a := testApp(t)
	var buf bytes.Buffer

	err := a.runScenarios(context.Background(), &buf, []string{"batch"}, runOptions{iterations: 3, size: 2})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "batch")
	assert.Contains(t, out, "runs=4 expected=4")
	assert.Contains(t, out, "Flushes:    3")
}

func TestRunScenariosUnknown(t *testing.T) {
	a := testApp(t)
	err := a.runScenarios(context.Background(), io.Discard, []string{"spiral"}, runOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spiral")
}

func TestRunScenariosTrace(t *testing.T) {
	a := testApp(t)
	var spans bytes.Buffer
	prev := stderr
	stderr = &spans
	t.Cleanup(func() { stderr = prev })

	err := a.runScenarios(context.Background(), io.Discard, []string{"chain"}, runOptions{iterations: 2, size: 2, trace: true})
	require.NoError(t, err)
	assert.Contains(t, spans.String(), "decantr.flush")
}

func TestServerRoutes(t *testing.T) {
	a := testApp(t)
	s := newServer(a, serveOptions{scenario: "fanout", iterations: 3, size: 2})

	res, err := s.tick()
	require.NoError(t, err)
	assert.True(t, res.OK())

	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "decantr_flushes_total")
	assert.Contains(t, body, `scenario="fanout"`)
	assert.Contains(t, body, "go_goroutines")

	code, body = get("/inspect/stats")
	assert.Equal(t, http.StatusOK, code)
	var snap struct {
		Flushes int `json:"flushes"`
		Runs    int `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(strings.NewReader(body)).Decode(&snap))
	assert.Equal(t, 3, snap.Flushes)
	assert.Equal(t, 6, snap.Runs)
}

func TestServerWithoutMetricsOrInspector(t *testing.T) {
	a := testApp(t)
	a.cfg.Metrics.Enabled = false
	a.cfg.Server.Inspector = false
	s := newServer(a, serveOptions{})

	assert.Nil(t, s.hub)
	assert.Equal(t, a.cfg.Server.Addr, s.opts.addr)
	assert.Equal(t, a.cfg.Bench.Scenario, s.opts.scenario)

	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAppRuntimeHonoursConfig(t *testing.T) {
	a := testApp(t)
	var logs bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "error", Writer: &logs})
	require.NoError(t, err)
	a.logger = logger
	a.cfg.Runtime.MaxFlushPasses = 3

	rt := a.runtime()
	rt.Run(func() {
		n := state.NewSignal(0)
		e := state.NewEffect(func() state.Cleanup {
			n.Set(n.Get() + 1)
			return nil
		})
		defer e.Dispose()
		n.Set(100)
	})

	// The error handler logs instead of panicking.
	assert.Contains(t, logs.String(), "computation failed")
	assert.Contains(t, logs.String(), "E101")
}
