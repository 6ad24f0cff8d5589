package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaTriXy/c7score/corpus"
	"github.com/MaTriXy/c7score/report"
)

func writeCorpus(t *testing.T, dir, name string, n int) string {
	t.Helper()
	raws := make([]string, n)
	for i := range raws {
		raws[i] = "TITLE: Send a request\nDESCRIPTION: Send a request with the client.\nSOURCE: https://example.com/docs\n\nLANGUAGE: go\nCODE:\n```go\nclient := example.NewClient(ctx)\nresp, err := client.Get(\"/items\")\n```"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(corpus.Join(raws)), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("C7_STORE_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("C7_LOGGING_LEVEL", "error")
	return dir
}

func TestEvaluate_Human(t *testing.T) {
	dir := setupEnv(t)
	path := writeCorpus(t, dir, "example.txt", 2)

	out, err := run(t, "evaluate", path, "--no-llm")
	require.NoError(t, err)
	assert.Contains(t, out, "== Library ==\n\nexample")
	assert.Contains(t, out, "== Average Score ==\n\n10.00 / 10")
	assert.Contains(t, out, "== Excluded ==\n\nllm_rubric")
}

func TestEvaluate_JSONAndSave(t *testing.T) {
	dir := setupEnv(t)
	path := writeCorpus(t, dir, "example.txt", 3)
	output := filepath.Join(dir, "result.json")

	out, err := run(t, "evaluate", path, "--no-llm", "--json", "--save", "--library", "/org/example", "-o", output)
	require.NoError(t, err)

	var got map[string]report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 10.0, got["/org/example"].Overall)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"/org/example"`)

	out, err = run(t, "history", "/org/example")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "10.00 / 10")
}

func TestBatch_Metrics(t *testing.T) {
	dir := setupEnv(t)
	a := writeCorpus(t, dir, "a.txt", 1)
	b := writeCorpus(t, dir, "b.txt", 2)
	metricsFile := filepath.Join(dir, "c7score.prom")

	out, err := run(t, "batch", a, b, "--no-llm", "--json", "--concurrency", "2", "--metrics-file", metricsFile)
	require.NoError(t, err)

	var got map[string]report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 2)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `c7score_evaluations_total{outcome="ok"} 2`)
}

func TestHistory_Empty(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "history", "/org/none")
	assert.ErrorContains(t, err, "no stored reports")
}

func TestEvaluate_MissingAPIKey(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("GEMINI_API_KEY", "")
	path := writeCorpus(t, dir, "example.txt", 1)

	_, err := run(t, "evaluate", path)
	assert.ErrorContains(t, err, "GEMINI_API_KEY is not set")
}

func TestEvaluate_BadConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("C7_WEIGHTS", "vibes=1")
	_, err := run(t, "evaluate", "missing.txt")
	assert.ErrorContains(t, err, "unknown component")
}
