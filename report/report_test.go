package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaTriXy/c7score/aggregate"
	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/llmjudge"
)

var testTime = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func sampleReport(library string) Report {
	scores := []api.Score{
		{
			Name: llmjudge.NameRubric, Score: 79, Scale: 100, Explanation: "Mostly clear.",
			Metadata: map[string]any{"breakdown": []llmjudge.CriterionScore{
				{Name: "unique_information", Weight: 30, Score: 80},
				{Name: "clarity", Weight: 30, Score: 90},
			}},
		},
		{Name: "not_bare_list", Score: 9, Scale: 10, Explanation: "9 of 10 snippets not a bare list"},
		{Name: "syntax", Scale: 10, Error: api.ErrLinterFailed},
	}
	agg := aggregate.Result{Overall: 8.45, Scale: 10, Excluded: []string{"syntax"}}
	return New(library, scores, agg, testTime)
}

func TestNew(t *testing.T) {
	r := sampleReport("/org/project")

	assert.Equal(t, "/org/project", r.Library)
	assert.Equal(t, 8.45, r.Overall)
	require.Len(t, r.Components, 3)

	llm, ok := r.Component(llmjudge.NameRubric)
	require.True(t, ok)
	assert.InDelta(t, 7.9, llm.Normalized, 1e-9)
	assert.Len(t, llm.Breakdown, 2)

	syn, ok := r.Component("syntax")
	require.True(t, ok)
	assert.Equal(t, api.ErrLinterFailed.Error(), syn.Error)
}

func TestWriteHuman(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHuman(&buf, sampleReport("/org/project")))
	out := buf.String()

	for _, want := range []string{
		"== Average Score ==\n\n8.45 / 10",
		"== LLM Score ==\n\n79.00 / 100",
		"- Unique Information: 80",
		"== LLM Explanation ==\n\nMostly clear.",
		"== Not Bare List Score ==\n\n9.00 / 10",
		"== Syntax Score ==\n\nerror: linter failed",
		"== Excluded ==\n\nsyntax",
	} {
		assert.Contains(t, out, want)
	}
	assert.False(t, strings.Contains(out, "== Syntax Explanation =="))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport("a"), sampleReport("b")))

	var got map[string]Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 2)
	assert.Equal(t, 8.45, got["b"].Overall)
	assert.True(t, got["a"].CreatedAt.Equal(testTime))
}

func TestMergeJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")

	require.NoError(t, MergeJSONFile(path, sampleReport("a")))
	second := sampleReport("b")
	require.NoError(t, MergeJSONFile(path, second))

	updated := sampleReport("a")
	updated.Overall = 1.5
	require.NoError(t, MergeJSONFile(path, updated))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got, 2)
	assert.Equal(t, 1.5, got["a"].Overall)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Not Bare List", DisplayName("not_bare_list"))
	assert.Equal(t, "Project Metadata", DisplayName("project_metadata"))
	assert.Equal(t, "LLM", DisplayName(llmjudge.NameRubric))
}
