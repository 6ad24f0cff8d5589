package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaTriXy/c7score/report"
)

func sampleReports() []report.Report {
	return []report.Report{
		{
			Library: "/org/a",
			Overall: 7.5,
			Scale:   10,
			Components: []report.Component{
				{Name: "llm_rubric", Score: 80, Scale: 100, Normalized: 8},
				{Name: "syntax", Error: "linter failed"},
			},
		},
		{Library: "/org/b", Error: "no component produced a score"},
	}
}

func TestObserve(t *testing.T) {
	m := New()
	for _, r := range sampleReports() {
		m.Observe(r, 2*time.Second)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("error")))
	assert.Equal(t, 7.5, testutil.ToFloat64(m.OverallScore.WithLabelValues("/org/a")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.ComponentScore.WithLabelValues("/org/a", "llm_rubric")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComponentErrors.WithLabelValues("syntax")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OverallScore))

	n, err := testutil.GatherAndCount(m.Registry(), "c7score_evaluations_total", "c7score_component_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Observe(sampleReports()[0], time.Second)

	path := filepath.Join(t.TempDir(), "c7score.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `c7score_overall_score{library="/org/a"} 7.5`)
	assert.Contains(t, string(data), "c7score_evaluation_duration_seconds_count 1")
}
