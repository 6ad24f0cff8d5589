package c7score

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MaTriXy/c7score/corpus"
	"github.com/MaTriXy/c7score/heuristic"
	"github.com/MaTriXy/c7score/llmjudge"
	"github.com/MaTriXy/c7score/report"
)

const rubricResponse = `{"scores": [80, 90, 70], "average": 79, "explanation": "Clear and mostly unique."}`

type mockLLMGenerator struct {
	mu       sync.Mutex
	response string
	calls    int
}

func (m *mockLLMGenerator) StructuredGenerate(ctx context.Context, prompt string, schema map[string]interface{}) (map[string]interface{}, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(m.response), &result); err != nil {
		return nil, err
	}
	return result, nil
}

type recordingObserver struct {
	mu      sync.Mutex
	reports []report.Report
}

func (o *recordingObserver) Observe(r report.Report, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, r)
}

func goodCorpus(n int) string {
	raws := make([]string, n)
	for i := range raws {
		raws[i] = fmt.Sprintf("TITLE: Create client %d\nDESCRIPTION: Create a client.\nSOURCE: https://example.com/docs\n\nLANGUAGE: go\nCODE:\n```go\nclient := example.NewClient(ctx)\nresp, err := client.Get(\"/items\")\n```", i)
	}
	return corpus.Join(raws)
}

func TestEvaluate(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	llm := &mockLLMGenerator{response: rubricResponse}

	ev, err := NewEvaluator(
		WithLLMGenerator(llm),
		WithClock(func() time.Time { return fixed }),
	)
	require.NoError(t, err)

	rep := ev.Evaluate(context.Background(), Input{Library: "/org/project", Corpus: goodCorpus(3)})

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "/org/project", rep.Library)
	assert.True(t, rep.CreatedAt.Equal(fixed))
	assert.Empty(t, rep.Error)
	assert.Empty(t, rep.Excluded)
	assert.Len(t, rep.Components, len(heuristic.Suite)+1)

	rubric, ok := rep.Component(llmjudge.NameRubric)
	require.True(t, ok)
	assert.InDelta(t, 79, rubric.Score, 1e-9)
	assert.Len(t, rubric.Breakdown, 3)

	// half rubric (7.9) and half heuristics (all 10)
	assert.InDelta(t, 8.95, rep.Overall, 1e-9)
}

func TestEvaluate_WithoutLLM(t *testing.T) {
	ev, err := NewEvaluator(WithScale(100), WithGroupedHeuristics())
	require.NoError(t, err)

	rep := ev.Evaluate(context.Background(), Input{Library: "x", Corpus: goodCorpus(2)})

	assert.Equal(t, []string{llmjudge.NameRubric}, rep.Excluded)
	assert.InDelta(t, 100, rep.Overall, 1e-9)
	assert.Equal(t, 100.0, ev.Scale())
	_, ok := rep.Component(heuristic.NameFormatting)
	assert.True(t, ok)
}

func TestEvaluate_EmptyCorpus(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	rep := ev.Evaluate(context.Background(), Input{Library: "empty"})

	assert.Zero(t, rep.Overall)
	assert.Equal(t, ErrNoScores.Error(), rep.Error)
	c, ok := rep.Component(heuristic.NameCompleteness)
	require.True(t, ok)
	assert.Equal(t, ErrNoRecords.Error(), c.Error)
}

func TestNewEvaluator_InvalidWeights(t *testing.T) {
	_, err := NewEvaluator(WithWeights(Weights{"vibes": 1}))
	assert.ErrorIs(t, err, ErrUnknownComponent)

	_, err = NewEvaluator(WithWeights(Weights{llmjudge.NameRubric: -1}))
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = NewEvaluator(WithScale(-1))
	assert.ErrorIs(t, err, ErrInvalidScale)
}

func TestEvaluateAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	llm := &mockLLMGenerator{response: rubricResponse}
	obs := &recordingObserver{}
	ev, err := NewEvaluator(WithLLMGenerator(llm), WithObserver(obs))
	require.NoError(t, err)

	inputs := make([]Input, 6)
	for i := range inputs {
		inputs[i] = Input{Library: fmt.Sprintf("/org/lib%d", i), Corpus: goodCorpus(i + 1)}
	}

	reports, err := ev.EvaluateAll(context.Background(), inputs, 2)
	require.NoError(t, err)
	require.Len(t, reports, len(inputs))
	for i, r := range reports {
		assert.Equal(t, inputs[i].Library, r.Library)
		assert.InDelta(t, 8.95, r.Overall, 1e-9)
	}
	assert.Equal(t, len(inputs), llm.calls)
	assert.Len(t, obs.reports, len(inputs))
}

func TestEvaluateAll_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ev, err := NewEvaluator()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ev.EvaluateAll(ctx, []Input{{Library: "a", Corpus: goodCorpus(1)}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeuristics(t *testing.T) {
	scores := Heuristics(goodCorpus(2), HeuristicOptions{})
	require.Len(t, scores, len(heuristic.Suite))
	for _, s := range scores {
		assert.NoError(t, s.Error, s.Name)
		assert.Equal(t, 10.0, s.Score, s.Name)
	}
}

func TestHeuristicFacade(t *testing.T) {
	h := NewHeuristic(HeuristicOptions{})
	assert.Len(t, h.Suite(), len(heuristic.Suite))
	assert.Len(t, h.Groups(), len(heuristic.Groups))

	s, ok := h.Scorer(heuristic.NameCitation)
	require.True(t, ok)
	got := s.Score(context.Background(), ScoreInputs{Corpus: goodCorpus(1)})
	assert.Equal(t, heuristic.NameCitation, got.Name)

	_, ok = h.Scorer("vibes")
	assert.False(t, ok)
}
