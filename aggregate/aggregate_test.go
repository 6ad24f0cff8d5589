package aggregate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/heuristic"
	"github.com/MaTriXy/c7score/llmjudge"
)

func perfectScores() []api.Score {
	scores := []api.Score{{Name: llmjudge.NameRubric, Score: 100, Scale: 100}}
	for _, h := range heuristic.Suite {
		scores = append(scores, api.Score{Name: h.Name, Score: 10, Scale: 10})
	}
	return scores
}

func equalWeights() Weights {
	w := Weights{llmjudge.NameRubric: 1}
	for _, h := range heuristic.Suite {
		w[h.Name] = 1
	}
	return w
}

func TestAggregate_PerfectScores(t *testing.T) {
	for _, scale := range []float64{10, 100} {
		agg, err := New(equalWeights(), Options{Scale: scale})
		require.NoError(t, err)

		res := agg.Aggregate(perfectScores())
		require.NoError(t, res.Error)
		assert.InDelta(t, scale, res.Overall, 1e-9, "scale %v", scale)
		assert.Len(t, res.Contributions, len(heuristic.Suite)+1)
		assert.Empty(t, res.Excluded)
	}
}

func TestAggregate_NormalizesNativeScales(t *testing.T) {
	agg, err := New(Weights{llmjudge.NameRubric: 1, heuristic.NameCompleteness: 1}, Options{Scale: 100})
	require.NoError(t, err)

	res := agg.Aggregate([]api.Score{
		{Name: llmjudge.NameRubric, Score: 60, Scale: 100},
		{Name: heuristic.NameCompleteness, Score: 8, Scale: 10},
		{Name: heuristic.NameLicense, Score: 0, Scale: 10}, // unweighted, ignored
	})
	require.NoError(t, res.Error)
	assert.InDelta(t, 70, res.Overall, 1e-9)
}

func TestAggregate_LegacyRubricScale(t *testing.T) {
	agg, err := New(Weights{llmjudge.NameRubric: 1}, Options{})
	require.NoError(t, err)

	res := agg.Aggregate([]api.Score{{Name: llmjudge.NameRubric, Score: 240, Scale: 300}})
	assert.InDelta(t, 8, res.Overall, 1e-9)
}

func TestAggregate_ExcludesFailedComponents(t *testing.T) {
	agg, err := New(Weights{llmjudge.NameRubric: 0.5, heuristic.NameCompleteness: 0.25, heuristic.NameCodeLength: 0.25}, Options{})
	require.NoError(t, err)

	res := agg.Aggregate([]api.Score{
		{Name: llmjudge.NameRubric, Scale: 100, Error: api.ErrPromptTooLong},
		{Name: heuristic.NameCompleteness, Score: 10, Scale: 10},
		{Name: heuristic.NameCodeLength, Score: 5, Scale: 10},
	})
	require.NoError(t, res.Error)
	assert.InDelta(t, 7.5, res.Overall, 1e-9)
	assert.Equal(t, []string{llmjudge.NameRubric}, res.Excluded)
	for _, c := range res.Contributions {
		assert.InDelta(t, 0.5, c.Weight, 1e-9, c.Name)
	}
}

func TestAggregate_NoScores(t *testing.T) {
	agg, err := New(Weights{llmjudge.NameRubric: 1}, Options{})
	require.NoError(t, err)

	res := agg.Aggregate([]api.Score{{Name: llmjudge.NameRubric, Error: api.ErrLLMGenerationFailed}})
	assert.ErrorIs(t, res.Error, api.ErrNoScores)
	assert.Zero(t, res.Overall)
}

func TestNew_FailsFast(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		opts    Options
		wantErr error
	}{
		{name: "negative weight", weights: Weights{llmjudge.NameRubric: -1}, wantErr: api.ErrInvalidWeights},
		{name: "unknown component", weights: Weights{"vibes": 1}, wantErr: api.ErrUnknownComponent},
		{name: "all zero", weights: Weights{llmjudge.NameRubric: 0, heuristic.NameCitation: 0}, wantErr: api.ErrInvalidWeights},
		{name: "empty", weights: Weights{}, wantErr: api.ErrInvalidWeights},
		{name: "negative scale", weights: Weights{llmjudge.NameRubric: 1}, opts: Options{Scale: -10}, wantErr: api.ErrInvalidScale},
		{name: "custom known list", weights: Weights{heuristic.NameCitation: 1}, opts: Options{Known: []string{"other"}}, wantErr: api.ErrUnknownComponent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, err := New(tt.weights, tt.opts)
			assert.Nil(t, agg)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	require.NoError(t, Validate(w, nil))

	sum := 0.0
	for _, v := range w {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.5, w[llmjudge.NameRubric], 1e-9)
}

func TestNew_CopiesWeights(t *testing.T) {
	w := Weights{llmjudge.NameRubric: 1}
	agg, err := New(w, Options{})
	require.NoError(t, err)

	w[llmjudge.NameRubric] = -5
	assert.Equal(t, 1.0, agg.Weights()[llmjudge.NameRubric])
}
