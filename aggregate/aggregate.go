// Package aggregate combines component scores into one overall score.
//
// Every component reports on its own native scale (10 for heuristics, 100
// for the rubric, 10 per criterion for the legacy rubric). The aggregator
// maps each onto the output scale before weighting, so weights compare like
// with like.
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/heuristic"
	"github.com/MaTriXy/c7score/llmjudge"
	"github.com/MaTriXy/c7score/syntax"
)

// DefaultScale is the output scale when Options.Scale is zero.
const DefaultScale = 10.0

// Weights maps a component name to its non-negative weight.
type Weights map[string]float64

// DefaultWeights gives the rubric half of the overall score and splits the
// rest evenly over the ten heuristics.
func DefaultWeights() Weights {
	w := Weights{llmjudge.NameRubric: 0.5}
	for _, h := range heuristic.Suite {
		w[h.Name] = 0.5 / float64(len(heuristic.Suite))
	}
	return w
}

// KnownComponents lists every component name a weight may refer to.
func KnownComponents() []string {
	names := []string{llmjudge.NameRubric, syntax.Name, heuristic.NameEnglishText}
	for _, h := range heuristic.Suite {
		names = append(names, h.Name)
	}
	for _, h := range heuristic.Groups {
		names = append(names, h.Name)
	}
	return names
}

// Options configures an Aggregator
type Options struct {
	// Scale is the maximum overall score, usually 10 or 100
	Scale float64
	// Known overrides KnownComponents
	Known []string
}

// Aggregator computes weighted overall scores. It is immutable and safe for
// concurrent use.
type Aggregator struct {
	weights Weights
	scale   float64
}

// New validates the weights and returns an Aggregator. It fails on negative
// or non-finite weights, unknown component names, an empty or all-zero
// weight set and a non-positive scale.
func New(weights Weights, opts Options) (*Aggregator, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: %v", api.ErrInvalidScale, opts.Scale)
	}

	if err := Validate(weights, opts.Known); err != nil {
		return nil, err
	}

	cp := make(Weights, len(weights))
	for k, v := range weights {
		cp[k] = v
	}
	return &Aggregator{weights: cp, scale: scale}, nil
}

// Validate checks weights without building an Aggregator. known defaults to
// KnownComponents.
func Validate(weights Weights, known []string) error {
	if known == nil {
		known = KnownComponents()
	}
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}

	if len(weights) == 0 {
		return fmt.Errorf("%w: no weights given", api.ErrInvalidWeights)
	}
	total := 0.0
	for _, name := range sortedNames(weights) {
		w := weights[name]
		if !allowed[name] {
			return fmt.Errorf("%w: %q", api.ErrUnknownComponent, name)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: %q has weight %v", api.ErrInvalidWeights, name, w)
		}
		total += w
	}
	if total == 0 {
		return fmt.Errorf("%w: all weights are zero", api.ErrInvalidWeights)
	}
	return nil
}

// Scale returns the output scale.
func (a *Aggregator) Scale() float64 {
	return a.scale
}

// Weights returns a copy of the configured weights.
func (a *Aggregator) Weights() Weights {
	cp := make(Weights, len(a.weights))
	for k, v := range a.weights {
		cp[k] = v
	}
	return cp
}

// Contribution is one component's share of the overall score.
type Contribution struct {
	Name string `json:"name"`
	// Weight is the effective weight after renormalization over included components
	Weight float64 `json:"weight"`
	// Score is the component score mapped onto the output scale
	Score float64 `json:"score"`
}

// Result is an aggregated score.
type Result struct {
	Overall       float64        `json:"overall"`
	Scale         float64        `json:"scale"`
	Contributions []Contribution `json:"contributions"`
	// Excluded names weighted components that were missing or failed
	Excluded []string `json:"excluded,omitempty"`
	Error    error    `json:"-"`
}

// Aggregate weighs the scores. Components without a weight are ignored.
// Weighted components that are missing or carry an error are excluded and
// the remaining weights are renormalized, so a failed LLM call still leaves
// a heuristic-only overall score.
func (a *Aggregator) Aggregate(scores []api.Score) Result {
	res := Result{Scale: a.scale}

	byName := make(map[string]api.Score, len(scores))
	for _, s := range scores {
		byName[s.Name] = s
	}

	total := 0.0
	for _, name := range sortedNames(a.weights) {
		w := a.weights[name]
		if w == 0 {
			continue
		}
		s, ok := byName[name]
		if !ok || s.Error != nil || s.Scale <= 0 {
			res.Excluded = append(res.Excluded, name)
			continue
		}
		res.Contributions = append(res.Contributions, Contribution{
			Name:   name,
			Weight: w,
			Score:  clamp(s.Normalized(a.scale), a.scale),
		})
		total += w
	}

	if total == 0 {
		res.Error = api.ErrNoScores
		return res
	}

	overall := 0.0
	for i := range res.Contributions {
		c := &res.Contributions[i]
		c.Weight /= total
		overall += c.Weight * c.Score
	}
	res.Overall = clamp(overall, a.scale)
	return res
}

func clamp(v, max float64) float64 {
	return math.Max(0, math.Min(max, v))
}

func sortedNames(w Weights) []string {
	names := make([]string, 0, len(w))
	for k := range w {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
