package llmjudge

import (
	"fmt"
	"strings"

	"github.com/MaTriXy/c7score/api"
)

const (
	minCriteria = 3
	maxCriteria = 10
)

// Criterion is one weighted line of the rubric.
type Criterion struct {
	// Name identifies the criterion in reports, e.g. "clarity"
	Name string
	// Weight is relative; weights are normalized over the rubric
	Weight float64
	// Description tells the judge what to look for
	Description string
}

// CriterionScore is the judge's verdict on one criterion.
type CriterionScore struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Score  int     `json:"score"`
}

// DefaultCriteria is the rubric used when no reference text is supplied.
func DefaultCriteria() []Criterion {
	return []Criterion{
		{
			Name:   "unique_information",
			Weight: 30,
			Description: "Snippets contain unique information that is not already included in another snippet. " +
				"There can be some overlap, but the snippets should not be identical.",
		},
		{
			Name:   "clarity",
			Weight: 30,
			Description: "There are no snippets that are confusingly worded or unclear, including grammatical or spelling errors. " +
				"Titles and descriptions match the code, and all the text, even in the code snippets, is in English.",
		},
		{
			Name:   "correct_syntax",
			Weight: 40,
			Description: "No snippets contain obvious syntax errors. The code can be isolated easily " +
				"(no placeholders or ellipses) and the stated programming language is correct.",
		},
	}
}

// DefaultReferenceCriteria is the rubric used when reference text lists the
// information the snippets should cover.
func DefaultReferenceCriteria() []Criterion {
	base := DefaultCriteria()
	base[0].Weight = 20
	base[1].Weight = 20
	base[2].Weight = 30
	return append([]Criterion{{
		Name:        "coverage",
		Weight:      30,
		Description: "The snippets include some variation of all the required information.",
	}}, base...)
}

func validateCriteria(criteria []Criterion) error {
	if len(criteria) < minCriteria || len(criteria) > maxCriteria {
		return fmt.Errorf("%w: got %d criteria, want %d to %d", api.ErrInvalidCriteria, len(criteria), minCriteria, maxCriteria)
	}
	seen := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		if c.Name == "" || strings.TrimSpace(c.Description) == "" {
			return fmt.Errorf("%w: criterion %q needs a name and a description", api.ErrInvalidCriteria, c.Name)
		}
		if c.Weight <= 0 {
			return fmt.Errorf("%w: criterion %q has weight %v", api.ErrInvalidCriteria, c.Name, c.Weight)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate criterion %q", api.ErrInvalidCriteria, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// weightedAverage blends per-criterion scores with normalized weights.
func weightedAverage(criteria []Criterion, scores []int) float64 {
	sum, total := 0.0, 0.0
	for i, c := range criteria {
		sum += c.Weight * float64(scores[i])
		total += c.Weight
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

func breakdown(criteria []Criterion, scores []int) []CriterionScore {
	out := make([]CriterionScore, len(criteria))
	for i, c := range criteria {
		out[i] = CriterionScore{Name: c.Name, Weight: c.Weight, Score: scores[i]}
	}
	return out
}
