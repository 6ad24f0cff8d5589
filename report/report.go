// Package report assembles component scores into a report and renders it
// as text or JSON.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MaTriXy/c7score/aggregate"
	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/llmjudge"
)

// Component is one scorer's entry in a report.
type Component struct {
	Name        string                    `json:"name"`
	Score       float64                   `json:"score"`
	Scale       float64                   `json:"scale"`
	Normalized  float64                   `json:"normalized"`
	Explanation string                    `json:"explanation,omitempty"`
	Error       string                    `json:"error,omitempty"`
	Breakdown   []llmjudge.CriterionScore `json:"breakdown,omitempty"`
}

// Report is the evaluation of one library's corpus.
type Report struct {
	Library    string      `json:"library"`
	CreatedAt  time.Time   `json:"created_at"`
	Overall    float64     `json:"overall"`
	Scale      float64     `json:"scale"`
	Components []Component `json:"components"`
	Excluded   []string    `json:"excluded,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// New builds a report from component scores and their aggregate.
func New(library string, scores []api.Score, agg aggregate.Result, now time.Time) Report {
	r := Report{
		Library:   library,
		CreatedAt: now.UTC(),
		Overall:   agg.Overall,
		Scale:     agg.Scale,
		Excluded:  agg.Excluded,
	}
	if agg.Error != nil {
		r.Error = agg.Error.Error()
	}

	for _, s := range scores {
		c := Component{
			Name:        s.Name,
			Score:       s.Score,
			Scale:       s.Scale,
			Normalized:  s.Normalized(agg.Scale),
			Explanation: s.Explanation,
		}
		if s.Error != nil {
			c.Error = s.Error.Error()
		}
		if b, ok := s.Metadata["breakdown"].([]llmjudge.CriterionScore); ok {
			c.Breakdown = b
		}
		r.Components = append(r.Components, c)
	}
	return r
}

// Component returns the named component.
func (r Report) Component(name string) (Component, bool) {
	for _, c := range r.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// DisplayName turns a component name such as "not_bare_list" into "Not Bare List".
func DisplayName(name string) string {
	if name == llmjudge.NameRubric {
		return "LLM"
	}
	// a Caser is stateful and must not be shared between goroutines
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// WriteHuman writes the report as "== Section ==" blocks separated by blank lines.
func WriteHuman(w io.Writer, r Report) error {
	var sections []string
	add := func(title, body string) {
		sections = append(sections, "== "+title+" ==", body)
	}

	add("Library", r.Library)
	overall := formatScore(r.Overall, r.Scale)
	if r.Error != "" {
		overall += " (" + r.Error + ")"
	}
	add("Average Score", overall)

	for _, c := range r.Components {
		name := DisplayName(c.Name)
		if c.Error != "" {
			add(name+" Score", "error: "+c.Error)
			continue
		}
		add(name+" Score", formatScore(c.Score, c.Scale))
		for _, b := range c.Breakdown {
			sections = append(sections, fmt.Sprintf("- %s: %d", DisplayName(b.Name), b.Score))
		}
		if c.Explanation != "" {
			add(name+" Explanation", c.Explanation)
		}
	}
	if len(r.Excluded) > 0 {
		add("Excluded", strings.Join(r.Excluded, ", "))
	}

	_, err := io.WriteString(w, strings.Join(sections, "\n\n")+"\n")
	return err
}

func formatScore(score, scale float64) string {
	return fmt.Sprintf("%.2f / %g", score, scale)
}

// WriteJSON writes reports as a JSON object keyed by library.
func WriteJSON(w io.Writer, reports ...Report) error {
	byLibrary := make(map[string]Report, len(reports))
	for _, r := range reports {
		byLibrary[r.Library] = r
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(byLibrary)
}

// MergeJSONFile adds or replaces the report's library in the JSON file at
// path, creating the file when it does not exist.
func MergeJSONFile(path string, r Report) error {
	existing := make(map[string]json.RawMessage)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("report: read %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, &existing); err != nil {
			return fmt.Errorf("report: parse %s: %w", path, err)
		}
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	existing[r.Library] = raw

	out, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
